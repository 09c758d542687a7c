// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package queue distributes compound-building work as chunks of MTBLC ids on
// a shared Redis list. Multiple producer and consumer processes can push and
// pop without duplicating work; pop exclusivity is delegated to Redis's
// atomic list-pop.
package queue

import (
	"fmt"

	"github.com/go-redis/redis"

	"github.com/metabolights/compound-builder/pkg/types"
)

// Length reports the state of a queue key. Count is -1 when the key does not
// exist, which distinguishes "empty" from "never created".
type Length struct {
	Exists bool
	Count  int64
}

// Client is a thin wrapper around the Redis client exposing the list
// operations the queue manager needs. Backend connectivity failures are
// returned as-is; a broken queue backend is fatal to the run, not retried.
type Client struct {
	db *redis.Client
}

// NewClient connects to the Redis backend described by cfg.
func NewClient(cfg types.RedisConfig) *Client {
	return &Client{db: redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		DB:       cfg.DB,
		Password: cfg.Password,
	})}
}

// NewClientFromRedis wraps an existing Redis client. Tests use this with a
// miniredis-backed client.
func NewClientFromRedis(db *redis.Client) *Client {
	return &Client{db: db}
}

// Ping verifies backend connectivity.
func (c *Client) Ping() error {
	if err := c.db.Ping().Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

// Push appends one payload to the named queue, creating it if needed.
func (c *Client) Push(queue, payload string) error {
	if err := c.db.LPush(queue, payload).Err(); err != nil {
		return fmt.Errorf("pushing to %s: %w", queue, err)
	}
	return nil
}

// Pop removes and returns one payload. It returns ErrEmptyQueue when the
// queue has no items or does not exist.
func (c *Client) Pop(queue string) (string, error) {
	payload, err := c.db.LPop(queue).Result()
	if err == redis.Nil {
		return "", ErrEmptyQueue
	}
	if err != nil {
		return "", fmt.Errorf("popping from %s: %w", queue, err)
	}
	return payload, nil
}

// Len reports whether the queue key exists and how many items it holds.
func (c *Client) Len(queue string) (Length, error) {
	exists, err := c.db.Exists(queue).Result()
	if err != nil {
		return Length{}, fmt.Errorf("checking %s exists: %w", queue, err)
	}
	if exists == 0 {
		return Length{Exists: false, Count: -1}, nil
	}
	count, err := c.db.LLen(queue).Result()
	if err != nil {
		return Length{}, fmt.Errorf("reading length of %s: %w", queue, err)
	}
	return Length{Exists: true, Count: count}, nil
}

// Evict deletes the queue and everything in it. The returned count is 1 when
// the key existed, 0 otherwise.
func (c *Client) Evict(queue string) (int64, error) {
	removed, err := c.db.Del(queue).Result()
	if err != nil {
		return 0, fmt.Errorf("deleting %s: %w", queue, err)
	}
	return removed, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package queue

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/metabolights/compound-builder/pkg/types"
)

// DefaultKey is the Redis list the compound chunks live under.
const DefaultKey = "compounds"

const defaultChunkSize = 200

var (
	// ErrAlreadyPopulated means the queue reported existing items at
	// populate time. A second producer run must not inject duplicate chunks.
	ErrAlreadyPopulated = errors.New("queue already populated, risk of duplication")

	// ErrEmptyQueue means a pop found no items to consume.
	ErrEmptyQueue = errors.New("queue is empty")
)

// Manager splits a full compound id list into fixed-size chunks and pushes
// them to the work queue; on the consumer side it pops chunks one at a time
// until the queue drains.
type Manager struct {
	client    *Client
	key       string
	chunkSize int
	dropped   int
}

// NewManager builds a Manager over client using the queue settings in cfg.
func NewManager(client *Client, cfg types.QueueConfig) *Manager {
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	size := cfg.ChunkSize
	if size <= 0 {
		size = defaultChunkSize
	}
	return &Manager{client: client, key: key, chunkSize: size}
}

// Populate chunks ids and pushes each chunk as one queue entry. It refuses to
// run when the queue already holds items, returning ErrAlreadyPopulated.
// A chunk that fails to serialize is dropped and counted, not fatal; the
// caller decides when the dropped count crosses its reporting threshold.
// Backend failures abort immediately.
func (m *Manager) Populate(ids []string) (pushed int, err error) {
	length, err := m.client.Len(m.key)
	if err != nil {
		return 0, err
	}
	if length.Count > 0 {
		return 0, ErrAlreadyPopulated
	}

	for i, chunk := range chunkIDs(ids, m.chunkSize) {
		payload, err := encodeChunk(chunk)
		if err != nil {
			m.dropped++
			log.WithError(err).Warnf("dropping chunk %d: could not serialize", i)
			continue
		}
		if err := m.client.Push(m.key, payload); err != nil {
			return pushed, err
		}
		log.Debugf("pushed chunk %d (%d ids) to %s", i, len(chunk), m.key)
		pushed++
	}
	return pushed, nil
}

// ConsumeOne pops a single chunk and decodes it back to the exact id list
// that was pushed. It returns ErrEmptyQueue when nothing remains.
func (m *Manager) ConsumeOne() ([]string, error) {
	payload, err := m.client.Pop(m.key)
	if err != nil {
		return nil, err
	}
	return decodeChunk(payload)
}

// Len reports the queue's existence and item count.
func (m *Manager) Len() (Length, error) {
	return m.client.Len(m.key)
}

// Evict deletes the queue and all remaining chunks.
func (m *Manager) Evict() (int64, error) {
	return m.client.Evict(m.key)
}

// Dropped returns how many chunks were dropped during Populate because they
// could not be serialized.
func (m *Manager) Dropped() int {
	return m.dropped
}

// chunkIDs splits ids into sublists of at most size items, preserving order.
// The last chunk may be shorter.
func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

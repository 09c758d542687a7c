// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/metabolights/compound-builder/internal/queue"
	"github.com/metabolights/compound-builder/pkg/types"
)

const defaultUserAgent = "compound-builder/0.1"

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Manage the Redis compound work queue",
	Long: `Queue manages the chunked compound work queue in Redis. Populate fills an
empty queue with every compound accession (chunked to keep entry sizes
bounded), status reports whether the queue exists and how many chunks remain,
and evict discards the queue entirely.`,
}

var queuePopulateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Fill an empty queue with compound accessions",
	Long: `Populate fetches the full MTBLC accession list from the MetaboLights
webservice, splits it into chunks, and pushes the chunks onto the queue.
A queue that already holds items refuses population; evict it first.`,
	RunE: runQueuePopulate,
}

var queueStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report queue existence and remaining chunk count",
	RunE:  runQueueStatus,
}

var queueEvictCmd = &cobra.Command{
	Use:   "evict",
	Short: "Discard the queue and everything in it",
	RunE:  runQueueEvict,
}

func init() {
	queueCmd.PersistentFlags().String("redis-host", "localhost", "Redis host")
	queueCmd.PersistentFlags().Int("redis-port", 6379, "Redis port")
	queueCmd.PersistentFlags().Int("redis-db", 0, "Redis database number")
	queueCmd.PersistentFlags().String("redis-password", "", "Redis password (default: .secrets/redis-password)")
	queueCmd.PersistentFlags().String("key", queue.DefaultKey, "queue key")

	queuePopulateCmd.Flags().Int("chunk-size", 200, "compound ids per queue entry")
	queuePopulateCmd.Flags().Bool("new-only", false, "queue only compounds absent from the destination directory")
	queuePopulateCmd.Flags().String("dest", "compounds", "reference layer root, consulted by --new-only")
	queuePopulateCmd.Flags().Duration("timeout", 60*time.Second, "HTTP request timeout")

	queueCmd.AddCommand(queuePopulateCmd)
	queueCmd.AddCommand(queueStatusCmd)
	queueCmd.AddCommand(queueEvictCmd)
	rootCmd.AddCommand(queueCmd)
}

// redisFromFlags assembles the Redis connection settings shared by every
// queue subcommand.
func redisFromFlags(cmd *cobra.Command) types.RedisConfig {
	host, _ := cmd.Flags().GetString("redis-host")
	port, _ := cmd.Flags().GetInt("redis-port")
	db, _ := cmd.Flags().GetInt("redis-db")
	password, _ := cmd.Flags().GetString("redis-password")

	return types.RedisConfig{
		Host:     host,
		Port:     port,
		DB:       db,
		Password: secretDefault("redis-password", password),
	}
}

func queueManagerFromFlags(cmd *cobra.Command) (*queue.Manager, error) {
	client := queue.NewClient(redisFromFlags(cmd))
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	key, _ := cmd.Flags().GetString("key")
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	return queue.NewManager(client, types.QueueConfig{Key: key, ChunkSize: chunkSize}), nil
}

func runQueuePopulate(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	newOnly, _ := cmd.Flags().GetBool("new-only")
	dest, _ := cmd.Flags().GetString("dest")

	cfg := types.DefaultSourcesConfig()
	cfg.Timeout = timeout
	cfg.UserAgent = defaultUserAgent

	client := &http.Client{Timeout: cfg.Timeout}
	ids, err := queue.FetchCompoundList(cmd.Context(), client, cfg, newOnly, dest)
	if err != nil {
		return fmt.Errorf("fetching compound list: %w", err)
	}
	if len(ids) == 0 {
		fmt.Println("No compounds to queue.")
		return nil
	}

	mgr, err := queueManagerFromFlags(cmd)
	if err != nil {
		return err
	}

	pushed, err := mgr.Populate(ids)
	if err != nil {
		return err
	}
	fmt.Printf("Queued %d compounds in %d chunks", len(ids), pushed)
	if dropped := mgr.Dropped(); dropped > 0 {
		fmt.Printf(" (%d chunks dropped)", dropped)
	}
	fmt.Println()
	return nil
}

func runQueueStatus(cmd *cobra.Command, args []string) error {
	mgr, err := queueManagerFromFlags(cmd)
	if err != nil {
		return err
	}

	length, err := mgr.Len()
	if err != nil {
		return err
	}
	if !length.Exists {
		fmt.Println("Queue does not exist.")
		return nil
	}
	fmt.Printf("Queue holds %d chunks.\n", length.Count)
	return nil
}

func runQueueEvict(cmd *cobra.Command, args []string) error {
	mgr, err := queueManagerFromFlags(cmd)
	if err != nil {
		return err
	}

	removed, err := mgr.Evict()
	if err != nil {
		return err
	}
	if removed == 0 {
		fmt.Println("Queue was already gone.")
		return nil
	}
	fmt.Println("Queue evicted.")
	return nil
}

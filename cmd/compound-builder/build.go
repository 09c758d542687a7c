// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/metabolights/compound-builder/internal/enrich"
	"github.com/metabolights/compound-builder/internal/queue"
	"github.com/metabolights/compound-builder/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build [compound-ids...]",
	Short: "Enrich compounds and write the reference layer",
	Long: `Build assembles one JSON document per compound: the ChEBI entity is fetched
as the seed, the external sources (Europe PMC, Cactus, Rhea, MoNA, KEGG,
WikiPathways) are called in parallel under a shared deadline, and the merged
document lands in the destination directory.

Compound ids come from the arguments, from the Redis work queue with
--queue, or from the full MetaboLights compound list when neither is given.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().Bool("queue", false, "drain compound chunks from the Redis work queue")
	buildCmd.Flags().String("redis-host", "localhost", "Redis host")
	buildCmd.Flags().Int("redis-port", 6379, "Redis port")
	buildCmd.Flags().Int("redis-db", 0, "Redis database number")
	buildCmd.Flags().String("redis-password", "", "Redis password (default: .secrets/redis-password)")
	buildCmd.Flags().String("key", queue.DefaultKey, "queue key")

	buildCmd.Flags().String("dest", "compounds", "reference layer root directory")
	buildCmd.Flags().String("index", "", "SQLite index database path (empty disables the index)")
	buildCmd.Flags().String("mapping", "", "study reference mapping file")
	buildCmd.Flags().String("reactome", "", "cached Reactome pathway file")
	buildCmd.Flags().Int("workers", 6, "fan-out worker pool size")
	buildCmd.Flags().Duration("deadline", 500*time.Second, "shared deadline for one compound's source calls")
	buildCmd.Flags().Duration("timeout", 60*time.Second, "HTTP request timeout")
	buildCmd.Flags().StringSlice("disable", nil, "sources to skip (citations, structure, reactions, spectra, kegg, wikipathways)")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := builderConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	builder, err := enrich.NewBuilder(cfg)
	if err != nil {
		return err
	}
	defer builder.Close()

	fromQueue, _ := cmd.Flags().GetBool("queue")
	if fromQueue {
		if err := buildFromQueue(cmd, builder, cfg); err != nil {
			return err
		}
	} else {
		ids := args
		if len(ids) == 0 {
			client := &http.Client{Timeout: cfg.Sources.Timeout}
			ids, err = queue.FetchCompoundList(cmd.Context(), client, cfg.Sources, false, cfg.Sink.Destination)
			if err != nil {
				return fmt.Errorf("fetching compound list: %w", err)
			}
		}
		builder.BuildAll(cmd.Context(), ids)
	}

	stats := builder.Stats()
	stats.LogSummary()
	if stats.Failed > 0 {
		return fmt.Errorf("%d compound(s) failed to build", stats.Failed)
	}
	return nil
}

// buildFromQueue drains chunks until the queue is empty. Each popped chunk is
// gone from Redis whether or not its compounds build; failures surface in the
// run stats, not back on the queue.
func buildFromQueue(cmd *cobra.Command, builder *enrich.Builder, cfg types.BuilderConfig) error {
	client := queue.NewClient(cfg.Redis)
	if err := client.Ping(); err != nil {
		return fmt.Errorf("connecting to Redis: %w", err)
	}
	mgr := queue.NewManager(client, cfg.Queue)

	for {
		ids, err := mgr.ConsumeOne()
		if errors.Is(err, queue.ErrEmptyQueue) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("consuming queue chunk: %w", err)
		}
		builder.BuildAll(cmd.Context(), ids)
		if cmd.Context().Err() != nil {
			return nil
		}
	}
}

func builderConfigFromFlags(cmd *cobra.Command) (types.BuilderConfig, error) {
	dest, _ := cmd.Flags().GetString("dest")
	index, _ := cmd.Flags().GetString("index")
	mappingPath, _ := cmd.Flags().GetString("mapping")
	reactomePath, _ := cmd.Flags().GetString("reactome")
	workers, _ := cmd.Flags().GetInt("workers")
	deadline, _ := cmd.Flags().GetDuration("deadline")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	disabled, _ := cmd.Flags().GetStringSlice("disable")
	key, _ := cmd.Flags().GetString("key")

	sources := types.DefaultSourcesConfig()
	sources.Workers = workers
	sources.Deadline = deadline
	sources.Timeout = timeout
	sources.UserAgent = defaultUserAgent
	for _, name := range disabled {
		switch name {
		case "citations":
			sources.EnableCitations = false
		case "structure":
			sources.EnableStructure = false
		case "reactions":
			sources.EnableReactions = false
		case "spectra":
			sources.EnableSpectra = false
		case "kegg":
			sources.EnableKEGG = false
		case "wikipathways":
			sources.EnableWikiPathways = false
		default:
			return types.BuilderConfig{}, fmt.Errorf("unknown source %q in --disable", name)
		}
	}

	return types.BuilderConfig{
		Redis:        redisFromFlags(cmd),
		Queue:        types.QueueConfig{Key: key},
		Sources:      sources,
		Sink:         types.SinkConfig{Destination: dest, IndexPath: index},
		MappingPath:  mappingPath,
		ReactomePath: reactomePath,
	}, nil
}

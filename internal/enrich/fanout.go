// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich drives per-compound enrichment: it fans calls out to the
// external source adapters, collects their mementos under a shared deadline,
// merges them into the compound document, and hands the finished document to
// the sinks. All document mutation happens on the driver goroutine; the
// fan-out tasks only ever produce immutable mementos.
package enrich

import (
	"context"
	"net/http"
	"time"

	"github.com/metabolights/compound-builder/internal/sources"
	"github.com/metabolights/compound-builder/pkg/types"
)

// FanOut dispatches one task per caller and collects results until every
// caller has reported or the shared deadline expires. Callers still running
// at the deadline are abandoned, not cancelled: their goroutines finish into
// a buffered channel and are discarded, so an abandoned call never blocks or
// leaks into the next compound's collection.
func FanOut(ctx context.Context, callers []sources.Caller, seed sources.Seed, cfg types.SourcesConfig, client *http.Client) (map[sources.SourceID]sources.Result, []sources.SourceID) {
	// Buffered to len(callers) so late finishers can always deposit their
	// result and exit.
	results := make(chan sources.Result, len(callers))
	sem := make(chan struct{}, workerCount(cfg, len(callers)))

	for _, c := range callers {
		go func(c sources.Caller) {
			sem <- struct{}{}
			defer func() { <-sem }()
			results <- c.Call(ctx, seed, cfg, client)
		}(c)
	}

	completed := make(map[sources.SourceID]sources.Result, len(callers))
	timer := time.NewTimer(sharedDeadline(cfg))
	defer timer.Stop()

collect:
	for len(completed) < len(callers) {
		select {
		case res := <-results:
			completed[res.Name] = res
		case <-timer.C:
			break collect
		case <-ctx.Done():
			break collect
		}
	}

	var abandoned []sources.SourceID
	for _, c := range callers {
		if _, ok := completed[c.Name()]; !ok {
			abandoned = append(abandoned, c.Name())
		}
	}
	return completed, abandoned
}

func workerCount(cfg types.SourcesConfig, callers int) int {
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	if callers > 0 {
		return callers
	}
	return 1
}

func sharedDeadline(cfg types.SourcesConfig) time.Duration {
	if cfg.Deadline > 0 {
		return cfg.Deadline
	}
	return 500 * time.Second
}

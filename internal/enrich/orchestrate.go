// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/metabolights/compound-builder/internal/sources"
	"github.com/metabolights/compound-builder/pkg/types"
)

// Orchestrate runs the fan-out for one compound and returns exactly one
// memento per configured caller. Disabled sources are never dispatched and
// abandoned sources never report; both are represented by a synthesized
// nil-payload memento, so the merge phase downstream sees a uniform set and
// needs no special cases.
func Orchestrate(ctx context.Context, callers []sources.Caller, seed sources.Seed, cfg types.SourcesConfig, client *http.Client) map[sources.SourceID]sources.Result {
	enabled := make([]sources.Caller, 0, len(callers))
	mementos := make(map[sources.SourceID]sources.Result, len(callers))

	for _, c := range callers {
		if c.Enabled(cfg) {
			enabled = append(enabled, c)
			continue
		}
		mementos[c.Name()] = sources.Result{Name: c.Name()}
	}

	completed, abandoned := FanOut(ctx, enabled, seed, cfg, client)
	for id, res := range completed {
		mementos[id] = res
	}
	for _, id := range abandoned {
		log.WithFields(log.Fields{"source": id, "compound": seed.CompoundID}).
			Warn("source call abandoned at deadline")
		mementos[id] = sources.Result{Name: id}
	}
	return mementos
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"

	"github.com/metabolights/compound-builder/internal/httputil"
	"github.com/metabolights/compound-builder/pkg/types"
)

// ReactionsCaller queries the Rhea reaction database by ChEBI id.
type ReactionsCaller struct{}

func (ReactionsCaller) Name() SourceID { return SourceReactions }

func (ReactionsCaller) Enabled(cfg types.SourcesConfig) bool { return cfg.EnableReactions }

func (r ReactionsCaller) Call(ctx context.Context, seed Seed, cfg types.SourcesConfig, client *http.Client) Result {
	return guard(r.Name(), seed.CompoundID, func() (any, error) {
		return fetchReactions(ctx, seed, cfg, client)
	})
}

type rheaResponse struct {
	Results []map[string]string `json:"results"`
}

func fetchReactions(ctx context.Context, seed Seed, cfg types.SourcesConfig, client *http.Client) ([]types.Reaction, error) {
	url := fmt.Sprintf("%s?query=%s&columns=rhea-id,equation,chebi-id&format=json&limit=10",
		cfg.Endpoints.Rhea, seed.ChebiID)

	var body rheaResponse
	if err := httputil.GetJSON(ctx, client, url, cfg.UserAgent, &body); err != nil {
		return nil, err
	}

	reactions := make([]types.Reaction, 0, len(body.Results))
	for _, result := range body.Results {
		reactions = append(reactions, types.Reaction{
			ID:       result["rhea-id"],
			Equation: result["equation"],
			ChebiID:  result["chebi-id"],
		})
	}
	return reactions, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"

	"github.com/metabolights/compound-builder/internal/httputil"
	"github.com/metabolights/compound-builder/pkg/types"
)

// WikiPathwaysCaller searches WikiPathways by InChIKey and groups the results
// by species.
type WikiPathwaysCaller struct{}

func (WikiPathwaysCaller) Name() SourceID { return SourceWikiPathways }

func (WikiPathwaysCaller) Enabled(cfg types.SourcesConfig) bool { return cfg.EnableWikiPathways }

func (w WikiPathwaysCaller) Call(ctx context.Context, seed Seed, cfg types.SourcesConfig, client *http.Client) Result {
	return guard(w.Name(), seed.CompoundID, func() (any, error) {
		return fetchWikiPathways(ctx, seed, cfg, client)
	})
}

type wikiPathwaysResponse struct {
	Result []struct {
		ID      string `json:"id"`
		URL     string `json:"url"`
		Name    string `json:"name"`
		Species string `json:"species"`
	} `json:"result"`
}

func fetchWikiPathways(ctx context.Context, seed Seed, cfg types.SourcesConfig, client *http.Client) (map[string][]types.PathwayRef, error) {
	if seed.InChIKey == "" {
		return nil, fmt.Errorf("no InChIKey for %s", seed.CompoundID)
	}
	url := fmt.Sprintf("%s%s&codes=Ik&format=json", cfg.Endpoints.WikiPathways, seed.InChIKey)

	var body wikiPathwaysResponse
	if err := httputil.GetJSON(ctx, client, url, cfg.UserAgent, &body); err != nil {
		return nil, err
	}

	bySpecies := map[string][]types.PathwayRef{}
	for _, pathway := range body.Result {
		ref := types.PathwayRef{ID: pathway.ID, URL: pathway.URL, Name: pathway.Name}
		if containsRef(bySpecies[pathway.Species], ref) {
			continue
		}
		bySpecies[pathway.Species] = append(bySpecies[pathway.Species], ref)
	}
	return bySpecies, nil
}

func containsRef(refs []types.PathwayRef, ref types.PathwayRef) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/metabolights/compound-builder/internal/httputil"
	"github.com/metabolights/compound-builder/pkg/types"
)

// CitationsCaller enriches the compound's ChEBI literature references with
// Europe PMC metadata.
type CitationsCaller struct{}

func (CitationsCaller) Name() SourceID { return SourceCitations }

func (CitationsCaller) Enabled(cfg types.SourcesConfig) bool { return cfg.EnableCitations }

func (c CitationsCaller) Call(ctx context.Context, seed Seed, cfg types.SourcesConfig, client *http.Client) Result {
	return guard(c.Name(), seed.CompoundID, func() (any, error) {
		return fetchCitations(ctx, seed, cfg, client)
	})
}

// epmcResponse is the slice of the Europe PMC search response we consume.
type epmcResponse struct {
	ResultList struct {
		Result []struct {
			Title        string `json:"title"`
			AuthorString string `json:"authorString"`
			AbstractText string `json:"abstractText"`
			DOI          string `json:"doi"`
		} `json:"result"`
	} `json:"resultList"`
}

// fetchCitations looks each seed citation up by PubMed id. A citation whose
// lookup fails or comes back empty is skipped, not fatal to the rest.
func fetchCitations(ctx context.Context, seed Seed, cfg types.SourcesConfig, client *http.Client) ([]types.Citation, error) {
	enriched := make([]types.Citation, 0, len(seed.Citations))
	for _, citation := range seed.Citations {
		url := fmt.Sprintf("%s%s&format=json&resultType=core", cfg.Endpoints.EuropePMC, citation.Value)

		var body epmcResponse
		if err := httputil.GetJSON(ctx, client, url, cfg.UserAgent, &body); err != nil {
			log.WithError(err).Debugf("no Europe PMC response for citation %s", citation.Value)
			continue
		}
		if len(body.ResultList.Result) == 0 {
			log.Debugf("empty Europe PMC result for citation %s", citation.Value)
			continue
		}

		first := body.ResultList.Result[0]
		citation.Title = first.Title
		citation.Authors = first.AuthorString
		citation.Abstract = first.AbstractText
		citation.DOI = first.DOI
		enriched = append(enriched, citation)
	}
	return enriched, nil
}

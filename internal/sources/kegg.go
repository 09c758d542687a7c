// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/metabolights/compound-builder/internal/httputil"
	"github.com/metabolights/compound-builder/pkg/types"
)

// KEGGCaller retrieves pathway information from KEGG in three steps: map the
// ChEBI id to a KEGG compound id, list the pathways linked to it, then fetch
// and parse each pathway's flat-file record.
type KEGGCaller struct{}

func (KEGGCaller) Name() SourceID { return SourceKEGG }

func (KEGGCaller) Enabled(cfg types.SourcesConfig) bool { return cfg.EnableKEGG }

func (k KEGGCaller) Call(ctx context.Context, seed Seed, cfg types.SourcesConfig, client *http.Client) Result {
	return guard(k.Name(), seed.CompoundID, func() (any, error) {
		return fetchKEGGPathways(ctx, seed, cfg, client)
	})
}

func fetchKEGGPathways(ctx context.Context, seed Seed, cfg types.SourcesConfig, client *http.Client) ([]types.KEGGPathway, error) {
	conv, err := httputil.GetText(ctx, client, cfg.Endpoints.KEGGConv+strings.ToLower(seed.ChebiID), cfg.UserAgent)
	if err != nil {
		return nil, err
	}
	keggID, err := tsvField(conv, 1)
	if err != nil {
		return nil, fmt.Errorf("no KEGG compound id for chebi:%s: %w", seed.ChebiID, err)
	}

	linked, err := httputil.GetText(ctx, client, cfg.Endpoints.KEGGLink+keggID, cfg.UserAgent)
	if err != nil {
		return nil, err
	}

	var pathways []types.KEGGPathway
	for _, line := range strings.Split(strings.TrimSpace(linked), "\n") {
		if line == "" {
			continue
		}
		pathwayID, err := tsvField(line, 1)
		if err != nil {
			log.Warnf("skipping malformed KEGG link line %q: %v", line, err)
			continue
		}
		record, err := httputil.GetText(ctx, client, cfg.Endpoints.KEGGGet+pathwayID, cfg.UserAgent)
		if err != nil {
			log.WithError(err).Warnf("could not fetch KEGG pathway %s", pathwayID)
			continue
		}
		pathways = append(pathways, parseKEGGRecord(pathwayID, record))
	}
	if pathways == nil {
		pathways = []types.KEGGPathway{}
	}
	return pathways, nil
}

// tsvField returns column idx of the first line of a KEGG tab-separated response.
func tsvField(line string, idx int) (string, error) {
	fields := strings.Split(strings.TrimSpace(line), "\t")
	if idx >= len(fields) {
		return "", fmt.Errorf("expected at least %d tab-separated fields in %q", idx+1, line)
	}
	return strings.TrimSpace(fields[idx]), nil
}

// parseKEGGRecord extracts the NAME, DESCRIPTION, and KO_PATHWAY lines from a
// KEGG flat-file pathway record.
func parseKEGGRecord(id, record string) types.KEGGPathway {
	pathway := types.KEGGPathway{ID: id}
	for _, line := range strings.Split(strings.TrimSpace(record), "\n") {
		switch {
		case strings.HasPrefix(line, "NAME"):
			pathway.Name = strings.TrimSpace(strings.TrimPrefix(line, "NAME"))
		case strings.HasPrefix(line, "DESCRIPTION"):
			pathway.Description = strings.TrimSpace(strings.TrimPrefix(line, "DESCRIPTION"))
		case strings.HasPrefix(line, "KO_PATHWAY"):
			pathway.KOPathway = strings.TrimSpace(strings.TrimPrefix(line, "KO_PATHWAY"))
		}
	}
	return pathway
}

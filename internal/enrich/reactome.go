// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/metabolights/compound-builder/internal/httputil"
	"github.com/metabolights/compound-builder/pkg/types"
)

// reactomePathway is one record of the cached Reactome analysis file.
type reactomePathway struct {
	Name       string `json:"pathway"`
	PathwayID  string `json:"pathwayId"`
	URL        string `json:"reactomeUrl"`
	ReactomeID string `json:"reactomeId"`
	Species    string `json:"species"`
}

// Reactome holds the pre-computed compound-to-pathway associations, keyed by
// MTBLC accession. Reactome is not queried live; the file is refreshed out of
// band and read once per run.
type Reactome map[string][]reactomePathway

// LoadReactome reads the cached Reactome file at path.
func LoadReactome(path string) (Reactome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reactome file %s: %w", path, err)
	}
	r := Reactome{}
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding reactome file %s: %w", path, err)
	}
	return r, nil
}

// FetchReactome downloads the ChEBI-to-Reactome bulk export and groups its
// rows by MTBLC accession. Rows with fewer columns than the export promises
// are skipped.
func FetchReactome(ctx context.Context, client *http.Client, cfg types.SourcesConfig) (Reactome, error) {
	body, err := httputil.GetText(ctx, client, cfg.Endpoints.ReactomeExport, cfg.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("fetching reactome export: %w", err)
	}

	r := Reactome{}
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 6 {
			continue
		}
		id := "MTBLC" + fields[0]
		r[id] = append(r[id], reactomePathway{
			ReactomeID: fields[1],
			URL:        fields[2],
			Name:       fields[3],
			PathwayID:  fields[4],
			Species:    fields[5],
		})
	}
	return r, nil
}

// SaveReactome writes the cached Reactome file at path, creating parent
// directories as needed. The shape round-trips through LoadReactome.
func SaveReactome(path string, r Reactome) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding reactome file: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating reactome directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing reactome file %s: %w", path, err)
	}
	return nil
}

// PathwaysFor returns the compound's Reactome pathways grouped by species.
// Unknown compounds get an empty, non-nil map.
func (r Reactome) PathwaysFor(compoundID string) map[string][]types.PathwayRef {
	grouped := map[string][]types.PathwayRef{}
	for _, p := range r[compoundID] {
		grouped[p.Species] = append(grouped[p.Species], types.PathwayRef{
			Name:       p.Name,
			PathwayID:  p.PathwayID,
			ReactomeID: p.ReactomeID,
			URL:        p.URL,
		})
	}
	return grouped
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/metabolights/compound-builder/pkg/types"
)

// FetchCompoundList retrieves the full MTBLC id list from the MetaboLights
// webservice. When newOnly is set, ids that already have a subdirectory under
// destDir are filtered out so only unbuilt compounds are queued.
func FetchCompoundList(ctx context.Context, client *http.Client, cfg types.SourcesConfig, newOnly bool, destDir string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.Endpoints.MtblsWsCompoundsList, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching compound list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("compound list endpoint returned HTTP %d", resp.StatusCode)
	}

	var body struct {
		Content []string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("parsing compound list: %w", err)
	}

	if !newOnly {
		return body.Content, nil
	}
	existing, err := builtCompoundIDs(destDir)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, id := range body.Content {
		if _, ok := existing[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// builtCompoundIDs lists the MTBLC subdirectories already present under dir.
// A missing destination directory means nothing has been built yet.
func builtCompoundIDs(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("reading destination directory %s: %w", dir, err)
	}
	ids := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "MTBLC") {
			ids[entry.Name()] = struct{}{}
		}
	}
	return ids, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/metabolights/compound-builder/pkg/types"
)

// Mapping file encodings. JSON is the interchange default; YAML is kept for
// operators who inspect the file by hand.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// SaveMapping writes the reference mapping to path in the given format.
// An empty format is inferred from the path's extension, defaulting to JSON.
func SaveMapping(path string, m types.RefMapping, format string) error {
	if format == "" {
		format = formatFromPath(path)
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(m, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(m)
	default:
		return fmt.Errorf("unknown mapping format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encoding mapping: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating mapping directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing mapping file %s: %w", path, err)
	}
	return nil
}

// LoadMapping reads a reference mapping file, inferring the encoding from
// the extension.
func LoadMapping(path string) (types.RefMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.RefMapping{}, fmt.Errorf("reading mapping file %s: %w", path, err)
	}

	m := types.NewRefMapping()
	switch formatFromPath(path) {
	case FormatYAML:
		err = yaml.Unmarshal(data, &m)
	default:
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return types.RefMapping{}, fmt.Errorf("decoding mapping file %s: %w", path, err)
	}
	return m, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

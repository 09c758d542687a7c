// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/metabolights/compound-builder/pkg/types"
)

// DirSink writes each compound into its own subdirectory of the reference
// layer root: <root>/<id>/<id>_data.json, with MS peak lists as sibling
// <id>_spectrum_<spectrumID>.json files.
type DirSink struct {
	root string
}

// NewDirSink returns a sink rooted at dir, creating it if needed.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating destination directory %s: %w", dir, err)
	}
	return &DirSink{root: dir}, nil
}

func (s *DirSink) SaveCompound(doc *types.CompoundDocument) error {
	dir := filepath.Join(s.root, doc.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating compound directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding compound %s: %w", doc.ID, err)
	}

	path := filepath.Join(dir, doc.ID+"_data.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (s *DirSink) SaveSpectrum(compoundID, spectrumID, peaks string) error {
	dir := filepath.Join(s.root, compoundID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating compound directory %s: %w", dir, err)
	}

	body, err := json.Marshal(map[string]string{"id": spectrumID, "spectrum": peaks})
	if err != nil {
		return fmt.Errorf("encoding spectrum %s: %w", spectrumID, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_spectrum_%s.json", compoundID, spectrumID))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

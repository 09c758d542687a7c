// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/metabolights/compound-builder/internal/httputil"
	"github.com/metabolights/compound-builder/pkg/types"
)

// StructureCaller resolves the compound's InChIKey to an SDF structure via
// the Cactus chemical-structure service. The payload is the raw SDF text.
type StructureCaller struct{}

func (StructureCaller) Name() SourceID { return SourceStructure }

func (StructureCaller) Enabled(cfg types.SourcesConfig) bool { return cfg.EnableStructure }

func (s StructureCaller) Call(ctx context.Context, seed Seed, cfg types.SourcesConfig, client *http.Client) Result {
	return guard(s.Name(), seed.CompoundID, func() (any, error) {
		if seed.InChIKey == "" {
			return nil, fmt.Errorf("no InChIKey for %s", seed.CompoundID)
		}
		url := fmt.Sprintf("%s%s/sdf", cfg.Endpoints.Cactus, seed.InChIKey)
		sdf, err := httputil.GetText(ctx, client, url, cfg.UserAgent)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(sdf) == "" {
			return nil, fmt.Errorf("empty structure for %s", seed.InChIKey)
		}
		return sdf, nil
	})
}

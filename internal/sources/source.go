// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources holds one stateless adapter per external data source the
// enrichment fan-out calls. Each adapter converts every failure mode of its
// transport and parse steps into a nil-payload memento; no error crosses the
// adapter boundary. That isolation is what keeps one flaky source from
// aborting a whole compound's orchestration.
package sources

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/metabolights/compound-builder/pkg/types"
)

// SourceID names one external data source. The set is closed and known at
// compile time.
type SourceID string

const (
	SourceCitations    SourceID = "citations"
	SourceStructure    SourceID = "structure"
	SourceReactions    SourceID = "reactions"
	SourceSpectra      SourceID = "spectra"
	SourceKEGG         SourceID = "kegg"
	SourceWikiPathways SourceID = "wikipathways"
)

// Result is the immutable memento returned by one source call. A nil Payload
// is the canonical "no data from this source" signal and is distinct from an
// empty-but-present collection.
type Result struct {
	Name    SourceID
	Payload any
}

// IsDud reports whether the memento carries no data at all.
func (r Result) IsDud() bool {
	return r.Payload == nil
}

// Seed carries the compound fields the adapters key their lookups on. It is
// produced by the ChEBI seed fetch before the fan-out starts.
type Seed struct {
	// CompoundID is the MTBLC accession, e.g. "MTBLC15377".
	CompoundID string

	// ChebiID is the bare numeric ChEBI id, e.g. "15377".
	ChebiID string

	InChIKey string

	// Citations are the ChEBI literature references, enriched by the
	// citations adapter.
	Citations []types.Citation
}

// Caller is one stateless source adapter. Call never returns an error; all
// failures degrade to a nil-payload Result.
type Caller interface {
	Name() SourceID
	Enabled(cfg types.SourcesConfig) bool
	Call(ctx context.Context, seed Seed, cfg types.SourcesConfig, client *http.Client) Result
}

// All returns the full fixed adapter set, one per SourceID.
func All() []Caller {
	return []Caller{
		CitationsCaller{},
		StructureCaller{},
		ReactionsCaller{},
		SpectraCaller{},
		KEGGCaller{},
		WikiPathwaysCaller{},
	}
}

// guard runs fn and converts every error and panic into a nil-payload Result.
// This is the single place the adapter isolation contract is enforced.
func guard(name SourceID, compoundID string, fn func() (any, error)) (res Result) {
	res = Result{Name: name}
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("source %s panicked for %s: %v", name, compoundID, r)
			res = Result{Name: name}
		}
	}()

	payload, err := fn()
	if err != nil {
		log.WithError(err).Warnf("source %s returned no data for %s", name, compoundID)
		return Result{Name: name}
	}
	res.Payload = payload
	return res
}

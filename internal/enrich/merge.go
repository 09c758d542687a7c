// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"fmt"

	"github.com/metabolights/compound-builder/internal/sources"
	"github.com/metabolights/compound-builder/pkg/types"
)

// handlerFunc folds one memento into the document. Handlers own disjoint
// document fields, so application order does not matter. A dud memento (or a
// payload of an unexpected type) leaves the field at its absent
// representation with the corresponding flag down.
type handlerFunc func(doc *types.CompoundDocument, res sources.Result)

// Merger maps each source to its merge handler. The table is closed: it is
// built against the configured caller set once at startup, and a caller
// without a handler is a construction error rather than a silent skip at
// merge time.
type Merger struct {
	handlers map[sources.SourceID]handlerFunc
}

// NewMerger builds the dispatch table and verifies every caller has a handler.
func NewMerger(callers []sources.Caller) (*Merger, error) {
	handlers := map[sources.SourceID]handlerFunc{
		sources.SourceCitations:    mergeCitations,
		sources.SourceStructure:    mergeStructure,
		sources.SourceReactions:    mergeReactions,
		sources.SourceSpectra:      mergeSpectra,
		sources.SourceKEGG:         mergeKEGG,
		sources.SourceWikiPathways: mergeWikiPathways,
	}
	for _, c := range callers {
		if _, ok := handlers[c.Name()]; !ok {
			return nil, fmt.Errorf("no merge handler for source %q", c.Name())
		}
	}
	return &Merger{handlers: handlers}, nil
}

// Merge applies every memento to the document. An unknown memento name means
// the orchestrator and the dispatch table disagree about the source set.
func (m *Merger) Merge(doc *types.CompoundDocument, mementos map[sources.SourceID]sources.Result) error {
	for id, res := range mementos {
		h, ok := m.handlers[id]
		if !ok {
			return fmt.Errorf("no merge handler for memento %q", id)
		}
		h(doc, res)
	}
	return nil
}

func mergeCitations(doc *types.CompoundDocument, res sources.Result) {
	citations, ok := res.Payload.([]types.Citation)
	if !ok || len(citations) == 0 {
		doc.Flags.HasLiterature = false
		return
	}
	doc.Citations = citations
	doc.Flags.HasLiterature = true
}

func mergeStructure(doc *types.CompoundDocument, res sources.Result) {
	sdf, ok := res.Payload.(string)
	if !ok || sdf == "" {
		doc.Structure = "NA"
		return
	}
	doc.Structure = sdf
}

func mergeReactions(doc *types.CompoundDocument, res sources.Result) {
	reactions, ok := res.Payload.([]types.Reaction)
	if !ok || len(reactions) == 0 {
		doc.Flags.HasReactions = false
		return
	}
	doc.Reactions = reactions
	doc.Flags.HasReactions = true
}

func mergeSpectra(doc *types.CompoundDocument, res sources.Result) {
	payload, ok := res.Payload.(sources.SpectraPayload)
	if !ok || len(payload.Spectra) == 0 {
		doc.Flags.HasMS = false
		return
	}
	doc.Spectra.MS = payload.Spectra
	doc.Flags.HasMS = true
}

func mergeKEGG(doc *types.CompoundDocument, res sources.Result) {
	pathways, ok := res.Payload.([]types.KEGGPathway)
	if !ok || len(pathways) == 0 {
		return
	}
	doc.Pathways.KEGG = pathways
}

func mergeWikiPathways(doc *types.CompoundDocument, res sources.Result) {
	pathways, ok := res.Payload.(map[string][]types.PathwayRef)
	if !ok || len(pathways) == 0 {
		return
	}
	doc.Pathways.WikiPathways = pathways
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/metabolights/compound-builder/internal/httputil"
	"github.com/metabolights/compound-builder/internal/sink"
	"github.com/metabolights/compound-builder/internal/sources"
	"github.com/metabolights/compound-builder/pkg/types"
)

// Builder assembles one compound document per MTBLC accession: ChEBI seed
// fetch, source fan-out, memento merge, Reactome and NMR attachment, then
// persistence. One Builder is shared across a run; Build is called from a
// single goroutine.
type Builder struct {
	cfg      types.BuilderConfig
	client   *http.Client
	callers  []sources.Caller
	merger   *Merger
	mapping  types.RefMapping
	reactome Reactome
	out      sink.CompoundSink
	stats    *Stats
	closers  []io.Closer
}

// NewBuilder wires the sinks, the reference mapping, the Reactome cache, and
// the full adapter set from cfg.
func NewBuilder(cfg types.BuilderConfig) (*Builder, error) {
	b := &Builder{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Sources.Timeout},
		callers:  sources.All(),
		mapping:  types.NewRefMapping(),
		reactome: Reactome{},
		stats:    NewStats(),
	}

	merger, err := NewMerger(b.callers)
	if err != nil {
		return nil, err
	}
	b.merger = merger

	dir, err := sink.NewDirSink(cfg.Sink.Destination)
	if err != nil {
		return nil, err
	}
	out := sink.Multi{dir}
	if cfg.Sink.IndexPath != "" {
		idx, err := sink.NewIndexSink(cfg.Sink.IndexPath)
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
		b.closers = append(b.closers, idx)
	}
	b.out = out

	if cfg.MappingPath != "" {
		b.mapping, err = sink.LoadMapping(cfg.MappingPath)
		if err != nil {
			return nil, err
		}
	}
	if cfg.ReactomePath != "" {
		b.reactome, err = LoadReactome(cfg.ReactomePath)
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Stats exposes the run counters.
func (b *Builder) Stats() *Stats {
	return b.stats
}

// Close releases sink resources.
func (b *Builder) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// mtblsCompound is the MetaboLights webservice per-compound record. Only the
// NMR spectra are consumed; everything else comes from ChEBI.
type mtblsCompound struct {
	Content struct {
		Name string `json:"name"`
		MC   struct {
			MetSpectras []struct {
				ID          any    `json:"id"`
				Name        string `json:"name"`
				SpectraType string `json:"spectraType"`
				Attributes  []struct {
					Name        string `json:"attributeName"`
					Value       string `json:"attributeValue"`
					Description string `json:"attributeDescription"`
				} `json:"attributes"`
			} `json:"metSpectras"`
		} `json:"mc"`
	} `json:"content"`
}

// Build enriches and persists one compound. The webservice and ChEBI fetches
// are hard dependencies: if either fails the compound is abandoned for this
// run. Everything after the seed degrades per source instead of failing.
func (b *Builder) Build(ctx context.Context, id string) error {
	start := time.Now()

	url := b.cfg.Sources.Endpoints.MtblsWsCompound + id
	var detail mtblsCompound
	if err := httputil.GetJSON(ctx, b.client, url, b.cfg.Sources.UserAgent, &detail); err != nil {
		return fmt.Errorf("fetching webservice record for %s: %w", id, err)
	}

	chebiID := strings.TrimPrefix(id, "MTBLC")
	entity, err := sources.FetchChEBI(ctx, b.client, chebiID, b.cfg.Sources, b.mapping)
	if err != nil {
		return fmt.Errorf("fetching ChEBI entity for %s: %w", id, err)
	}

	doc := newDocument(id, entity)
	mementos := Orchestrate(ctx, b.callers, entity.Seed(id), b.cfg.Sources, b.client)
	if err := b.merger.Merge(doc, mementos); err != nil {
		return fmt.Errorf("merging %s: %w", id, err)
	}

	doc.Pathways.Reactome = b.reactome.PathwaysFor(id)
	doc.Spectra.NMR = nmrSpectra(id, detail, b.cfg.Sources.Endpoints)
	doc.DeriveFinalFlags()

	if err := b.out.SaveCompound(doc); err != nil {
		return fmt.Errorf("saving %s: %w", id, err)
	}
	if payload, ok := mementos[sources.SourceSpectra].Payload.(sources.SpectraPayload); ok {
		for specID, peaks := range payload.Peaks {
			if err := b.out.SaveSpectrum(id, specID, peaks); err != nil {
				return fmt.Errorf("saving spectrum %s of %s: %w", specID, id, err)
			}
		}
	}

	b.stats.RecordBuild(doc, mementos)
	log.WithFields(log.Fields{"compound": id, "took": time.Since(start)}).Info("compound built")
	return nil
}

// BuildAll enriches a batch of compounds, isolating per-compound failures so
// one broken accession never stops the run.
func (b *Builder) BuildAll(ctx context.Context, ids []string) {
	for _, id := range ids {
		if ctx.Err() != nil {
			log.Warn("build run cancelled")
			return
		}
		if err := b.Build(ctx, id); err != nil {
			b.stats.RecordFailure()
			log.WithError(err).WithField("compound", id).Error("compound build failed")
		}
	}
}

// newDocument seeds a fresh document from the ChEBI entity. Scalar fields the
// entity lacks get the "NA" sentinel the downstream consumers expect.
func newDocument(id string, entity *sources.ChebiCompound) *types.CompoundDocument {
	doc := types.NewCompoundDocument(id)
	doc.Name = orNA(entity.Name)
	doc.Definition = orNA(entity.Definition)
	doc.Smiles = orNA(entity.Smiles)
	doc.Inchi = orNA(entity.Inchi)
	doc.InchiKey = orNA(entity.InchiKey)
	doc.Formula = orNA(entity.Formula)
	doc.Charge = orNA(entity.Charge)
	doc.AverageMass = orNA(entity.Mass)
	doc.ExactMass = orNA(entity.MonoisotopicMass)
	doc.Structure = "NA"
	if len(entity.IupacNames) > 0 {
		doc.IupacNames = entity.IupacNames
	}
	if len(entity.Synonyms) > 0 {
		doc.Synonyms = entity.Synonyms
	}
	if len(entity.DatabaseLinks) > 0 {
		doc.DatabaseLinks = entity.DatabaseLinks
	}
	if len(entity.Species) > 0 {
		doc.Species = entity.Species
	}
	return doc
}

func orNA(s string) string {
	if s == "" {
		return "NA"
	}
	return s
}

// nmrSpectra converts the webservice NMR records into document spectra.
func nmrSpectra(compoundID string, detail mtblsCompound, endpoints types.EndpointsConfig) []types.Spectrum {
	out := []types.Spectrum{}
	for _, raw := range detail.Content.MC.MetSpectras {
		if !strings.EqualFold(raw.SpectraType, "NMR") {
			continue
		}
		specID := fmt.Sprint(raw.ID)
		spectrum := types.Spectrum{
			ID:         specID,
			Name:       raw.Name,
			Type:       "NMR",
			URL:        fmt.Sprintf("%sspectra/%s/json", endpoints.MtblsWsCompound, specID),
			Attributes: []types.SpectrumAttribute{},
		}
		for _, attr := range raw.Attributes {
			spectrum.Attributes = append(spectrum.Attributes, types.SpectrumAttribute{
				Name:        attr.Name,
				Value:       attr.Value,
				Description: attr.Description,
			})
		}
		out = append(out, spectrum)
	}
	return out
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	log "github.com/sirupsen/logrus"

	"github.com/metabolights/compound-builder/internal/sources"
	"github.com/metabolights/compound-builder/pkg/types"
)

// Stats accumulates build counters for one run. It is mutated only on the
// driver goroutine; fan-out tasks report through their mementos, never by
// touching shared state.
type Stats struct {
	Built  int
	Failed int

	// Hits/Duds count, per source, how many compounds got data versus a
	// nil-payload memento.
	Hits map[sources.SourceID]int
	Duds map[sources.SourceID]int

	MSSpectra  int
	NMRSpectra int
}

// NewStats returns a zeroed accumulator.
func NewStats() *Stats {
	return &Stats{
		Hits: map[sources.SourceID]int{},
		Duds: map[sources.SourceID]int{},
	}
}

// RecordBuild folds one finished compound into the counters.
func (s *Stats) RecordBuild(doc *types.CompoundDocument, mementos map[sources.SourceID]sources.Result) {
	s.Built++
	for id, res := range mementos {
		if res.IsDud() {
			s.Duds[id]++
		} else {
			s.Hits[id]++
		}
	}
	s.MSSpectra += len(doc.Spectra.MS)
	s.NMRSpectra += len(doc.Spectra.NMR)
}

// RecordFailure counts one compound that could not be built.
func (s *Stats) RecordFailure() {
	s.Failed++
}

// LogSummary writes the run totals to the log.
func (s *Stats) LogSummary() {
	fields := log.Fields{
		"built":       s.Built,
		"failed":      s.Failed,
		"ms_spectra":  s.MSSpectra,
		"nmr_spectra": s.NMRSpectra,
	}
	for id, n := range s.Hits {
		fields["hits_"+string(id)] = n
	}
	for id, n := range s.Duds {
		fields["duds_"+string(id)] = n
	}
	log.WithFields(fields).Info("build run finished")
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metabolights/compound-builder/internal/sources"
	"github.com/metabolights/compound-builder/pkg/types"
)

// fakeCaller stands in for a source adapter with a scripted payload and delay.
type fakeCaller struct {
	name    sources.SourceID
	enabled bool
	delay   time.Duration
	payload any

	running *int32
	maxSeen *int32
}

func (f fakeCaller) Name() sources.SourceID { return f.name }

func (f fakeCaller) Enabled(cfg types.SourcesConfig) bool { return f.enabled }

func (f fakeCaller) Call(ctx context.Context, seed sources.Seed, cfg types.SourcesConfig, client *http.Client) sources.Result {
	if f.running != nil {
		n := atomic.AddInt32(f.running, 1)
		for {
			seen := atomic.LoadInt32(f.maxSeen)
			if n <= seen || atomic.CompareAndSwapInt32(f.maxSeen, seen, n) {
				break
			}
		}
		defer atomic.AddInt32(f.running, -1)
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return sources.Result{Name: f.name, Payload: f.payload}
}

func fanOutConfig(workers int, deadline time.Duration) types.SourcesConfig {
	cfg := types.DefaultSourcesConfig()
	cfg.Workers = workers
	cfg.Deadline = deadline
	return cfg
}

func TestFanOutCollectsAllResults(t *testing.T) {
	callers := []sources.Caller{
		fakeCaller{name: sources.SourceCitations, payload: []types.Citation{{Value: "1"}}},
		fakeCaller{name: sources.SourceStructure, payload: "sdf text"},
		fakeCaller{name: sources.SourceReactions},
	}

	completed, abandoned := FanOut(context.Background(), callers, sources.Seed{}, fanOutConfig(3, time.Second), nil)

	require.Empty(t, abandoned)
	require.Len(t, completed, 3)
	assert.False(t, completed[sources.SourceCitations].IsDud())
	assert.False(t, completed[sources.SourceStructure].IsDud())
	assert.True(t, completed[sources.SourceReactions].IsDud())
}

func TestFanOutAbandonsSlowCallers(t *testing.T) {
	callers := []sources.Caller{
		fakeCaller{name: sources.SourceCitations, payload: []types.Citation{{Value: "1"}}},
		fakeCaller{name: sources.SourceStructure, delay: 2 * time.Second, payload: "too late"},
	}

	start := time.Now()
	completed, abandoned := FanOut(context.Background(), callers, sources.Seed{}, fanOutConfig(2, 50*time.Millisecond), nil)

	assert.Less(t, time.Since(start), time.Second, "deadline must bound the collection, not the slow call")
	assert.Equal(t, []sources.SourceID{sources.SourceStructure}, abandoned)
	require.Len(t, completed, 1)
	assert.Contains(t, completed, sources.SourceCitations)
}

func TestFanOutBoundsConcurrency(t *testing.T) {
	var running, maxSeen int32
	callers := make([]sources.Caller, 6)
	names := []sources.SourceID{
		sources.SourceCitations, sources.SourceStructure, sources.SourceReactions,
		sources.SourceSpectra, sources.SourceKEGG, sources.SourceWikiPathways,
	}
	for i, name := range names {
		callers[i] = fakeCaller{name: name, delay: 20 * time.Millisecond, running: &running, maxSeen: &maxSeen}
	}

	completed, abandoned := FanOut(context.Background(), callers, sources.Seed{}, fanOutConfig(2, 5*time.Second), nil)

	require.Empty(t, abandoned)
	require.Len(t, completed, 6)
	assert.LessOrEqual(t, atomic.LoadInt32(&maxSeen), int32(2))
}

func TestOrchestrateOneMementoPerCaller(t *testing.T) {
	cfg := fanOutConfig(6, 50*time.Millisecond)
	cfg.EnableReactions = false

	callers := []sources.Caller{
		fakeCaller{name: sources.SourceCitations, enabled: true, payload: []types.Citation{{Value: "1"}}},
		fakeCaller{name: sources.SourceReactions, enabled: false, payload: []types.Reaction{{ID: "never dispatched"}}},
		fakeCaller{name: sources.SourceStructure, enabled: true, delay: 2 * time.Second, payload: "too late"},
	}

	mementos := Orchestrate(context.Background(), callers, sources.Seed{CompoundID: "MTBLC15377"}, cfg, nil)

	require.Len(t, mementos, 3)
	assert.False(t, mementos[sources.SourceCitations].IsDud())
	assert.True(t, mementos[sources.SourceReactions].IsDud(), "disabled source must yield a dud, not its payload")
	assert.True(t, mementos[sources.SourceStructure].IsDud(), "abandoned source must yield a dud")
}

func TestOrchestrateAndMergeWithOneStuckSource(t *testing.T) {
	// Five sources answer, the spectra call hangs past the deadline. The
	// document must still assemble from the five real payloads with the
	// spectra flag down.
	cfg := fanOutConfig(6, 100*time.Millisecond)
	callers := []sources.Caller{
		fakeCaller{name: sources.SourceCitations, enabled: true, payload: []types.Citation{{Value: "1"}}},
		fakeCaller{name: sources.SourceStructure, enabled: true, payload: "sdf"},
		fakeCaller{name: sources.SourceReactions, enabled: true, payload: []types.Reaction{{ID: "RHEA:1"}}},
		fakeCaller{name: sources.SourceSpectra, enabled: true, delay: 2 * time.Second, payload: sources.SpectraPayload{Spectra: []types.Spectrum{{ID: "late"}}}},
		fakeCaller{name: sources.SourceKEGG, enabled: true, payload: []types.KEGGPathway{{ID: "map1"}}},
		fakeCaller{name: sources.SourceWikiPathways, enabled: true, payload: map[string][]types.PathwayRef{"Homo sapiens": {{ID: "WP1"}}}},
	}

	mementos := Orchestrate(context.Background(), callers, sources.Seed{CompoundID: "MTBLC1"}, cfg, nil)
	require.Len(t, mementos, 6)

	m, err := NewMerger(callers)
	require.NoError(t, err)
	doc := types.NewCompoundDocument("MTBLC1")
	require.NoError(t, m.Merge(doc, mementos))

	assert.True(t, doc.Flags.HasLiterature)
	assert.True(t, doc.Flags.HasReactions)
	assert.Equal(t, "sdf", doc.Structure)
	assert.Len(t, doc.Pathways.KEGG, 1)
	assert.Len(t, doc.Pathways.WikiPathways, 1)
	assert.False(t, doc.Flags.HasMS)
	assert.Empty(t, doc.Spectra.MS)
}

func TestNewMergerRejectsUnknownSource(t *testing.T) {
	_, err := NewMerger([]sources.Caller{fakeCaller{name: "mystery"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery")
}

func TestMergeRejectsUnknownMemento(t *testing.T) {
	m, err := NewMerger(sources.All())
	require.NoError(t, err)

	doc := types.NewCompoundDocument("MTBLC15377")
	err = m.Merge(doc, map[sources.SourceID]sources.Result{"mystery": {Name: "mystery"}})
	assert.Error(t, err)
}

func TestMergeAppliesPayloads(t *testing.T) {
	m, err := NewMerger(sources.All())
	require.NoError(t, err)

	doc := types.NewCompoundDocument("MTBLC15377")
	mementos := map[sources.SourceID]sources.Result{
		sources.SourceCitations: {Name: sources.SourceCitations, Payload: []types.Citation{{Value: "15882455"}}},
		sources.SourceStructure: {Name: sources.SourceStructure, Payload: "sdf body"},
		sources.SourceReactions: {Name: sources.SourceReactions, Payload: []types.Reaction{{ID: "RHEA:10000"}}},
		sources.SourceSpectra: {Name: sources.SourceSpectra, Payload: sources.SpectraPayload{
			Spectra: []types.Spectrum{{ID: "AU1", Type: "MS"}},
			Peaks:   map[string]string{"AU1": "18.01:999"},
		}},
		sources.SourceKEGG:         {Name: sources.SourceKEGG, Payload: []types.KEGGPathway{{ID: "map00010"}}},
		sources.SourceWikiPathways: {Name: sources.SourceWikiPathways, Payload: map[string][]types.PathwayRef{"Homo sapiens": {{ID: "WP534"}}}},
	}
	require.NoError(t, m.Merge(doc, mementos))

	assert.Equal(t, "15882455", doc.Citations[0].Value)
	assert.True(t, doc.Flags.HasLiterature)
	assert.Equal(t, "sdf body", doc.Structure)
	assert.Equal(t, "RHEA:10000", doc.Reactions[0].ID)
	assert.True(t, doc.Flags.HasReactions)
	assert.Equal(t, "AU1", doc.Spectra.MS[0].ID)
	assert.True(t, doc.Flags.HasMS)
	assert.Equal(t, "map00010", doc.Pathways.KEGG[0].ID)
	assert.Len(t, doc.Pathways.WikiPathways["Homo sapiens"], 1)
}

func TestMergeDudsLeaveAbsentRepresentation(t *testing.T) {
	m, err := NewMerger(sources.All())
	require.NoError(t, err)

	doc := types.NewCompoundDocument("MTBLC15377")
	doc.Structure = "NA"
	mementos := map[sources.SourceID]sources.Result{}
	for _, c := range sources.All() {
		mementos[c.Name()] = sources.Result{Name: c.Name()}
	}
	require.NoError(t, m.Merge(doc, mementos))

	assert.Empty(t, doc.Citations)
	assert.False(t, doc.Flags.HasLiterature)
	assert.Equal(t, "NA", doc.Structure)
	assert.Empty(t, doc.Reactions)
	assert.False(t, doc.Flags.HasReactions)
	assert.Empty(t, doc.Spectra.MS)
	assert.False(t, doc.Flags.HasMS)
	assert.Empty(t, doc.Pathways.KEGG)
	assert.Empty(t, doc.Pathways.WikiPathways)
}

func TestMergeOrderIndependent(t *testing.T) {
	m, err := NewMerger(sources.All())
	require.NoError(t, err)

	mementos := map[sources.SourceID]sources.Result{
		sources.SourceCitations:    {Name: sources.SourceCitations, Payload: []types.Citation{{Value: "1"}}},
		sources.SourceStructure:    {Name: sources.SourceStructure, Payload: "sdf"},
		sources.SourceReactions:    {Name: sources.SourceReactions, Payload: []types.Reaction{{ID: "RHEA:1"}}},
		sources.SourceSpectra:      {Name: sources.SourceSpectra},
		sources.SourceKEGG:         {Name: sources.SourceKEGG, Payload: []types.KEGGPathway{{ID: "map1"}}},
		sources.SourceWikiPathways: {Name: sources.SourceWikiPathways},
	}

	// Handlers own disjoint fields; ten merges over randomized map order must
	// all land on the same document.
	reference := types.NewCompoundDocument("MTBLC1")
	require.NoError(t, m.Merge(reference, mementos))
	for i := 0; i < 10; i++ {
		doc := types.NewCompoundDocument("MTBLC1")
		require.NoError(t, m.Merge(doc, mementos))
		assert.Equal(t, reference, doc)
	}
}

func TestMergeWrongPayloadTypeIsDud(t *testing.T) {
	m, err := NewMerger(sources.All())
	require.NoError(t, err)

	doc := types.NewCompoundDocument("MTBLC15377")
	mementos := map[sources.SourceID]sources.Result{
		sources.SourceCitations: {Name: sources.SourceCitations, Payload: 42},
	}
	require.NoError(t, m.Merge(doc, mementos))

	assert.Empty(t, doc.Citations)
	assert.False(t, doc.Flags.HasLiterature)
}

func TestStatsRecord(t *testing.T) {
	s := NewStats()

	doc := types.NewCompoundDocument("MTBLC15377")
	doc.Spectra.MS = []types.Spectrum{{ID: "AU1"}, {ID: "AU2"}}
	doc.Spectra.NMR = []types.Spectrum{{ID: "110"}}

	s.RecordBuild(doc, map[sources.SourceID]sources.Result{
		sources.SourceCitations: {Name: sources.SourceCitations, Payload: []types.Citation{{Value: "1"}}},
		sources.SourceStructure: {Name: sources.SourceStructure},
	})
	s.RecordFailure()

	assert.Equal(t, 1, s.Built)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Hits[sources.SourceCitations])
	assert.Equal(t, 1, s.Duds[sources.SourceStructure])
	assert.Equal(t, 2, s.MSSpectra)
	assert.Equal(t, 1, s.NMRSpectra)
}

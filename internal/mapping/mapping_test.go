// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapping

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metabolights/compound-builder/pkg/types"
)

func singleEntryMapping(study, compound, species string) types.RefMapping {
	m := types.NewRefMapping()
	entry := types.MappingEntry{Study: study, Compound: compound, Assay: 1, Species: species}
	m.StudyMapping[study] = []types.MappingEntry{entry}
	m.CompoundMapping[compound] = []types.MappingEntry{entry}
	if species != "" {
		m.SpeciesList = []string{species}
	}
	return m
}

func TestMergeIsAssociative(t *testing.T) {
	a := singleEntryMapping("MTBLS1", "CHEBI:15377", "Homo sapiens")
	b := singleEntryMapping("MTBLS2", "CHEBI:15377", "Mus musculus")
	c := singleEntryMapping("MTBLS3", "CHEBI:16236", "Homo sapiens")

	left := Merge(Merge(a, b), c)
	right := Merge(a, Merge(b, c))

	assert.Equal(t, left, right)
}

func TestMergeKeepsEveryEntry(t *testing.T) {
	a := singleEntryMapping("MTBLS1", "CHEBI:15377", "Homo sapiens")
	b := singleEntryMapping("MTBLS2", "CHEBI:15377", "Mus musculus")

	merged := Merge(a, b)

	// Same compound from two studies: both entries survive, concatenated.
	require.Len(t, merged.CompoundMapping["CHEBI:15377"], 2)
	assert.Len(t, merged.StudyMapping["MTBLS1"], 1)
	assert.Len(t, merged.StudyMapping["MTBLS2"], 1)
	assert.Equal(t, []string{"Homo sapiens", "Mus musculus"}, merged.SpeciesList)
	assert.Equal(t, a.EntryCount()+b.EntryCount(), merged.EntryCount())
}

func TestMergeDoesNotDeduplicateEntries(t *testing.T) {
	a := singleEntryMapping("MTBLS1", "CHEBI:15377", "Homo sapiens")

	merged := Merge(a, a)

	// A retried accession contributes its entries twice. The pipeline keeps
	// both; deduplication is the consumer's concern.
	assert.Len(t, merged.CompoundMapping["CHEBI:15377"], 2)
	assert.Equal(t, []string{"Homo sapiens"}, merged.SpeciesList)
}

func TestMergeWithEmptyIsIdentityForEntries(t *testing.T) {
	a := singleEntryMapping("MTBLS1", "CHEBI:15377", "Homo sapiens")

	merged := Merge(a, types.NewRefMapping())
	assert.Equal(t, a, merged)

	merged = Merge(types.NewRefMapping(), a)
	assert.Equal(t, a, merged)
}

func studyServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/study/MTBLS1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": {
			"organism": [{"organismName": "Homo sapiens", "organismPart": "urine", "taxid": "9606"}],
			"assays": [{"assayNumber": 1}, {"assayNumber": 2}]
		}}`)
	})
	mux.HandleFunc("/study/MTBLS1/assay/1/maf", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": {"data": {"rows": [
			{"database_identifier": "CHEBI:15377", "metabolite_identification": "water", "retention_time": 1.23, "taxid": "9606"},
			{"database_identifier": "", "metabolite_identification": "unknown"}
		]}}}`)
	})
	mux.HandleFunc("/study/MTBLS1/assay/2/maf", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": {"data": {"rows": [
			{"database_identifier": "CHEBI:16236"}
		]}}}`)
	})
	return httptest.NewServer(mux)
}

func mappingConfig(srvURL string) types.MappingConfig {
	return types.MappingConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test"},
		Endpoints:  types.EndpointsConfig{MtblsWsStudy: srvURL + "/study", MtblsWsStudiesList: srvURL + "/study/list"},
		Workers:    2,
		Deadline:   5 * time.Second,
	}
}

func TestProcessAccession(t *testing.T) {
	srv := studyServer(t)
	defer srv.Close()

	m := ProcessAccession(context.Background(), srv.Client(), "MTBLS1", mappingConfig(srv.URL))

	// Two identified rows across two assays; the empty identifier is skipped.
	require.Len(t, m.StudyMapping["MTBLS1"], 2)
	require.Len(t, m.CompoundMapping["CHEBI:15377"], 1)
	require.Len(t, m.CompoundMapping["CHEBI:16236"], 1)
	assert.Equal(t, []string{"Homo sapiens"}, m.SpeciesList)

	water := m.CompoundMapping["CHEBI:15377"][0]
	assert.Equal(t, "MTBLS1", water.Study)
	assert.Equal(t, 1, water.Assay)
	assert.Equal(t, "Homo sapiens", water.Species, "single-organism studies attribute every row")
	assert.Equal(t, "urine", water.Part)
	assert.Equal(t, "9606", water.TaxID)
	assert.Equal(t, "water", water.MAFRow["metabolite_identification"])
	assert.Equal(t, "1.23", water.MAFRow["retention_time"])

	assert.Equal(t, 2, m.CompoundMapping["CHEBI:16236"][0].Assay)

	// Study-keyed entries stay lean: no raw sheet rows.
	for _, entry := range m.StudyMapping["MTBLS1"] {
		assert.Nil(t, entry.MAFRow)
	}
}

func TestProcessAccessionUnreachableStudy(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	m := ProcessAccession(context.Background(), srv.Client(), "MTBLS404", mappingConfig(srv.URL))

	assert.Equal(t, 0, m.EntryCount())
	assert.Empty(t, m.SpeciesList)
}

func TestProcessAccessionSkipsBrokenAssay(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/study/MTBLS1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": {
			"organism": [{"organismName": "Homo sapiens"}],
			"assays": [{"assayNumber": 1}, {"assayNumber": 2}]
		}}`)
	})
	mux.HandleFunc("/study/MTBLS1/assay/1/maf", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/study/MTBLS1/assay/2/maf", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": {"data": {"rows": [{"database_identifier": "CHEBI:16236"}]}}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := ProcessAccession(context.Background(), srv.Client(), "MTBLS1", mappingConfig(srv.URL))

	// The broken sheet is skipped, the good one survives.
	require.Len(t, m.StudyMapping["MTBLS1"], 1)
	assert.Equal(t, "CHEBI:16236", m.StudyMapping["MTBLS1"][0].Compound)
}

func TestProcessAccessionIgnoresUnnestedSheetRows(t *testing.T) {
	// Rows must live under content.data.rows; a sheet keyed any other way
	// contributes nothing rather than something wrong.
	mux := http.NewServeMux()
	mux.HandleFunc("/study/MTBLS1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": {"organism": [{"organismName": "Homo sapiens"}], "assays": [{"assayNumber": 1}]}}`)
	})
	mux.HandleFunc("/study/MTBLS1/assay/1/maf", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": {"rows": [{"database_identifier": "CHEBI:15377"}]}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := ProcessAccession(context.Background(), srv.Client(), "MTBLS1", mappingConfig(srv.URL))

	assert.Equal(t, 0, m.EntryCount())
}

func TestProcessAccessionMultiOrganismUsesRowColumns(t *testing.T) {
	// With several organisms there is no study-level attribution, so the
	// sheet's own species and taxid columns carry through.
	mux := http.NewServeMux()
	mux.HandleFunc("/study/MTBLS9", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": {
			"organism": [
				{"organismName": "Homo sapiens", "organismPart": "urine"},
				{"organismName": "Mus musculus", "organismPart": "liver"}
			],
			"assays": [{"assayNumber": 1}]
		}}`)
	})
	mux.HandleFunc("/study/MTBLS9/assay/1/maf", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": {"data": {"rows": [
			{"database_identifier": "CHEBI:15377", "species": "Mus musculus", "taxid": "10090"},
			{"database_identifier": "CHEBI:16236"}
		]}}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := ProcessAccession(context.Background(), srv.Client(), "MTBLS9", mappingConfig(srv.URL))

	require.Len(t, m.CompoundMapping["CHEBI:15377"], 1)
	attributed := m.CompoundMapping["CHEBI:15377"][0]
	assert.Equal(t, "Mus musculus", attributed.Species)
	assert.Equal(t, "10090", attributed.TaxID)
	assert.Empty(t, attributed.Part, "organism part is only known for single-organism studies")

	// A row with no species column stays unattributed.
	require.Len(t, m.CompoundMapping["CHEBI:16236"], 1)
	assert.Empty(t, m.CompoundMapping["CHEBI:16236"][0].Species)

	assert.Equal(t, []string{"Mus musculus"}, m.SpeciesList)
}

func TestBuildAllFoldsConcurrentResults(t *testing.T) {
	// Two studies report the same compound; the aggregate must carry both
	// entries no matter which task finishes first.
	mux := http.NewServeMux()
	for _, acc := range []string{"MTBLS1", "MTBLS2"} {
		mux.HandleFunc("/study/"+acc, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"content": {
				"organism": [{"organismName": "Homo sapiens"}],
				"assays": [{"assayNumber": 1}]
			}}`)
		})
		mux.HandleFunc("/study/"+acc+"/assay/1/maf", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"content": {"data": {"rows": [{"database_identifier": "CHEBI:15377"}]}}}`)
		})
	}
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := BuildAll(context.Background(), srv.Client(), []string{"MTBLS1", "MTBLS2"}, mappingConfig(srv.URL))

	require.Len(t, m.CompoundMapping["CHEBI:15377"], 2)
	studies := []string{
		m.CompoundMapping["CHEBI:15377"][0].Study,
		m.CompoundMapping["CHEBI:15377"][1].Study,
	}
	assert.ElementsMatch(t, []string{"MTBLS1", "MTBLS2"}, studies)
	assert.Equal(t, []string{"Homo sapiens"}, m.SpeciesList)
}

func TestBuildAllAbandonsSlowAccessions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/study/MTBLS1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": {"organism": [{"organismName": "Homo sapiens"}], "assays": [{"assayNumber": 1}]}}`)
	})
	mux.HandleFunc("/study/MTBLS1/assay/1/maf", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": {"data": {"rows": [{"database_identifier": "CHEBI:15377"}]}}}`)
	})
	mux.HandleFunc("/study/MTBLS2", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		fmt.Fprint(w, `{"content": {}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := mappingConfig(srv.URL)
	cfg.Deadline = 200 * time.Millisecond

	start := time.Now()
	m := BuildAll(context.Background(), srv.Client(), []string{"MTBLS1", "MTBLS2"}, cfg)

	assert.Less(t, time.Since(start), time.Second)
	assert.Len(t, m.CompoundMapping["CHEBI:15377"], 1, "the fast accession's work is kept")
}

func TestFetchStudyList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/study/list", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": ["MTBLS1", "MTBLS2", "MTBLS3"]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	list, err := FetchStudyList(context.Background(), srv.Client(), mappingConfig(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, []string{"MTBLS1", "MTBLS2", "MTBLS3"}, list)
}

func TestBuildAllDebugTruncates(t *testing.T) {
	// Every study 404s; only the call counts matter.
	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("/study/", func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := mappingConfig(srv.URL)
	cfg.Debug = true
	cfg.Workers = 1

	accessions := make([]string, 50)
	for i := range accessions {
		accessions[i] = fmt.Sprintf("MTBLS%d", i+1)
	}
	BuildAll(context.Background(), srv.Client(), accessions, cfg)

	assert.Equal(t, debugSampleSize, calls)
}

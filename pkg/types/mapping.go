// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MappingEntry is one study↔compound↔species association discovered in a
// metabolite assignment (MAF) sheet row.
type MappingEntry struct {
	Study    string `json:"study"`
	Compound string `json:"compound"`
	Assay    int    `json:"assay"`
	Species  string `json:"species"`
	Part     string `json:"part"`
	TaxID    string `json:"taxid"`

	// MAFRow preserves the raw sheet row the entry was built from. Omitted
	// from study-keyed entries to keep the mapping file size sane.
	MAFRow map[string]string `json:"mafEntry,omitempty"`
}

// RefMapping associates studies, compounds, and species. One private instance
// is produced per accession-processing task; the global aggregate is built by
// repeated pairwise Merge on the driver goroutine.
//
// Entries under a key are never deduplicated. SpeciesList is a true set.
type RefMapping struct {
	StudyMapping    map[string][]MappingEntry `json:"study_mapping"`
	CompoundMapping map[string][]MappingEntry `json:"compound_mapping"`
	SpeciesList     []string                  `json:"species_list"`
}

// NewRefMapping returns an empty, initialized mapping.
func NewRefMapping() RefMapping {
	return RefMapping{
		StudyMapping:    map[string][]MappingEntry{},
		CompoundMapping: map[string][]MappingEntry{},
		SpeciesList:     []string{},
	}
}

// EntryCount returns the total number of entries across both maps.
func (m RefMapping) EntryCount() int {
	n := 0
	for _, entries := range m.StudyMapping {
		n += len(entries)
	}
	for _, entries := range m.CompoundMapping {
		n += len(entries)
	}
	return n
}

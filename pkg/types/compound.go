// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CompoundDocument is the canonical compound entity under construction. One
// document is created per MTBLC accession at the start of enrichment, mutated
// in place by the merge handlers, and finalized once handed to a sink.
//
// Every flag mirrors the emptiness of the collection it describes. Flags are
// derived after merging; nothing sets them independently of the data.
type CompoundDocument struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Definition  string `json:"definition"`
	Smiles      string `json:"smiles"`
	Inchi       string `json:"inchi"`
	InchiKey    string `json:"inchiKey"`
	Formula     string `json:"formula"`
	Charge      string `json:"charge"`
	AverageMass string `json:"averagemass"`
	ExactMass   string `json:"exactmass"`

	// Structure is the SDF text returned by the Cactus resolver, or "NA"
	// when no structure could be fetched.
	Structure string `json:"structure"`

	IupacNames    []string       `json:"iupacNames"`
	Synonyms      []string       `json:"synonyms"`
	DatabaseLinks []DatabaseLink `json:"databaseLinks"`

	// Species groups origin records by lowercased species name. Populated
	// from ChEBI compound origins and from the study reference mapping.
	Species map[string][]SpeciesOrigin `json:"species"`

	Flags     Flags      `json:"flags"`
	Pathways  Pathways   `json:"pathways"`
	Citations []Citation `json:"citations"`
	Reactions []Reaction `json:"reactions"`
	Spectra   Spectra    `json:"spectra"`
}

// Flags drive the UI: each one tells the front end whether to attempt to
// render the corresponding slice of compound data.
type Flags struct {
	HasLiterature bool `json:"hasLiterature"`
	HasReactions  bool `json:"hasReactions"`
	HasSpecies    bool `json:"hasSpecies"`
	HasPathways   bool `json:"hasPathways"`
	HasNMR        bool `json:"hasNMR"`
	HasMS         bool `json:"hasMS"`
}

// Pathways holds pathway records per upstream database. KEGG pathways are a
// flat list; WikiPathways and Reactome group their records by species.
type Pathways struct {
	KEGG         []KEGGPathway           `json:"kegg"`
	WikiPathways map[string][]PathwayRef `json:"wikipathways"`
	Reactome     map[string][]PathwayRef `json:"reactome"`
}

// KEGGPathway is one pathway parsed from the KEGG flat-file format.
type KEGGPathway struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	KOPathway   string `json:"KO_PATHWAYS,omitempty"`
}

// PathwayRef is one pathway reference from WikiPathways or Reactome.
type PathwayRef struct {
	ID         string `json:"id,omitempty"`
	PathwayID  string `json:"pathwayId,omitempty"`
	ReactomeID string `json:"reactomeId,omitempty"`
	Name       string `json:"name"`
	URL        string `json:"url"`
}

// Citation starts as a ChEBI literature reference (Value holds the PubMed id)
// and is enriched with Europe PMC metadata during the fan-out.
type Citation struct {
	Value    string `json:"value"`
	Source   string `json:"source,omitempty"`
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Authors  string `json:"authorString,omitempty"`
	Abstract string `json:"abstractText,omitempty"`
	DOI      string `json:"doi,omitempty"`
}

// Reaction is one Rhea reaction involving the compound.
type Reaction struct {
	ID       string `json:"name"`
	Equation string `json:"equation"`
	ChebiID  string `json:"chebiId"`
}

// Spectra splits spectrum records by experiment type.
type Spectra struct {
	MS  []Spectrum `json:"MS"`
	NMR []Spectrum `json:"NMR"`
}

// Spectrum describes one MS or NMR spectrum. MS spectra come from MoNA, NMR
// spectra from the MetaboLights webservice.
type Spectrum struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Type       string              `json:"type"`
	URL        string              `json:"url"`
	Path       string              `json:"path,omitempty"`
	Splash     string              `json:"splash,omitempty"`
	Submitter  string              `json:"submitter,omitempty"`
	Attributes []SpectrumAttribute `json:"attributes"`
}

// SpectrumAttribute is one piece of acquisition metadata attached to a spectrum.
type SpectrumAttribute struct {
	Name        string `json:"attributeName"`
	Value       string `json:"attributeValue"`
	Description string `json:"attributeDescription"`
}

// DatabaseLink is a cross-reference from ChEBI to another database.
type DatabaseLink struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// SpeciesOrigin records where evidence for a compound/species association
// came from: a ChEBI compound origin or a MetaboLights study.
type SpeciesOrigin struct {
	Species          string `json:"Species"`
	SpeciesAccession string `json:"speciesAccession,omitempty"`
	SourceType       string `json:"sourceType,omitempty"`
	SourceAccession  string `json:"sourceAccession,omitempty"`
	Part             string `json:"part,omitempty"`
}

// NewCompoundDocument returns a document with every flag down and every
// container initialized to its absent representation.
func NewCompoundDocument(id string) *CompoundDocument {
	return &CompoundDocument{
		ID:      id,
		Species: map[string][]SpeciesOrigin{},
		Pathways: Pathways{
			KEGG:         []KEGGPathway{},
			WikiPathways: map[string][]PathwayRef{},
			Reactome:     map[string][]PathwayRef{},
		},
		Citations: []Citation{},
		Reactions: []Reaction{},
		Spectra:   Spectra{MS: []Spectrum{}, NMR: []Spectrum{}},
	}
}

// DeriveFinalFlags sets the flags that are not owned by a merge handler:
// pathway presence across all three databases, NMR presence, and species
// presence.
func (d *CompoundDocument) DeriveFinalFlags() {
	d.Flags.HasPathways = len(d.Pathways.KEGG)+len(d.Pathways.WikiPathways)+len(d.Pathways.Reactome) > 0
	d.Flags.HasNMR = len(d.Spectra.NMR) > 0
	d.Flags.HasSpecies = len(d.Species) > 0
}

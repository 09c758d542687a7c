// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/metabolights/compound-builder/internal/httputil"
	"github.com/metabolights/compound-builder/pkg/types"
)

// ChebiCompound is the seed entity every other source call keys off. It is
// fetched before the fan-out starts because the adapters depend on its
// InChIKey, ChEBI id, and citation list.
type ChebiCompound struct {
	// ID is the bare numeric ChEBI id, e.g. "15377".
	ID string

	// ChebiID is the prefixed form, e.g. "CHEBI:15377".
	ChebiID string

	Name             string
	Definition       string
	Smiles           string
	Inchi            string
	InchiKey         string
	Charge           string
	Mass             string
	MonoisotopicMass string
	Formula          string

	Synonyms      []string
	IupacNames    []string
	Citations     []types.Citation
	DatabaseLinks []types.DatabaseLink

	// Species groups origin records by lowercased species name, drawn from
	// ChEBI compound origins and the study reference mapping.
	Species map[string][]types.SpeciesOrigin
}

// Seed derives the fan-out input from the fetched compound.
func (c *ChebiCompound) Seed(compoundID string) Seed {
	return Seed{
		CompoundID: compoundID,
		ChebiID:    c.ID,
		InChIKey:   c.InchiKey,
		Citations:  c.Citations,
	}
}

// ChEBI complete-entity SOAP envelope. encoding/xml matches the local names
// regardless of namespace.
type chebiEnvelope struct {
	Return chebiReturn `xml:"Body>getCompleteEntityResponse>return"`
}

type chebiReturn struct {
	ChebiID          string        `xml:"chebiId"`
	AsciiName        string        `xml:"chebiAsciiName"`
	Definition       string        `xml:"definition"`
	Smiles           string        `xml:"smiles"`
	Inchi            string        `xml:"inchi"`
	InchiKey         string        `xml:"inchiKey"`
	Charge           string        `xml:"charge"`
	Mass             string        `xml:"mass"`
	MonoisotopicMass string        `xml:"monoisotopicMass"`
	Formulae         []chebiData   `xml:"Formulae"`
	Synonyms         []chebiData   `xml:"Synonyms"`
	IupacNames       []chebiData   `xml:"IupacNames"`
	Citations        []chebiData   `xml:"Citations"`
	DatabaseLinks    []chebiData   `xml:"DatabaseLinks"`
	CompoundOrigins  []chebiOrigin `xml:"CompoundOrigins"`
}

type chebiData struct {
	Data   string `xml:"data"`
	Type   string `xml:"type"`
	Source string `xml:"source"`
}

type chebiOrigin struct {
	SpeciesText      string `xml:"speciesText"`
	SpeciesAccession string `xml:"speciesAccession"`
	SourceType       string `xml:"SourceType"`
	SourceAccession  string `xml:"SourceAccession"`
}

// FetchChEBI retrieves and parses the ChEBI complete entity for the given
// numeric id, then folds in species evidence from the reference mapping.
// Unlike the fan-out adapters this is a hard dependency: an error here aborts
// the compound's build.
func FetchChEBI(ctx context.Context, client *http.Client, chebiID string, cfg types.SourcesConfig, mapping types.RefMapping) (*ChebiCompound, error) {
	body, err := httputil.GetText(ctx, client, cfg.Endpoints.ChebiAPI+chebiID, cfg.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("fetching ChEBI entity %s: %w", chebiID, err)
	}

	var envelope chebiEnvelope
	if err := xml.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, fmt.Errorf("parsing ChEBI response for %s: %w", chebiID, err)
	}
	entity := envelope.Return
	if entity.ChebiID == "" {
		return nil, fmt.Errorf("ChEBI response for %s carries no entity", chebiID)
	}

	compound := &ChebiCompound{
		ID:               chebiID,
		ChebiID:          entity.ChebiID,
		Name:             entity.AsciiName,
		Definition:       entity.Definition,
		Smiles:           entity.Smiles,
		Inchi:            entity.Inchi,
		InchiKey:         entity.InchiKey,
		Charge:           entity.Charge,
		Mass:             entity.Mass,
		MonoisotopicMass: entity.MonoisotopicMass,
		Species:          map[string][]types.SpeciesOrigin{},
	}
	if len(entity.Formulae) > 0 {
		compound.Formula = entity.Formulae[0].Data
	}
	for _, synonym := range entity.Synonyms {
		compound.Synonyms = append(compound.Synonyms, synonym.Data)
	}
	for _, iupac := range entity.IupacNames {
		compound.IupacNames = append(compound.IupacNames, iupac.Data)
	}
	for _, citation := range entity.Citations {
		compound.Citations = append(compound.Citations, types.Citation{
			Value:  citation.Data,
			Type:   citation.Type,
			Source: citation.Source,
		})
	}
	for _, link := range entity.DatabaseLinks {
		compound.DatabaseLinks = append(compound.DatabaseLinks, types.DatabaseLink{
			Type:  link.Type,
			Value: link.Data,
		})
	}
	for _, origin := range entity.CompoundOrigins {
		species := strings.ToLower(origin.SpeciesText)
		if species == "" {
			continue
		}
		compound.Species[species] = append(compound.Species[species], types.SpeciesOrigin{
			Species:          species,
			SpeciesAccession: origin.SpeciesAccession,
			SourceType:       origin.SourceType,
			SourceAccession:  origin.SourceAccession,
		})
	}
	compound.addMappingSpecies(mapping)

	return compound, nil
}

// addMappingSpecies appends species evidence recorded for this compound in
// the study reference mapping.
func (c *ChebiCompound) addMappingSpecies(mapping types.RefMapping) {
	entries, ok := mapping.CompoundMapping["CHEBI:"+c.ID]
	if !ok {
		return
	}
	for _, entry := range entries {
		species := strings.ToLower(entry.Species)
		if species == "" {
			continue
		}
		c.Species[species] = append(c.Species[species], types.SpeciesOrigin{
			Species:         species,
			SourceType:      "MetaboLights",
			SourceAccession: entry.Study,
			Part:            entry.Part,
		})
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mapping builds the study reference mapping: which compounds were
// measured in which studies, in which species. Each accession is processed
// into a private RefMapping; the global aggregate is produced by repeated
// pairwise Merge on the driver goroutine, so tasks never share state.
package mapping

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/metabolights/compound-builder/internal/httputil"
	"github.com/metabolights/compound-builder/pkg/types"
)

// studyResponse is the MetaboLights webservice per-study record, reduced to
// the organisms and the assay count.
type studyResponse struct {
	Content struct {
		Organism []struct {
			OrganismName string `json:"organismName"`
			OrganismPart string `json:"organismPart"`
		} `json:"organism"`
		Assays []struct {
			AssayNumber int `json:"assayNumber"`
		} `json:"assays"`
	} `json:"content"`
}

// mafResponse is one metabolite assignment sheet: the webservice nests the
// rows under content.data.rows. Row values are decoded loosely because the
// sheets mix strings and numbers.
type mafResponse struct {
	Content struct {
		Data struct {
			Rows []map[string]any `json:"rows"`
		} `json:"data"`
	} `json:"content"`
}

// ProcessAccession builds the private mapping for one study accession. It
// degrades instead of failing: an unreachable study yields an empty mapping,
// an unreadable assay sheet is skipped, and whatever was extracted is kept.
func ProcessAccession(ctx context.Context, client *http.Client, accession string, cfg types.MappingConfig) types.RefMapping {
	m := types.NewRefMapping()

	var study studyResponse
	url := fmt.Sprintf("%s/%s", cfg.Endpoints.MtblsWsStudy, accession)
	if err := httputil.GetJSON(ctx, client, url, cfg.UserAgent, &study); err != nil {
		log.WithError(err).WithField("study", accession).Warn("study record unavailable")
		return m
	}

	// With exactly one organism the whole study's rows inherit it; with
	// several the sheet's own species and taxid columns are the only
	// row-level attribution there is.
	singleOrganism := len(study.Content.Organism) == 1

	for i := 1; i <= len(study.Content.Assays); i++ {
		var maf mafResponse
		url := fmt.Sprintf("%s/%s/assay/%d/maf", cfg.Endpoints.MtblsWsStudy, accession, i)
		if err := httputil.GetJSON(ctx, client, url, cfg.UserAgent, &maf); err != nil {
			log.WithError(err).WithFields(log.Fields{"study": accession, "assay": i}).
				Warn("assay sheet unavailable")
			continue
		}

		for _, row := range maf.Content.Data.Rows {
			compound := stringValue(row["database_identifier"])
			if compound == "" {
				continue
			}
			species := stringValue(row["species"])
			part := ""
			if singleOrganism {
				species = study.Content.Organism[0].OrganismName
				part = study.Content.Organism[0].OrganismPart
			}
			if species != "" {
				m.SpeciesList = appendSpecies(m.SpeciesList, species)
			}
			entry := types.MappingEntry{
				Study:    accession,
				Compound: compound,
				Assay:    i,
				Species:  species,
				Part:     part,
				TaxID:    stringValue(row["taxid"]),
			}
			m.StudyMapping[accession] = append(m.StudyMapping[accession], entry)

			// Only the compound-keyed copy carries the raw sheet row.
			entry.MAFRow = stringRow(row)
			m.CompoundMapping[compound] = append(m.CompoundMapping[compound], entry)
		}
	}
	return m
}

// Merge combines two mappings into a new one. The species lists join as a
// sorted set; the entry lists under each key concatenate without
// deduplication, so merging is associative and no entry is ever lost.
func Merge(a, b types.RefMapping) types.RefMapping {
	out := types.NewRefMapping()

	for key, entries := range a.StudyMapping {
		out.StudyMapping[key] = append(out.StudyMapping[key], entries...)
	}
	for key, entries := range b.StudyMapping {
		out.StudyMapping[key] = append(out.StudyMapping[key], entries...)
	}
	for key, entries := range a.CompoundMapping {
		out.CompoundMapping[key] = append(out.CompoundMapping[key], entries...)
	}
	for key, entries := range b.CompoundMapping {
		out.CompoundMapping[key] = append(out.CompoundMapping[key], entries...)
	}

	for _, species := range a.SpeciesList {
		out.SpeciesList = appendSpecies(out.SpeciesList, species)
	}
	for _, species := range b.SpeciesList {
		out.SpeciesList = appendSpecies(out.SpeciesList, species)
	}
	sort.Strings(out.SpeciesList)
	return out
}

func appendSpecies(list []string, species string) []string {
	for _, s := range list {
		if s == species {
			return list
		}
	}
	return append(list, species)
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func stringRow(row map[string]any) map[string]string {
	out := make(map[string]string, len(row))
	for key, v := range row {
		out[key] = stringValue(v)
	}
	return out
}

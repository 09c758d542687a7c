// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/metabolights/compound-builder/internal/mapping"
	"github.com/metabolights/compound-builder/internal/sink"
	"github.com/metabolights/compound-builder/pkg/types"
)

var mappingCmd = &cobra.Command{
	Use:   "mapping [study-accessions...]",
	Short: "Build the study reference mapping",
	Long: `Mapping walks the MetaboLights studies, reads each study's metabolite
assignment sheets, and records which compounds were measured in which studies
and species. The result feeds the build stage, which folds the species
evidence into each compound document.

Without arguments every study from the webservice is processed; passing
accessions restricts the run to those studies.`,
	RunE: runMapping,
}

func init() {
	mappingCmd.Flags().String("dest", "mapping.json", "output file for the mapping")
	mappingCmd.Flags().String("format", "", "output encoding: json or yaml (default: from extension)")
	mappingCmd.Flags().Int("workers", 6, "studies processed concurrently")
	mappingCmd.Flags().Duration("deadline", 500*time.Second, "shared deadline for one batch of studies")
	mappingCmd.Flags().Duration("timeout", 60*time.Second, "HTTP request timeout")
	mappingCmd.Flags().Bool("debug", false, "process only a small sample of studies")

	rootCmd.AddCommand(mappingCmd)
}

func runMapping(cmd *cobra.Command, args []string) error {
	dest, _ := cmd.Flags().GetString("dest")
	format, _ := cmd.Flags().GetString("format")
	workers, _ := cmd.Flags().GetInt("workers")
	deadline, _ := cmd.Flags().GetDuration("deadline")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg := types.MappingConfig{
		HTTPConfig:  types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent},
		Endpoints:   types.DefaultEndpoints(),
		Workers:     workers,
		Deadline:    deadline,
		Destination: dest,
		Format:      format,
		Debug:       debug,
	}

	client := &http.Client{Timeout: cfg.Timeout}
	accessions := args
	if len(accessions) == 0 {
		var err error
		accessions, err = mapping.FetchStudyList(cmd.Context(), client, cfg)
		if err != nil {
			return fmt.Errorf("fetching study list: %w", err)
		}
	}

	m := mapping.BuildAll(cmd.Context(), client, accessions, cfg)
	if err := sink.SaveMapping(cfg.Destination, m, cfg.Format); err != nil {
		return err
	}

	fmt.Printf("Mapped %d studies: %d entries, %d species -> %s\n",
		len(m.StudyMapping), m.EntryCount(), len(m.SpeciesList), cfg.Destination)
	return nil
}

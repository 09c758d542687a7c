// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/metabolights/compound-builder/internal/enrich"
	"github.com/metabolights/compound-builder/pkg/types"
)

var reactomeCmd = &cobra.Command{
	Use:   "reactome",
	Short: "Build the cached Reactome pathway file",
	Long: `Reactome downloads the ChEBI-to-Reactome bulk export, groups the
pathway rows by MTBLC accession, and writes the result as a JSON file. The
build stage reads this file instead of querying Reactome live, so refresh it
whenever Reactome publishes a new release.`,
	RunE: runReactome,
}

func init() {
	reactomeCmd.Flags().String("dest", "reactome.json", "output file for the pathway cache")
	reactomeCmd.Flags().String("export-url", "", "ChEBI-to-Reactome export URL (default: the current Reactome release)")
	reactomeCmd.Flags().Duration("timeout", 120*time.Second, "HTTP request timeout")

	rootCmd.AddCommand(reactomeCmd)
}

func runReactome(cmd *cobra.Command, args []string) error {
	dest, _ := cmd.Flags().GetString("dest")
	exportURL, _ := cmd.Flags().GetString("export-url")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cfg := types.DefaultSourcesConfig()
	cfg.Timeout = timeout
	cfg.UserAgent = defaultUserAgent
	if exportURL != "" {
		cfg.Endpoints.ReactomeExport = exportURL
	}

	client := &http.Client{Timeout: cfg.Timeout}
	r, err := enrich.FetchReactome(cmd.Context(), client, cfg)
	if err != nil {
		return err
	}
	if len(r) == 0 {
		return fmt.Errorf("reactome export %s yielded no pathways", cfg.Endpoints.ReactomeExport)
	}
	if err := enrich.SaveReactome(dest, r); err != nil {
		return err
	}

	fmt.Printf("Cached Reactome pathways for %d compounds -> %s\n", len(r), dest)
	return nil
}

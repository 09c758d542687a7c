// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "compound-builder/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RedisConfig holds connection settings for the Redis queue backend.
// No defaults for host/port; they come from the config file or flags.
type RedisConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	DB       int    `json:"db" yaml:"db"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// Addr returns the host:port address for the Redis client.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// QueueConfig holds settings for the compound work queue built on top of the
// Redis client.
type QueueConfig struct {
	// Key is the Redis list the chunks are stored under (default "compounds").
	Key string `json:"key" yaml:"key"`

	// ChunkSize is the number of compound ids per queue entry (default 200).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// NewCompoundsOnly restricts population to ids not already present in
	// the output directory.
	NewCompoundsOnly bool `json:"new_compounds_only" yaml:"new_compounds_only"`
}

// EndpointsConfig keeps every external API base URL in one place so tests can
// substitute httptest servers and operators can point at mirrors.
type EndpointsConfig struct {
	// MtblsWsCompoundsList returns the full MTBLC id list.
	MtblsWsCompoundsList string `json:"mtbls_ws_compounds_list" yaml:"mtbls_ws_compounds_list"`

	// MtblsWsCompound is the per-compound detail endpoint; the MTBLC id is appended.
	MtblsWsCompound string `json:"mtbls_ws_compound" yaml:"mtbls_ws_compound"`

	// MtblsWsStudiesList returns the full MTBLS accession list.
	MtblsWsStudiesList string `json:"mtbls_ws_studies_list" yaml:"mtbls_ws_studies_list"`

	// MtblsWsStudy is the per-study detail endpoint; the accession is appended.
	MtblsWsStudy string `json:"mtbls_ws_study" yaml:"mtbls_ws_study"`

	// ChebiAPI is the ChEBI complete-entity endpoint; the numeric id is appended.
	ChebiAPI string `json:"chebi_api" yaml:"chebi_api"`

	// EuropePMC is the citation search endpoint; the PubMed id is appended.
	EuropePMC string `json:"epmc_api" yaml:"epmc_api"`

	// Cactus resolves an InChIKey to an SDF structure.
	Cactus string `json:"cactus_api" yaml:"cactus_api"`

	// Rhea is the reaction search endpoint.
	Rhea string `json:"rhea_api" yaml:"rhea_api"`

	// MoNA is the spectra search endpoint; contains one %s for the InChIKey.
	MoNA string `json:"mona_api" yaml:"mona_api"`

	// KEGGConv maps a chebi:NNN id to a KEGG compound id.
	KEGGConv string `json:"kegg_conv_api" yaml:"kegg_conv_api"`

	// KEGGLink lists the pathways for a KEGG compound id.
	KEGGLink string `json:"kegg_link_api" yaml:"kegg_link_api"`

	// KEGGGet returns one pathway in the KEGG flat-file format.
	KEGGGet string `json:"kegg_get_api" yaml:"kegg_get_api"`

	// WikiPathways is the structure search endpoint; the InChIKey is appended.
	WikiPathways string `json:"wikipathways_api" yaml:"wikipathways_api"`

	// ReactomeExport is the tab-separated ChEBI-to-Reactome bulk export.
	ReactomeExport string `json:"reactome_export" yaml:"reactome_export"`
}

// DefaultEndpoints returns the production endpoints.
func DefaultEndpoints() EndpointsConfig {
	return EndpointsConfig{
		MtblsWsCompoundsList: "https://www.ebi.ac.uk/metabolights/webservice/compounds/list",
		MtblsWsCompound:      "https://www.ebi.ac.uk/metabolights/webservice/compounds/",
		MtblsWsStudiesList:   "https://www.ebi.ac.uk/metabolights/webservice/study/list",
		MtblsWsStudy:         "https://www.ebi.ac.uk/metabolights/webservice/study",
		ChebiAPI:             "https://www.ebi.ac.uk/webservices/chebi/2.0/test/getCompleteEntity?chebiId=",
		EuropePMC:            "https://www.ebi.ac.uk/europepmc/webservices/rest/search?query=ext_id:",
		Cactus:               "https://cactus.nci.nih.gov/chemical/structure/",
		Rhea:                 "https://www.rhea-db.org/rhea",
		MoNA:                 "https://mona.fiehnlab.ucdavis.edu/rest/spectra/search?query=compound.metaData=q='name==\"InChIKey\" and value==\"%s\"'",
		KEGGConv:             "https://rest.kegg.jp/conv/cpd/chebi:",
		KEGGLink:             "https://rest.kegg.jp/link/pathway/",
		KEGGGet:              "https://rest.kegg.jp/get/",
		WikiPathways:         "https://webservice.wikipathways.org/findPathwaysByXref?ids=",
		ReactomeExport:       "https://www.reactome.org/download/current/ChEBI2Reactome.txt",
	}
}

// SourcesConfig holds settings for the enrichment fan-out.
type SourcesConfig struct {
	HTTPConfig `yaml:",inline"`

	Endpoints EndpointsConfig `json:"endpoints" yaml:"endpoints"`

	// Workers bounds the fan-out pool. The default (6) matches the source
	// count so no source call queues behind another.
	Workers int `json:"workers" yaml:"workers"`

	// Deadline is the shared budget for all source calls issued for one
	// compound. Calls still running at the deadline are abandoned.
	Deadline time.Duration `json:"deadline" yaml:"deadline"`

	// A disabled source is not dispatched but still contributes a
	// nil-payload memento.
	EnableCitations    bool `json:"enable_citations" yaml:"enable_citations"`
	EnableStructure    bool `json:"enable_structure" yaml:"enable_structure"`
	EnableReactions    bool `json:"enable_reactions" yaml:"enable_reactions"`
	EnableSpectra      bool `json:"enable_spectra" yaml:"enable_spectra"`
	EnableKEGG         bool `json:"enable_kegg" yaml:"enable_kegg"`
	EnableWikiPathways bool `json:"enable_wikipathways" yaml:"enable_wikipathways"`
}

// DefaultSourcesConfig returns a SourcesConfig with every source enabled.
func DefaultSourcesConfig() SourcesConfig {
	return SourcesConfig{
		HTTPConfig:         HTTPConfig{Timeout: 60 * time.Second, UserAgent: "compound-builder/0.1"},
		Endpoints:          DefaultEndpoints(),
		Workers:            6,
		Deadline:           500 * time.Second,
		EnableCitations:    true,
		EnableStructure:    true,
		EnableReactions:    true,
		EnableSpectra:      true,
		EnableKEGG:         true,
		EnableWikiPathways: true,
	}
}

// MappingConfig holds settings for the reference mapping builder.
type MappingConfig struct {
	HTTPConfig `yaml:",inline"`

	Endpoints EndpointsConfig `json:"endpoints" yaml:"endpoints"`

	// Workers is the number of accessions processed concurrently (default 6).
	Workers int `json:"workers" yaml:"workers"`

	// Deadline is the shared budget for one batch of accession tasks.
	Deadline time.Duration `json:"deadline" yaml:"deadline"`

	// Destination is the path the mapping file is written to.
	Destination string `json:"destination" yaml:"destination"`

	// Format selects the mapping file encoding: json or yaml.
	Format string `json:"format" yaml:"format"`

	// Debug truncates the study list to a small sample.
	Debug bool `json:"debug" yaml:"debug"`
}

// SinkConfig holds settings for compound persistence.
type SinkConfig struct {
	// Destination is the root of the compound reference layer on disk. Each
	// compound gets its own subdirectory.
	Destination string `json:"destination" yaml:"destination"`

	// IndexPath is the SQLite index database path. Empty disables the index.
	IndexPath string `json:"index_path,omitempty" yaml:"index_path,omitempty"`
}

// BuilderConfig groups everything the compound build driver needs.
type BuilderConfig struct {
	Redis   RedisConfig   `json:"redis" yaml:"redis"`
	Queue   QueueConfig   `json:"queue" yaml:"queue"`
	Sources SourcesConfig `json:"sources" yaml:"sources"`
	Sink    SinkConfig    `json:"sink" yaml:"sink"`

	// MappingPath is the reference mapping file consumed during enrichment.
	MappingPath string `json:"mapping_path" yaml:"mapping_path"`

	// ReactomePath is the cached Reactome pathway file.
	ReactomePath string `json:"reactome_path" yaml:"reactome_path"`
}

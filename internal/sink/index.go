// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/metabolights/compound-builder/pkg/types"
)

// IndexSink maintains a SQLite index of built compounds so the reference
// layer can be queried without walking the directory tree. The full document
// is stored as JSON next to the indexed columns.
type IndexSink struct {
	db *sql.DB
}

// NewIndexSink opens or creates the index database at path.
func NewIndexSink(path string) (*IndexSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	s := &IndexSink{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database connection.
func (s *IndexSink) Close() error {
	return s.db.Close()
}

func (s *IndexSink) createSchema() error {
	const schema = `CREATE TABLE IF NOT EXISTS compounds (
		id TEXT PRIMARY KEY,
		name TEXT,
		formula TEXT,
		inchikey TEXT,
		has_literature INTEGER NOT NULL,
		has_reactions INTEGER NOT NULL,
		has_species INTEGER NOT NULL,
		has_pathways INTEGER NOT NULL,
		has_nmr INTEGER NOT NULL,
		has_ms INTEGER NOT NULL,
		document TEXT NOT NULL
	)`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating index schema: %w", err)
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_compounds_inchikey ON compounds(inchikey)`); err != nil {
		return fmt.Errorf("creating inchikey index: %w", err)
	}
	return nil
}

func (s *IndexSink) SaveCompound(doc *types.CompoundDocument) error {
	document, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding compound %s for index: %w", doc.ID, err)
	}

	_, err = s.db.Exec(`INSERT INTO compounds
		(id, name, formula, inchikey, has_literature, has_reactions, has_species, has_pathways, has_nmr, has_ms, document)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, formula=excluded.formula, inchikey=excluded.inchikey,
			has_literature=excluded.has_literature, has_reactions=excluded.has_reactions,
			has_species=excluded.has_species, has_pathways=excluded.has_pathways,
			has_nmr=excluded.has_nmr, has_ms=excluded.has_ms, document=excluded.document`,
		doc.ID, doc.Name, doc.Formula, doc.InchiKey,
		doc.Flags.HasLiterature, doc.Flags.HasReactions, doc.Flags.HasSpecies,
		doc.Flags.HasPathways, doc.Flags.HasNMR, doc.Flags.HasMS,
		string(document))
	if err != nil {
		return fmt.Errorf("indexing compound %s: %w", doc.ID, err)
	}
	return nil
}

// SaveSpectrum is a no-op for the index; peak lists live on disk only.
func (s *IndexSink) SaveSpectrum(compoundID, spectrumID, peaks string) error {
	return nil
}

// Get retrieves one indexed document by MTBLC id.
func (s *IndexSink) Get(id string) (*types.CompoundDocument, error) {
	var document string
	err := s.db.QueryRow(`SELECT document FROM compounds WHERE id = ?`, id).Scan(&document)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("compound %s not indexed", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying compound %s: %w", id, err)
	}

	var doc types.CompoundDocument
	if err := json.Unmarshal([]byte(document), &doc); err != nil {
		return nil, fmt.Errorf("decoding indexed compound %s: %w", id, err)
	}
	return &doc, nil
}

// Count returns the number of indexed compounds.
func (s *IndexSink) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM compounds`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting compounds: %w", err)
	}
	return n, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sink persists finished compound documents and reference mappings.
// Sinks are write-once: the driver hands over a finalized document and never
// rewrites it within a run.
package sink

import (
	"github.com/metabolights/compound-builder/pkg/types"
)

// CompoundSink receives finished compound documents. SaveSpectrum stores the
// raw peak list of one MS spectrum alongside the document.
type CompoundSink interface {
	SaveCompound(doc *types.CompoundDocument) error
	SaveSpectrum(compoundID, spectrumID, peaks string) error
}

// Multi fans one save out to several sinks, stopping at the first failure.
type Multi []CompoundSink

func (m Multi) SaveCompound(doc *types.CompoundDocument) error {
	for _, s := range m {
		if err := s.SaveCompound(doc); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) SaveSpectrum(compoundID, spectrumID, peaks string) error {
	for _, s := range m {
		if err := s.SaveSpectrum(compoundID, spectrumID, peaks); err != nil {
			return err
		}
	}
	return nil
}

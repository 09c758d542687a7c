// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"

	"github.com/metabolights/compound-builder/internal/httputil"
	"github.com/metabolights/compound-builder/pkg/types"
)

// SpectraCaller searches MoNA (MassBank of North America) for MS spectra
// matching the compound's InChIKey.
type SpectraCaller struct{}

// SpectraPayload is the spectra memento body: the document-ready spectrum
// records plus the raw peak lists, keyed by spectrum id, for the sink to
// write as standalone files. The adapter itself performs no file I/O; side
// effects stay out of the fan-out tasks.
type SpectraPayload struct {
	Spectra []types.Spectrum
	Peaks   map[string]string
}

func (SpectraCaller) Name() SourceID { return SourceSpectra }

func (SpectraCaller) Enabled(cfg types.SourcesConfig) bool { return cfg.EnableSpectra }

func (s SpectraCaller) Call(ctx context.Context, seed Seed, cfg types.SourcesConfig, client *http.Client) Result {
	return guard(s.Name(), seed.CompoundID, func() (any, error) {
		return fetchSpectra(ctx, seed, cfg, client)
	})
}

type monaSpectrum struct {
	ID     any `json:"id"`
	Splash struct {
		Splash string `json:"splash"`
	} `json:"splash"`
	Submitter struct {
		FirstName    string `json:"firstName"`
		LastName     string `json:"lastName"`
		EmailAddress string `json:"emailAddress"`
		Institution  string `json:"institution"`
	} `json:"submitter"`
	MetaData []struct {
		Name     string `json:"name"`
		Value    any    `json:"value"`
		Computed bool   `json:"computed"`
	} `json:"metaData"`
	Spectrum string `json:"spectrum"`
}

func fetchSpectra(ctx context.Context, seed Seed, cfg types.SourcesConfig, client *http.Client) (SpectraPayload, error) {
	if seed.InChIKey == "" {
		return SpectraPayload{}, fmt.Errorf("no InChIKey for %s", seed.CompoundID)
	}
	url := fmt.Sprintf(cfg.Endpoints.MoNA, seed.InChIKey)

	var body []monaSpectrum
	if err := httputil.GetJSON(ctx, client, url, cfg.UserAgent, &body); err != nil {
		return SpectraPayload{}, err
	}

	payload := SpectraPayload{
		Spectra: make([]types.Spectrum, 0, len(body)),
		Peaks:   make(map[string]string, len(body)),
	}
	for _, raw := range body {
		id := fmt.Sprint(raw.ID)
		spectrum := types.Spectrum{
			ID:     id,
			Name:   id,
			Type:   "MS",
			URL:    fmt.Sprintf("/metabolights/webservice/beta/spectra/%s/%s", seed.CompoundID, id),
			Splash: raw.Splash.Splash,
			Submitter: fmt.Sprintf("%s %s ; %s ; %s",
				raw.Submitter.FirstName, raw.Submitter.LastName,
				raw.Submitter.EmailAddress, raw.Submitter.Institution),
			Attributes: []types.SpectrumAttribute{},
		}
		// Computed metadata is MoNA-internal; only acquisition metadata
		// becomes a spectrum attribute.
		for _, md := range raw.MetaData {
			if md.Computed {
				continue
			}
			spectrum.Attributes = append(spectrum.Attributes, types.SpectrumAttribute{
				Name:  md.Name,
				Value: fmt.Sprint(md.Value),
			})
		}
		payload.Spectra = append(payload.Spectra, spectrum)
		payload.Peaks[id] = raw.Spectrum
	}
	return payload, nil
}

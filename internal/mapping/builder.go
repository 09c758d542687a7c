// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapping

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/metabolights/compound-builder/internal/httputil"
	"github.com/metabolights/compound-builder/pkg/types"
)

// debugSampleSize is how many accessions a debug run keeps.
const debugSampleSize = 10

// FetchStudyList retrieves every MTBLS accession from the webservice.
func FetchStudyList(ctx context.Context, client *http.Client, cfg types.MappingConfig) ([]string, error) {
	var body struct {
		Content []string `json:"content"`
	}
	if err := httputil.GetJSON(ctx, client, cfg.Endpoints.MtblsWsStudiesList, cfg.UserAgent, &body); err != nil {
		return nil, err
	}
	return body.Content, nil
}

// BuildAll processes every accession and folds the per-accession mappings
// into one aggregate. Accessions run in batches of cfg.Workers goroutines;
// each batch shares one deadline, and a task still running at the deadline is
// abandoned with only its siblings' results kept. All folding happens here,
// on the caller's goroutine.
func BuildAll(ctx context.Context, client *http.Client, accessions []string, cfg types.MappingConfig) types.RefMapping {
	if cfg.Debug && len(accessions) > debugSampleSize {
		accessions = accessions[:debugSampleSize]
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 6
	}
	deadline := cfg.Deadline
	if deadline <= 0 {
		deadline = 500 * time.Second
	}

	aggregate := types.NewRefMapping()
	for start := 0; start < len(accessions); start += workers {
		end := min(start+workers, len(accessions))
		batch := accessions[start:end]

		// Buffered so abandoned tasks can still deposit and exit.
		results := make(chan types.RefMapping, len(batch))
		for _, accession := range batch {
			go func(accession string) {
				results <- ProcessAccession(ctx, client, accession, cfg)
			}(accession)
		}

		timer := time.NewTimer(deadline)
		collected := 0
	collect:
		for collected < len(batch) {
			select {
			case m := <-results:
				aggregate = Merge(aggregate, m)
				collected++
			case <-timer.C:
				log.WithField("abandoned", len(batch)-collected).
					Warn("mapping batch hit its deadline")
				break collect
			case <-ctx.Done():
				timer.Stop()
				return aggregate
			}
		}
		timer.Stop()

		log.WithFields(log.Fields{
			"processed": end,
			"total":     len(accessions),
			"entries":   aggregate.EntryCount(),
		}).Info("mapping progress")
	}
	return aggregate
}

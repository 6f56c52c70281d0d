package organizer

import (
	"errors"

	"sanaflow/logger"
	"sanaflow/models"
)

// ErrEmptyBatch signals that zero raw records were submitted. The returned
// document is still valid (zero totals, nil date range), so callers decide
// whether an empty pull is an error or an acceptable empty result.
var ErrEmptyBatch = errors.New("empty record batch")

// Result carries the organized document together with batch accounting.
type Result struct {
	Document *models.OrganizedDocument
	Accepted int
	Rejected int
}

// Organize converts one unordered batch of raw API records into the
// organized document: normalize each record (skipping and counting the
// malformed ones), fold the survivors into the indexed views, then derive
// the metadata. A malformed record never aborts the batch; the only
// reported condition is ErrEmptyBatch for zero-length input.
func Organize(records []models.SourceRecord, fetchTimestamp, sourceAPI string) (*Result, error) {
	log := logger.GetLogger().WithComponent("organizer")

	observations := make([]models.CurrencyObservation, 0, len(records))
	rejected := 0
	for _, rec := range records {
		obs, err := normalize(rec)
		if err != nil {
			rejected++
			log.WithFields(logger.Fields{
				"category": rec.Category,
				"keys":     len(rec.Raw),
			}).Debug("skipping malformed record")
			continue
		}
		observations = append(observations, obs)
	}

	byDate, byCurrency, all := buildIndexes(observations)

	doc := &models.OrganizedDocument{
		Metadata:   summarize(all, fetchTimestamp, sourceAPI),
		ByDate:     byDate,
		ByCurrency: byCurrency,
		AllRecords: all,
	}

	res := &Result{
		Document: doc,
		Accepted: len(all),
		Rejected: rejected,
	}

	if rejected > 0 {
		log.WithFields(logger.Fields{
			"accepted": res.Accepted,
			"rejected": res.Rejected,
		}).Warn("batch contained malformed records")
	}

	if len(records) == 0 {
		return res, ErrEmptyBatch
	}
	return res, nil
}

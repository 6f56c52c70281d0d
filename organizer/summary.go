package organizer

import (
	"sanaflow/models"
)

// summarize derives the batch metadata from the flat record list. Date
// tokens are compared as plain strings; callers supply zero-padded,
// lexicographically sortable tokens (Jalali "YYYY/MM/DD" qualifies), so no
// calendar parsing happens here. The first occurrence of the min/max value
// is reported. Never fails: an empty list yields a nil/nil date range.
func summarize(all []models.CurrencyObservation, fetchTimestamp, sourceAPI string) models.Metadata {
	meta := models.Metadata{
		FetchTimestamp: fetchTimestamp,
		SourceAPI:      sourceAPI,
		TotalRecords:   len(all),
	}

	if len(all) == 0 {
		return meta
	}

	earliest := all[0].Date
	latest := all[0].Date
	for _, obs := range all[1:] {
		if obs.Date < earliest {
			earliest = obs.Date
		}
		if obs.Date > latest {
			latest = obs.Date
		}
	}

	meta.DateRange = models.DateRange{Earliest: &earliest, Latest: &latest}
	return meta
}

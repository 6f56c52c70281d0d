package organizer

import (
	"sanaflow/models"
)

// buildIndexes folds the accepted observations into the by-date and
// by-currency views plus the flat list, in a single pass over the input.
// Input order is preserved in all three views, including within each keyed
// slice. No dedup is performed: repeated pulls of the same (currency, date)
// pair yield repeated entries. Keys are created lazily, so a key exists iff
// at least one observation maps to it.
func buildIndexes(observations []models.CurrencyObservation) (byDate, byCurrency map[string][]models.CurrencyObservation, all []models.CurrencyObservation) {
	byDate = make(map[string][]models.CurrencyObservation)
	byCurrency = make(map[string][]models.CurrencyObservation)
	all = make([]models.CurrencyObservation, 0, len(observations))

	for _, obs := range observations {
		all = append(all, obs)
		byDate[obs.Date] = append(byDate[obs.Date], obs)
		byCurrency[obs.Currency] = append(byCurrency[obs.Currency], obs)
	}

	return byDate, byCurrency, all
}

package organizer

import (
	"errors"

	"sanaflow/models"
)

// ErrMalformedRecord marks a raw record that lacks a resolvable currency,
// price or date. Malformed records are skipped and counted by the facade,
// never propagated.
var ErrMalformedRecord = errors.New("malformed record")

const defaultCategory = "main"

// normalize validates one raw record and extracts the uniform observation
// fields. The raw record is retained by reference inside the observation;
// unknown keys are never dropped. The category hint comes from the position
// of the record in the API response and loses to an explicit category key
// inside the record itself.
func normalize(rec models.SourceRecord) (models.CurrencyObservation, error) {
	raw := rec.Raw
	if raw == nil {
		return models.CurrencyObservation{}, ErrMalformedRecord
	}

	currency, ok := resolveString(raw, currencyAliases)
	if !ok {
		return models.CurrencyObservation{}, ErrMalformedRecord
	}

	price, ok := resolveField(raw, priceAliases)
	if !ok {
		return models.CurrencyObservation{}, ErrMalformedRecord
	}

	date, ok := resolveString(raw, dateAliases)
	if !ok {
		return models.CurrencyObservation{}, ErrMalformedRecord
	}

	category, ok := resolveString(raw, categoryAliases)
	if !ok {
		category = rec.Category
	}
	if category == "" {
		category = defaultCategory
	}

	return models.CurrencyObservation{
		Currency: currency,
		Price:    price,
		Date:     date,
		Category: category,
		Raw:      raw,
	}, nil
}

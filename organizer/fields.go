package organizer

import (
	"sanaflow/models"
)

// Each logical field resolves through a fixed priority-ordered list of
// source keys; the first present non-null key wins. The SANA feed has
// shipped several shapes over time, including Persian key names, so the
// alias lists carry every spelling observed in practice.
var (
	currencyAliases = []string{"currency", "name", "symbol", "code", "title", "ارز"}
	priceAliases    = []string{"price", "value", "rate", "amount", "قیمت", "نرخ"}
	dateAliases     = []string{"date", "jdate", "jalali_date", "d", "created_at", "updated_at", "timestamp", "dt", "تاریخ"}
	categoryAliases = []string{"category", "group", "type"}
)

// resolveField returns the value of the first alias present with a non-nil
// value, or false when none resolve.
func resolveField(raw models.RawRecord, aliases []string) (any, bool) {
	for _, key := range aliases {
		if v, ok := raw[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// resolveString resolves a field and renders it as a string. Empty strings
// count as unresolved so blank currency codes and dates are rejected rather
// than indexed under "".
func resolveString(raw models.RawRecord, aliases []string) (string, bool) {
	v, ok := resolveField(raw, aliases)
	if !ok {
		return "", false
	}
	s := scalarString(v)
	if s == "" {
		return "", false
	}
	return s, true
}

package organizer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"sanaflow/models"
)

// The flattened table always starts with these columns, in this order,
// regardless of which raw keys the batch happens to carry.
var leadingColumns = []string{"currency", "price", "category", "date"}

// Flatten projects the record set into a fixed-column row sequence for
// tabular export. After the declared leading columns come the remaining
// scalar and nested keys found across all raw records, unioned and sorted
// so the schema is deterministic for a given input. Missing values fill as
// empty strings; nested values serialize as compact JSON rather than being
// dropped, so no row is ragged and no field is lost. Flattening is
// idempotent: the same input always yields byte-identical rows.
func Flatten(all []models.CurrencyObservation) *models.Table {
	lead := make(map[string]struct{}, len(leadingColumns))
	for _, c := range leadingColumns {
		lead[c] = struct{}{}
	}

	extraSet := make(map[string]struct{})
	for _, obs := range all {
		for key := range obs.Raw {
			if _, ok := lead[key]; ok {
				continue
			}
			extraSet[key] = struct{}{}
		}
	}

	extras := make([]string, 0, len(extraSet))
	for key := range extraSet {
		extras = append(extras, key)
	}
	sort.Strings(extras)

	columns := append(append([]string{}, leadingColumns...), extras...)

	rows := make([][]string, 0, len(all))
	for _, obs := range all {
		row := make([]string, 0, len(columns))
		row = append(row,
			obs.Currency,
			scalarString(obs.Price),
			obs.Category,
			obs.Date,
		)
		for _, key := range extras {
			v, ok := obs.Raw[key]
			if !ok || v == nil {
				row = append(row, "")
				continue
			}
			row = append(row, cellString(v))
		}
		rows = append(rows, row)
	}

	return &models.Table{Columns: columns, Rows: rows}
}

// scalarString renders a scalar value for tabular output without numeric
// coercion: strings and json.Number pass through verbatim.
func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// cellString renders any raw value for a table cell. Nested maps and lists
// become compact JSON so the export stays inspectable by hand.
func cellString(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	default:
		return scalarString(v)
	}
}

package fetcher

import (
	"sort"

	"sanaflow/models"
)

// The SANA endpoint has shipped several payload shapes: a bare record list,
// a {"data": [...]} wrapper, {"data": {group: [...]}} groupings, and nested
// group dicts without the wrapper. The walker descends all of them and tags
// each record with a category derived from the enclosing key path.

var dateProbe = []string{"date", "d", "time", "jdate", "jalali_date", "created_at", "updated_at", "timestamp", "dt"}
var priceProbe = []string{"price", "rate", "value"}

// Records walks a decoded payload and yields the raw records it contains.
// Group keys are visited in sorted order so repeated runs over the same
// payload produce the same record sequence.
func Records(data any) []models.SourceRecord {
	var out []models.SourceRecord

	appendItems := func(items []any, category string) {
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, models.SourceRecord{Raw: models.RawRecord(m), Category: category})
		}
	}

	switch doc := data.(type) {
	case []any:
		appendItems(doc, "main")

	case map[string]any:
		if inner, ok := doc["data"]; ok {
			switch d := inner.(type) {
			case []any:
				appendItems(d, "main")
			case map[string]any:
				for _, key := range sortedKeys(d) {
					switch v := d[key].(type) {
					case []any:
						appendItems(v, key)
					case map[string]any:
						appendItems([]any{v}, key)
					}
				}
			}
			break
		}

		for _, key := range sortedKeys(doc) {
			switch v := doc[key].(type) {
			case []any:
				appendItems(v, key)
			case map[string]any:
				if looksLikeRecord(v) {
					appendItems([]any{v}, key)
					continue
				}
				// Nested grouping, one level deeper.
				for _, subkey := range sortedKeys(v) {
					path := key + "." + subkey
					switch sv := v[subkey].(type) {
					case []any:
						appendItems(sv, path)
					case map[string]any:
						appendItems([]any{sv}, path)
					}
				}
			}
		}
	}

	return out
}

// looksLikeRecord reports whether a map carries a date or price-like field,
// distinguishing a single record from a grouping container.
func looksLikeRecord(m map[string]any) bool {
	for _, f := range dateProbe {
		if v, ok := m[f]; ok && v != nil {
			return true
		}
	}
	for _, f := range priceProbe {
		if _, ok := m[f]; ok {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

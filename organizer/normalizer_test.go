package organizer

import (
	"encoding/json"
	"errors"
	"testing"

	"sanaflow/models"
)

func TestNormalizeAliasPriority(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]any
		want models.CurrencyObservation
	}{
		{
			name: "price preferred over rate",
			raw:  map[string]any{"currency": "USD", "price": "520000", "rate": "519000", "date": "1402/10/15"},
			want: models.CurrencyObservation{Currency: "USD", Price: "520000", Date: "1402/10/15", Category: "main"},
		},
		{
			name: "rate accepted when price absent",
			raw:  map[string]any{"currency": "USD", "rate": "519000", "date": "1402/10/15"},
			want: models.CurrencyObservation{Currency: "USD", Price: "519000", Date: "1402/10/15", Category: "main"},
		},
		{
			name: "date preferred over jdate",
			raw:  map[string]any{"currency": "USD", "price": "1", "date": "1402/10/15", "jdate": "1402/10/14"},
			want: models.CurrencyObservation{Currency: "USD", Price: "1", Date: "1402/10/15", Category: "main"},
		},
		{
			name: "jdate accepted when date absent",
			raw:  map[string]any{"currency": "USD", "price": "1", "jdate": "1402/10/14"},
			want: models.CurrencyObservation{Currency: "USD", Price: "1", Date: "1402/10/14", Category: "main"},
		},
		{
			name: "currency falls back to name",
			raw:  map[string]any{"name": "dollar", "price": "1", "date": "1402/10/15"},
			want: models.CurrencyObservation{Currency: "dollar", Price: "1", Date: "1402/10/15", Category: "main"},
		},
		{
			name: "numeric price passes through as json.Number",
			raw:  map[string]any{"currency": "USD", "price": json.Number("999999999999999999"), "date": "1402/10/15"},
			want: models.CurrencyObservation{Currency: "USD", Price: json.Number("999999999999999999"), Date: "1402/10/15", Category: "main"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obs, err := normalize(models.SourceRecord{Raw: models.RawRecord(tc.raw)})
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if obs.Currency != tc.want.Currency || obs.Price != tc.want.Price ||
				obs.Date != tc.want.Date || obs.Category != tc.want.Category {
				t.Errorf("got %+v, want %+v", obs, tc.want)
			}
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	raw := map[string]any{"currency": "USD", "price": "1", "date": "1402/10/15"}

	obs, err := normalize(models.SourceRecord{Raw: models.RawRecord(raw), Category: "sana_buy"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if obs.Category != "sana_buy" {
		t.Errorf("expected hint category, got %s", obs.Category)
	}

	withOwn := map[string]any{"currency": "USD", "price": "1", "date": "1402/10/15", "category": "official"}
	obs, err = normalize(models.SourceRecord{Raw: models.RawRecord(withOwn), Category: "sana_buy"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if obs.Category != "official" {
		t.Errorf("record's own category should win, got %s", obs.Category)
	}
}

func TestNormalizeRejects(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]any
	}{
		{"missing currency", map[string]any{"price": "1", "date": "1402/10/15"}},
		{"missing price", map[string]any{"currency": "USD", "date": "1402/10/15"}},
		{"missing date", map[string]any{"currency": "USD", "price": "1"}},
		{"empty currency", map[string]any{"currency": "", "price": "1", "date": "1402/10/15"}},
		{"empty date", map[string]any{"currency": "USD", "price": "1", "date": ""}},
		{"null price", map[string]any{"currency": "USD", "price": nil, "date": "1402/10/15"}},
		{"empty record", map[string]any{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := normalize(models.SourceRecord{Raw: models.RawRecord(tc.raw)})
			if !errors.Is(err, ErrMalformedRecord) {
				t.Fatalf("expected ErrMalformedRecord, got %v", err)
			}
		})
	}

	if _, err := normalize(models.SourceRecord{}); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("nil raw should be rejected, got %v", err)
	}
}

func TestNormalizePreservesRawReference(t *testing.T) {
	raw := map[string]any{"currency": "USD", "price": "1", "date": "1402/10/15", "change": "+200", "custom": "kept"}
	obs, err := normalize(models.SourceRecord{Raw: models.RawRecord(raw)})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(obs.Raw) != len(raw) {
		t.Errorf("raw keys were dropped: %d != %d", len(obs.Raw), len(raw))
	}
	if obs.Raw["custom"] != "kept" || obs.Raw["change"] != "+200" {
		t.Errorf("extra keys not preserved: %v", obs.Raw)
	}
}

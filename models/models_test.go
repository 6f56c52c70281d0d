package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestOrganizedDocumentJSON(t *testing.T) {
	earliest := "1402/10/15"
	latest := "1402/10/16"
	obs := CurrencyObservation{
		Currency: "USD",
		Price:    json.Number("520000"),
		Date:     "1402/10/15",
		Category: "main",
		Raw:      RawRecord{"currency": "USD", "price": json.Number("520000"), "date": "1402/10/15"},
	}
	doc := OrganizedDocument{
		Metadata: Metadata{
			FetchTimestamp: "2024-01-05T10:00:00Z",
			SourceAPI:      "https://api.example.org/sana",
			TotalRecords:   1,
			DateRange:      DateRange{Earliest: &earliest, Latest: &latest},
		},
		ByDate:     map[string][]CurrencyObservation{"1402/10/15": {obs}},
		ByCurrency: map[string][]CurrencyObservation{"USD": {obs}},
		AllRecords: []CurrencyObservation{obs},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)

	for _, want := range []string{`"fetch_timestamp"`, `"source_api"`, `"total_records":1`, `"by_date"`, `"by_currency"`, `"all_records"`, `"earliest":"1402/10/15"`} {
		if !strings.Contains(out, want) {
			t.Errorf("serialized document missing %s: %s", want, out)
		}
	}

	var back OrganizedDocument
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Metadata.TotalRecords != 1 || len(back.AllRecords) != 1 {
		t.Fatalf("round trip mismatch: %+v", back)
	}
	if back.AllRecords[0].Currency != "USD" {
		t.Errorf("unexpected currency: %s", back.AllRecords[0].Currency)
	}
}

func TestDateRangeNulls(t *testing.T) {
	data, err := json.Marshal(Metadata{FetchTimestamp: "ts", SourceAPI: "src"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"earliest":null`) || !strings.Contains(out, `"latest":null`) {
		t.Errorf("empty date range should marshal as nulls: %s", out)
	}
}

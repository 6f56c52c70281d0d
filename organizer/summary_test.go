package organizer

import (
	"testing"

	"sanaflow/models"
)

func obsWithDate(date string) models.CurrencyObservation {
	return models.CurrencyObservation{Currency: "USD", Price: "1", Date: date, Category: "main"}
}

func TestSummarizeDateRange(t *testing.T) {
	all := []models.CurrencyObservation{
		obsWithDate("1402/10/16"),
		obsWithDate("1402/10/14"),
		obsWithDate("1402/10/15"),
		obsWithDate("1402/10/14"),
	}

	meta := summarize(all, "ts", "src")

	if meta.TotalRecords != 4 {
		t.Errorf("expected 4 records, got %d", meta.TotalRecords)
	}
	if meta.DateRange.Earliest == nil || *meta.DateRange.Earliest != "1402/10/14" {
		t.Errorf("unexpected earliest: %v", meta.DateRange.Earliest)
	}
	if meta.DateRange.Latest == nil || *meta.DateRange.Latest != "1402/10/16" {
		t.Errorf("unexpected latest: %v", meta.DateRange.Latest)
	}
}

func TestSummarizeSingleDate(t *testing.T) {
	meta := summarize([]models.CurrencyObservation{obsWithDate("1402/01/01")}, "ts", "src")
	if meta.DateRange.Earliest == nil || meta.DateRange.Latest == nil {
		t.Fatalf("expected both ends set")
	}
	if *meta.DateRange.Earliest != *meta.DateRange.Latest {
		t.Errorf("single date should be both ends: %s / %s", *meta.DateRange.Earliest, *meta.DateRange.Latest)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	meta := summarize(nil, "ts", "src")
	if meta.TotalRecords != 0 {
		t.Errorf("expected 0 records, got %d", meta.TotalRecords)
	}
	if meta.DateRange.Earliest != nil || meta.DateRange.Latest != nil {
		t.Errorf("expected nil range, got %+v", meta.DateRange)
	}
	if meta.FetchTimestamp != "ts" || meta.SourceAPI != "src" {
		t.Errorf("metadata identity fields lost: %+v", meta)
	}
}

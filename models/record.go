package models

import (
	"time"
)

// RawRecord is one unprocessed entry from the source API response, exactly
// as JSON-decoded. It is created once by the fetcher and never mutated
// afterwards; the organizer only reads from it.
type RawRecord map[string]any

// SourceRecord pairs a raw record with the category it was found under in
// the API response. The category is derived from the enclosing key path
// ("main" for the top-level data list, "key" or "key.subkey" for grouped
// payloads).
type SourceRecord struct {
	Raw      RawRecord
	Category string
}

// CurrencyObservation is the normalized unit produced from a raw record.
// Price is passed through unmodified (string or json.Number) to avoid
// precision loss on large IRR values. Date is an opaque sortable token,
// typically a zero-padded Jalali date such as "1402/10/15".
type CurrencyObservation struct {
	Currency string    `json:"currency"`
	Price    any       `json:"price"`
	Date     string    `json:"date"`
	Category string    `json:"category"`
	Raw      RawRecord `json:"raw"`
}

// DateRange holds the lexicographic min/max of all date tokens seen in a
// batch. Both pointers are nil when the batch is empty.
type DateRange struct {
	Earliest *string `json:"earliest"`
	Latest   *string `json:"latest"`
}

// Metadata summarizes one organized batch.
type Metadata struct {
	FetchTimestamp string    `json:"fetch_timestamp"`
	SourceAPI      string    `json:"source_api"`
	TotalRecords   int       `json:"total_records"`
	DateRange      DateRange `json:"date_range"`
}

// OrganizedDocument is the output aggregate of one organize cycle. Every
// observation in AllRecords appears exactly once in ByDate under its date
// and exactly once in ByCurrency under its currency; grouping maps never
// hold empty slices. The document is immutable after construction.
type OrganizedDocument struct {
	Metadata   Metadata                         `json:"metadata"`
	ByDate     map[string][]CurrencyObservation `json:"by_date"`
	ByCurrency map[string][]CurrencyObservation `json:"by_currency"`
	AllRecords []CurrencyObservation            `json:"all_records"`
}

// Table is the flattened tabular projection of a record set. Rows are
// aligned with Columns; missing values are empty strings.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ExportBatch describes one set of export artifacts produced from an
// organized document.
type ExportBatch struct {
	BatchID     string    `json:"batch_id"`
	SourceAPI   string    `json:"source_api"`
	RecordCount int       `json:"record_count"`
	Files       []string  `json:"files"`
	Timestamp   time.Time `json:"timestamp"`
}

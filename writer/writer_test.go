package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	appconfig "sanaflow/config"
	"sanaflow/models"
)

func sampleTable() *models.Table {
	return &models.Table{
		Columns: []string{"currency", "price", "category", "date", "change"},
		Rows: [][]string{
			{"USD", "520000", "main", "1402/10/15", "+200"},
			{"EUR", "480000", "main", "1402/10/15", ""},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteCSV(dir, "out.csv", sampleTable())
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "currency,price,category,date,change" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != "USD,520000,main,1402/10/15,+200" {
		t.Errorf("unexpected row: %s", lines[1])
	}
}

func TestWriteCSVEmptyTable(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteCSV(dir, "out.csv", &models.Table{Columns: []string{"currency"}})
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if path != "" {
		t.Errorf("expected no file for empty table, got %s", path)
	}
	if _, err := os.Stat(filepath.Join(dir, "out.csv")); !os.IsNotExist(err) {
		t.Errorf("file should not exist for empty table")
	}
}

func TestWriteRawJSON(t *testing.T) {
	dir := t.TempDir()
	body := []byte(`{"data":[{"currency":"دلار","price":"520000"}]}`)

	path, err := WriteRawJSON(dir, "raw.json", body)
	if err != nil {
		t.Fatalf("WriteRawJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Contains(data, []byte("دلار")) {
		t.Errorf("non-ASCII content not preserved: %s", data)
	}
	if !bytes.Contains(data, []byte("\n  ")) {
		t.Errorf("output not indented: %s", data)
	}
}

func TestWriteRawJSONInvalidPayload(t *testing.T) {
	dir := t.TempDir()
	body := []byte(`not json at all`)

	path, err := WriteRawJSON(dir, "raw.json", body)
	if err != nil {
		t.Fatalf("WriteRawJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != string(body) {
		t.Errorf("invalid payload should be written verbatim")
	}
}

func TestWriteOrganizedJSON(t *testing.T) {
	dir := t.TempDir()
	doc := &models.OrganizedDocument{
		Metadata: models.Metadata{
			FetchTimestamp: "2024-01-05T10:00:00Z",
			SourceAPI:      "src",
		},
		ByDate:     map[string][]models.CurrencyObservation{},
		ByCurrency: map[string][]models.CurrencyObservation{},
		AllRecords: []models.CurrencyObservation{},
	}

	path, err := WriteOrganizedJSON(dir, "organized.json", doc)
	if err != nil {
		t.Fatalf("WriteOrganizedJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"earliest": null`) || !strings.Contains(out, `"latest": null`) {
		t.Errorf("empty date range should serialize as nulls: %s", out)
	}
	if !strings.Contains(out, `"total_records": 0`) {
		t.Errorf("missing total_records: %s", out)
	}
}

func TestEncodeParquet(t *testing.T) {
	data, err := EncodeParquet(sampleTable(), "snappy")
	if err != nil {
		t.Fatalf("EncodeParquet: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty parquet output")
	}
	if !bytes.HasPrefix(data, []byte("PAR1")) {
		t.Errorf("missing parquet magic header")
	}
	if !bytes.HasSuffix(data, []byte("PAR1")) {
		t.Errorf("missing parquet magic footer")
	}
}

func TestSanitizeColumn(t *testing.T) {
	cases := map[string]string{
		"change":  "change",
		"نرخ":     "___",
		"buy-usd": "buy_usd",
		"":        "_",
	}
	for in, want := range cases {
		if got := sanitizeColumn(in); got != want {
			t.Errorf("sanitizeColumn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestObjectKey(t *testing.T) {
	u := &Uploader{
		config: &appconfig.Config{
			Storage: appconfig.StorageConfig{
				S3: appconfig.S3Config{Prefix: "/sana/"},
			},
		},
	}
	batch := models.ExportBatch{
		Timestamp: time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC),
	}

	key := u.objectKey(batch, "currency_data.csv")
	want := "sana/year=2024/month=01/day=05/20240105103000_currency_data.csv"
	if key != want {
		t.Errorf("objectKey = %s, want %s", key, want)
	}
}

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"a.json":    "application/json",
		"b.csv":     "text/csv",
		"c.parquet": "application/octet-stream",
		"d.bin":     "application/octet-stream",
	}
	for path, want := range cases {
		if got := contentType(path); got != want {
			t.Errorf("contentType(%q) = %q, want %q", path, got, want)
		}
	}
}

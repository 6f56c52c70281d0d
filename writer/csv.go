package writer

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"sanaflow/logger"
	"sanaflow/models"
)

// WriteCSV serializes the flattened table as comma-separated text with the
// column schema as the header row. Returns the written path, or an empty
// path without error when the table has no rows.
func WriteCSV(dir, filename string, table *models.Table) (string, error) {
	log := logger.GetLogger().WithComponent("csv_writer")

	if len(table.Rows) == 0 {
		log.Warn("no rows to export, skipping csv")
		return "", nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.Columns); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	if err := w.WriteAll(table.Rows); err != nil {
		return "", fmt.Errorf("write csv rows: %w", err)
	}

	path, err := writeFile(dir, filename, buf.Bytes())
	if err != nil {
		return "", err
	}

	log.WithFields(logger.Fields{
		"path":    path,
		"rows":    len(table.Rows),
		"columns": len(table.Columns),
	}).Info("csv export written")
	logger.RecordArtifact("csv", int64(buf.Len()))
	return path, nil
}

package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"sanaflow/logger"
	"sanaflow/models"
)

// WriteRawJSON persists the verbatim API payload. The bytes are re-indented
// but otherwise untouched, so Persian text and large numerals survive as
// received.
func WriteRawJSON(dir, filename string, body []byte) (string, error) {
	log := logger.GetLogger().WithComponent("json_writer")

	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		// Not valid JSON for indentation purposes; keep the original bytes.
		buf.Reset()
		buf.Write(body)
	}

	path, err := writeFile(dir, filename, buf.Bytes())
	if err != nil {
		return "", err
	}

	log.WithFields(logger.Fields{"path": path, "bytes": buf.Len()}).Info("raw payload written")
	logger.RecordArtifact("raw_json", int64(buf.Len()))
	return path, nil
}

// WriteOrganizedJSON serializes the organized document to disk. Encoding
// keeps non-ASCII text readable and appends a trailing newline like the
// rest of the exports.
func WriteOrganizedJSON(dir, filename string, doc *models.OrganizedDocument) (string, error) {
	log := logger.GetLogger().WithComponent("json_writer")

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode organized document: %w", err)
	}

	path, err := writeFile(dir, filename, buf.Bytes())
	if err != nil {
		return "", err
	}

	log.WithFields(logger.Fields{
		"path":          path,
		"total_records": doc.Metadata.TotalRecords,
	}).Info("organized document written")
	logger.RecordArtifact("organized_json", int64(buf.Len()))
	return path, nil
}

func writeFile(dir, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

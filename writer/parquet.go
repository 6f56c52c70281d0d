package writer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	pqwriter "github.com/xitongsys/parquet-go/writer"

	"sanaflow/logger"
	"sanaflow/models"
)

// memoryFileWriter implements ParquetFile interface for in-memory writing.
// Write path only: Seek reports the current buffer length instead of
// repositioning, which is all the footer writer asks of it. Not usable for
// reading parquet files back.
type memoryFileWriter struct {
	buffer *bytes.Buffer
}

func newMemoryFileWriter() *memoryFileWriter {
	return &memoryFileWriter{
		buffer: &bytes.Buffer{},
	}
}

func (mfw *memoryFileWriter) Create(name string) (source.ParquetFile, error) {
	return mfw, nil
}

func (mfw *memoryFileWriter) Open(name string) (source.ParquetFile, error) {
	return mfw, nil
}

func (mfw *memoryFileWriter) Seek(offset int64, whence int) (int64, error) {
	return int64(mfw.buffer.Len()), nil
}

func (mfw *memoryFileWriter) Read(b []byte) (int, error) {
	return mfw.buffer.Read(b)
}

func (mfw *memoryFileWriter) Write(b []byte) (int, error) {
	return mfw.buffer.Write(b)
}

func (mfw *memoryFileWriter) Close() error {
	return nil
}

func (mfw *memoryFileWriter) Bytes() []byte {
	return mfw.buffer.Bytes()
}

// WriteParquet serializes the flattened table as a parquet file. The schema
// is derived from the table columns at runtime; every column is a UTF8 byte
// array since the flattener already rendered all values as strings.
func WriteParquet(dir, filename, compression string, table *models.Table) (string, error) {
	log := logger.GetLogger().WithComponent("parquet_writer")

	if len(table.Rows) == 0 {
		log.Warn("no rows to export, skipping parquet")
		return "", nil
	}

	data, err := EncodeParquet(table, compression)
	if err != nil {
		return "", err
	}

	path, err := writeFile(dir, filename, data)
	if err != nil {
		return "", err
	}

	log.WithFields(logger.Fields{
		"path": path,
		"rows": len(table.Rows),
		"size": len(data),
	}).Info("parquet export written")
	logger.RecordArtifact("parquet", int64(len(data)))
	return path, nil
}

// EncodeParquet renders the table into an in-memory parquet file.
func EncodeParquet(table *models.Table, compression string) ([]byte, error) {
	md := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		md = append(md, fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY", sanitizeColumn(col)))
	}

	mfw := newMemoryFileWriter()
	pw, err := pqwriter.NewCSVWriter(md, mfw, 1)
	if err != nil {
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}

	pw.CompressionType = compressionCodec(compression)

	for _, row := range table.Rows {
		rec := make([]*string, len(row))
		for i := range row {
			v := row[i]
			rec[i] = &v
		}
		if err := pw.WriteString(rec); err != nil {
			return nil, fmt.Errorf("write parquet row: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("finalize parquet file: %w", err)
	}

	return mfw.Bytes(), nil
}

// sanitizeColumn makes an arbitrary source key safe as a parquet column
// name. Non-ASCII keys (Persian field names) hash poorly into the parquet
// naming rules, so they are transliterated to an underscore form.
func sanitizeColumn(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func compressionCodec(name string) parquet.CompressionCodec {
	switch strings.ToLower(name) {
	case "gzip":
		return parquet.CompressionCodec_GZIP
	case "none", "uncompressed":
		return parquet.CompressionCodec_UNCOMPRESSED
	default:
		return parquet.CompressionCodec_SNAPPY
	}
}

package catalog

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/prefixlens/backend/internal/domain"
)

// Output column names
const (
	ColumnCommonString    = "COMMON_STRING"
	ColumnVariation       = "VARIATION"
	ColumnVariations      = "VARIATIONS"
	ColumnCodes           = "CODES"
	ColumnNVariations     = "N_VARIATIONS"
	ColumnCode            = "EAN13"
	ColumnChronicityScore = "CHRONICITY_SCORE"
)

var _ domain.ResultExporter = (*FileExporter)(nil)

// Writer renders clustering views as delimited tables
type Writer struct {
	Delimiter rune
}

// NewWriter creates a writer for the given delimiter
func NewWriter(delimiter rune) *Writer {
	return &Writer{Delimiter: delimiter}
}

func (w *Writer) newCSV(out io.Writer) *csv.Writer {
	cw := csv.NewWriter(out)
	cw.Comma = w.Delimiter
	return cw
}

// WriteFull writes the input columns followed by COMMON_STRING and VARIATION.
// Input columns already named COMMON_STRING or VARIATION are overwritten in place.
func (w *Writer) WriteFull(out io.Writer, catalog *domain.Catalog, rows []domain.AnnotatedRow) error {
	cw := w.newCSV(out)

	header, commonIdx := columnIndex(catalogHeader(catalog), ColumnCommonString)
	header, variationIdx := columnIndex(header, ColumnVariation)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := fitRecord(rowFields(row.Product, row.Fields), len(header))
		record[commonIdx] = row.CommonString
		record[variationIdx] = row.Variation
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteGrouped writes one row per common string. The variation and code sets
// are encoded as JSON arrays.
func (w *Writer) WriteGrouped(out io.Writer, groups []domain.Group) error {
	cw := w.newCSV(out)

	if err := cw.Write([]string{ColumnCommonString, ColumnVariations, ColumnCodes, ColumnNVariations}); err != nil {
		return err
	}
	for _, g := range groups {
		variations, err := encodeSet(g.Variations)
		if err != nil {
			return err
		}
		codes, err := encodeSet(g.Codes)
		if err != nil {
			return err
		}
		if err := cw.Write([]string{g.CommonString, variations, codes, strconv.Itoa(g.NVariations)}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteExpanded writes one row per (common string, code, variation) triple
func (w *Writer) WriteExpanded(out io.Writer, rows []domain.ExpandedRow) error {
	cw := w.newCSV(out)

	if err := cw.Write([]string{ColumnCommonString, ColumnCode, ColumnVariation}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.CommonString, row.Code, row.Variation}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteScored writes the input columns followed by CHRONICITY_SCORE, left
// blank for products without a score. An existing CHRONICITY_SCORE column is
// overwritten in place.
func (w *Writer) WriteScored(out io.Writer, catalog *domain.Catalog, lookup func(code string) (int, bool)) error {
	cw := w.newCSV(out)

	header, scoreIdx := columnIndex(catalogHeader(catalog), ColumnChronicityScore)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, p := range catalog.Products {
		var fields []string
		if i < len(catalog.Rows) {
			fields = catalog.Rows[i]
		}
		record := fitRecord(rowFields(p, fields), len(header))
		record[scoreIdx] = ""
		if s, ok := lookup(p.Code); ok {
			record[scoreIdx] = strconv.Itoa(s)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// catalogHeader returns a copy of the input header, or CODE/NAME when the
// catalog was not read from a table
func catalogHeader(catalog *domain.Catalog) []string {
	if len(catalog.Header) == 0 {
		return []string{"CODE", "NAME"}
	}
	return append([]string(nil), catalog.Header...)
}

func rowFields(p domain.Product, fields []string) []string {
	if fields == nil {
		return []string{p.Code, p.Name}
	}
	return append([]string(nil), fields...)
}

// columnIndex returns the position of name in header, appending it when absent
func columnIndex(header []string, name string) ([]string, int) {
	for i, h := range header {
		if h == name {
			return header, i
		}
	}
	return append(header, name), len(header)
}

// fitRecord pads or truncates fields to n columns
func fitRecord(fields []string, n int) []string {
	record := make([]string, n)
	copy(record, fields)
	return record
}

func encodeSet(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode set: %w", err)
	}
	return string(raw), nil
}

// FileNames names the three output tables inside the output directory
type FileNames struct {
	Full     string
	Grouped  string
	Expanded string
}

// FileExporter writes the three clustering views as files in a directory
type FileExporter struct {
	writer *Writer
	dir    string
	names  FileNames
}

// NewFileExporter creates an exporter writing into dir
func NewFileExporter(writer *Writer, dir string, names FileNames) *FileExporter {
	return &FileExporter{writer: writer, dir: dir, names: names}
}

// Export writes the full, grouped and expanded tables
func (e *FileExporter) Export(ctx context.Context, catalog *domain.Catalog, result *domain.ClusterResult) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{e.names.Full, func(out io.Writer) error { return e.writer.WriteFull(out, catalog, result.Annotated) }},
		{e.names.Grouped, func(out io.Writer) error { return e.writer.WriteGrouped(out, result.Groups) }},
		{e.names.Expanded, func(out io.Writer) error { return e.writer.WriteExpanded(out, result.Expanded) }},
	}

	for _, o := range outputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(e.dir, o.name)
		if err := WriteFile(path, o.write); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		log.Printf("[CATALOG] wrote %s", path)
	}

	return nil
}

// WriteFile creates path and renders into it with write
func WriteFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

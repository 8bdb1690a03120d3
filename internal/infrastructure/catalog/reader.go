package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/prefixlens/backend/internal/domain"
)

const utf8BOM = "\uFEFF"

var _ domain.CatalogReader = (*Reader)(nil)

// Reader parses a delimited product table with a header row
type Reader struct {
	Delimiter  rune
	CodeColumn string
	NameColumn string
}

// NewReader creates a reader for the given delimiter and column names
func NewReader(delimiter rune, codeColumn, nameColumn string) *Reader {
	return &Reader{
		Delimiter:  delimiter,
		CodeColumn: codeColumn,
		NameColumn: nameColumn,
	}
}

// ReadFile opens path and parses it
func (r *Reader) ReadFile(path string) (*domain.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	catalog, err := r.Read(f)
	if err != nil {
		return nil, err
	}

	log.Printf("[CATALOG] loaded %d rows from %s", len(catalog.Products), path)
	return catalog, nil
}

// Read parses a catalog. Every row must carry a non-blank code; names may be
// empty. An input with no header at all yields an empty catalog with the
// configured code and name columns.
func (r *Reader) Read(in io.Reader) (*domain.Catalog, error) {
	cr := csv.NewReader(in)
	cr.Comma = r.Delimiter
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &domain.Catalog{Header: []string{r.CodeColumn, r.NameColumn}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	codeIdx := indexOf(header, r.CodeColumn)
	if codeIdx < 0 {
		return nil, &domain.ValidationError{Field: r.CodeColumn, Reason: "column is missing"}
	}
	nameIdx := indexOf(header, r.NameColumn)
	if nameIdx < 0 {
		return nil, &domain.ValidationError{Field: r.NameColumn, Reason: "column is missing"}
	}

	catalog := &domain.Catalog{Header: header}
	for row := 1; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}

		code := strings.TrimSpace(record[codeIdx])
		if code == "" {
			return nil, &domain.ValidationError{Row: row, Field: r.CodeColumn, Reason: "is empty"}
		}

		catalog.Rows = append(catalog.Rows, record)
		catalog.Products = append(catalog.Products, domain.Product{
			Code: code,
			Name: record[nameIdx],
		})
	}

	return catalog, nil
}

func indexOf(header []string, column string) int {
	for i, h := range header {
		if h == column {
			return i
		}
	}
	return -1
}

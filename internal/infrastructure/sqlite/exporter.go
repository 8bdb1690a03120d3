package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/prefixlens/backend/internal/domain"
)

// Table names written by the exporter
const (
	TableFull     = "products_with_common"
	TableGrouped  = "products_grouped"
	TableExpanded = "products_grouped_expanded"
)

var _ domain.ResultExporter = (*Exporter)(nil)

// Exporter writes the clustering views into a fresh SQLite database file
type Exporter struct {
	path string
}

// NewExporter creates an exporter targeting path. Any existing file is replaced on Export.
func NewExporter(path string) *Exporter {
	return &Exporter{path: path}
}

// Export recreates the database and fills the full, grouped and expanded tables
// in a single transaction
func (e *Exporter) Export(ctx context.Context, catalog *domain.Catalog, result *domain.ClusterResult) error {
	if err := os.Remove(e.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", e.path, err)
	}

	db, err := sql.Open("sqlite", e.path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := writeFull(ctx, tx, catalog, result.Annotated); err != nil {
		return fmt.Errorf("write %s: %w", TableFull, err)
	}
	if err := writeGrouped(ctx, tx, result.Groups); err != nil {
		return fmt.Errorf("write %s: %w", TableGrouped, err)
	}
	if err := writeExpanded(ctx, tx, result.Expanded); err != nil {
		return fmt.Errorf("write %s: %w", TableExpanded, err)
	}

	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_products_with_common_common ON products_with_common(common_string)`,
		`CREATE INDEX IF NOT EXISTS idx_products_grouped_expanded_common ON products_grouped_expanded(common_string)`,
		`CREATE INDEX IF NOT EXISTS idx_products_grouped_expanded_code ON products_grouped_expanded(code)`,
	} {
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("[SQLITE] wrote %d rows, %d groups to %s", len(result.Annotated), len(result.Groups), e.path)
	return nil
}

func writeFull(ctx context.Context, tx *sql.Tx, catalog *domain.Catalog, rows []domain.AnnotatedRow) error {
	cols := []string{"code", "name"}
	if len(catalog.Header) > 0 {
		cols = append([]string(nil), catalog.Header...)
	}
	// A re-run over a previous output overwrites its result columns
	cols, commonIdx := columnIndex(cols, "common_string")
	cols, variationIdx := columnIndex(cols, "variation")

	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		key := strings.ToLower(c)
		if seen[key] {
			return fmt.Errorf("%w: duplicate column %q", domain.ErrInvalidInput, c)
		}
		seen[key] = true
	}

	stmt, err := createTable(ctx, tx, TableFull, cols, nil)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		args := make([]any, len(cols))
		for i := range args {
			args[i] = ""
		}
		if row.Fields == nil {
			args[0], args[1] = row.Code, row.Name
		} else {
			for i, f := range row.Fields {
				if i < len(args) {
					args[i] = f
				}
			}
		}
		args[commonIdx] = row.CommonString
		args[variationIdx] = row.Variation
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// columnIndex returns the position of name in cols, matched case-insensitively
// like SQLite column names, appending it when absent
func columnIndex(cols []string, name string) ([]string, int) {
	for i, c := range cols {
		if strings.EqualFold(c, name) {
			return cols, i
		}
	}
	return append(cols, name), len(cols)
}

func writeGrouped(ctx context.Context, tx *sql.Tx, groups []domain.Group) error {
	cols := []string{"common_string", "variations", "codes", "n_variations"}
	stmt, err := createTable(ctx, tx, TableGrouped, cols, map[string]string{"n_variations": "INTEGER"})
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, g := range groups {
		variations, err := encodeSet(g.Variations)
		if err != nil {
			return err
		}
		codes, err := encodeSet(g.Codes)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, g.CommonString, variations, codes, g.NVariations); err != nil {
			return err
		}
	}
	return nil
}

func writeExpanded(ctx context.Context, tx *sql.Tx, rows []domain.ExpandedRow) error {
	cols := []string{"common_string", "code", "variation"}
	stmt, err := createTable(ctx, tx, TableExpanded, cols, nil)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.CommonString, row.Code, row.Variation); err != nil {
			return err
		}
	}
	return nil
}

func encodeSet(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	return string(raw), err
}

// createTable creates table with TEXT columns unless overridden in types and
// returns a prepared INSERT covering every column
func createTable(ctx context.Context, tx *sql.Tx, table string, cols []string, types map[string]string) (*sql.Stmt, error) {
	defs := make([]string, 0, len(cols))
	quoted := make([]string, 0, len(cols))
	for _, c := range cols {
		t := types[c]
		if t == "" {
			t = "TEXT"
		}
		defs = append(defs, quoteIdent(c)+" "+t)
		quoted = append(quoted, quoteIdent(c))
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %s (%s)`, quoteIdent(table), strings.Join(defs, ","))); err != nil {
		return nil, err
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	return tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, quoteIdent(table), strings.Join(quoted, ","), ph))
}

// quoteIdent quotes an SQL identifier, doubling embedded quotes
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

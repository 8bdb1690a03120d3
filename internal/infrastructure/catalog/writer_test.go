package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prefixlens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTable(t *testing.T, raw string) [][]string {
	t.Helper()
	r := csv.NewReader(strings.NewReader(raw))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func sampleResult() (*domain.Catalog, *domain.ClusterResult) {
	catalog := &domain.Catalog{
		Header: []string{"PRD_EAN13", "PRD_NOM"},
		Rows:   [][]string{{"1", "DOLIPRANE 500MG"}, {"2", "DOLIPRANE 1000MG"}},
		Products: []domain.Product{
			{Code: "1", Name: "DOLIPRANE 500MG"},
			{Code: "2", Name: "DOLIPRANE 1000MG"},
		},
	}
	annotated := []domain.AnnotatedRow{
		{Product: catalog.Products[0], Fields: catalog.Rows[0], CommonString: "DOLIPRANE", Variation: "500MG"},
		{Product: catalog.Products[1], Fields: catalog.Rows[1], CommonString: "DOLIPRANE", Variation: "1000MG"},
	}
	return catalog, &domain.ClusterResult{
		Annotated: annotated,
		Groups: []domain.Group{
			{CommonString: "DOLIPRANE", Variations: []string{"500MG", "1000MG"}, Codes: []string{"1", "2"}, NVariations: 2},
		},
		Expanded: []domain.ExpandedRow{
			{CommonString: "DOLIPRANE", Code: "1", Variation: "500MG"},
			{CommonString: "DOLIPRANE", Code: "2", Variation: "1000MG"},
		},
	}
}

func TestWriter_WriteFull(t *testing.T) {
	catalog, result := sampleResult()
	var buf bytes.Buffer

	require.NoError(t, NewWriter(';').WriteFull(&buf, catalog, result.Annotated))

	records := readTable(t, buf.String())
	assert.Equal(t, []string{"PRD_EAN13", "PRD_NOM", ColumnCommonString, ColumnVariation}, records[0])
	assert.Equal(t, []string{"1", "DOLIPRANE 500MG", "DOLIPRANE", "500MG"}, records[1])
	assert.Len(t, records, 3)
	assert.Equal(t, []string{"PRD_EAN13", "PRD_NOM"}, catalog.Header, "header must not be mutated")
}

func TestWriter_WriteFull_WithoutSourceTable(t *testing.T) {
	rows := []domain.AnnotatedRow{{Product: domain.Product{Code: "9", Name: "SMECTA"}, Variation: "SMECTA"}}
	var buf bytes.Buffer

	require.NoError(t, NewWriter(';').WriteFull(&buf, &domain.Catalog{}, rows))

	records := readTable(t, buf.String())
	assert.Equal(t, []string{"CODE", "NAME", ColumnCommonString, ColumnVariation}, records[0])
	assert.Equal(t, []string{"9", "SMECTA", "", "SMECTA"}, records[1])
}

func TestWriter_WriteGrouped(t *testing.T) {
	_, result := sampleResult()
	var buf bytes.Buffer

	require.NoError(t, NewWriter(';').WriteGrouped(&buf, result.Groups))

	records := readTable(t, buf.String())
	require.Len(t, records, 2)
	assert.Equal(t, []string{ColumnCommonString, ColumnVariations, ColumnCodes, ColumnNVariations}, records[0])
	assert.Equal(t, "DOLIPRANE", records[1][0])
	assert.Equal(t, "2", records[1][3])

	var variations []string
	require.NoError(t, json.Unmarshal([]byte(records[1][1]), &variations))
	assert.ElementsMatch(t, []string{"500MG", "1000MG"}, variations)
}

func TestWriter_WriteExpanded(t *testing.T) {
	_, result := sampleResult()
	var buf bytes.Buffer

	require.NoError(t, NewWriter(';').WriteExpanded(&buf, result.Expanded))

	records := readTable(t, buf.String())
	assert.Equal(t, [][]string{
		{ColumnCommonString, ColumnCode, ColumnVariation},
		{"DOLIPRANE", "1", "500MG"},
		{"DOLIPRANE", "2", "1000MG"},
	}, records)
}

func TestWriter_EmptyTablesHaveHeaders(t *testing.T) {
	w := NewWriter(';')
	catalog := &domain.Catalog{Header: []string{"PRD_EAN13", "PRD_NOM"}}

	var full, grouped, expanded bytes.Buffer
	require.NoError(t, w.WriteFull(&full, catalog, nil))
	require.NoError(t, w.WriteGrouped(&grouped, nil))
	require.NoError(t, w.WriteExpanded(&expanded, nil))

	assert.Equal(t, "PRD_EAN13;PRD_NOM;COMMON_STRING;VARIATION\n", full.String())
	assert.Equal(t, "COMMON_STRING;VARIATIONS;CODES;N_VARIATIONS\n", grouped.String())
	assert.Equal(t, "COMMON_STRING;EAN13;VARIATION\n", expanded.String())
}

func TestWriter_WriteScored(t *testing.T) {
	catalog, _ := sampleResult()
	lookup := func(code string) (int, bool) {
		if code == "1" {
			return 5, true
		}
		return 0, false
	}
	var buf bytes.Buffer

	require.NoError(t, NewWriter(';').WriteScored(&buf, catalog, lookup))

	records := readTable(t, buf.String())
	assert.Equal(t, []string{"PRD_EAN13", "PRD_NOM", ColumnChronicityScore}, records[0])
	assert.Equal(t, "5", records[1][2])
	assert.Equal(t, "", records[2][2])
}

func TestFileExporter_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	catalog, result := sampleResult()
	names := FileNames{Full: "full.csv", Grouped: "grouped.csv", Expanded: "expanded.csv"}

	err := NewFileExporter(NewWriter(';'), dir, names).Export(context.Background(), catalog, result)

	require.NoError(t, err)
	for _, name := range []string{names.Full, names.Grouped, names.Expanded} {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.NotEmpty(t, raw)
	}
}

func TestWriter_WriteFull_OverwritesExistingResultColumns(t *testing.T) {
	catalog := &domain.Catalog{
		Header:   []string{"PRD_EAN13", "PRD_NOM", ColumnCommonString, ColumnVariation},
		Rows:     [][]string{{"1", "DOLIPRANE 500MG", "OLD", "STALE"}},
		Products: []domain.Product{{Code: "1", Name: "DOLIPRANE 500MG"}},
	}
	rows := []domain.AnnotatedRow{
		{Product: catalog.Products[0], Fields: catalog.Rows[0], CommonString: "DOLIPRANE", Variation: "500MG"},
	}
	var buf bytes.Buffer

	require.NoError(t, NewWriter(';').WriteFull(&buf, catalog, rows))

	assert.Equal(t, [][]string{
		{"PRD_EAN13", "PRD_NOM", ColumnCommonString, ColumnVariation},
		{"1", "DOLIPRANE 500MG", "DOLIPRANE", "500MG"},
	}, readTable(t, buf.String()))
}

func TestWriter_WriteScored_OverwritesExistingScoreColumn(t *testing.T) {
	catalog := &domain.Catalog{
		Header:   []string{"PRD_EAN13", ColumnChronicityScore, "PRD_NOM"},
		Rows:     [][]string{{"1", "2", "SMECTA"}, {"2", "4", "BIAFINE"}},
		Products: []domain.Product{{Code: "1", Name: "SMECTA"}, {Code: "2", Name: "BIAFINE"}},
	}
	lookup := func(code string) (int, bool) {
		if code == "1" {
			return 5, true
		}
		return 0, false
	}
	var buf bytes.Buffer

	require.NoError(t, NewWriter(';').WriteScored(&buf, catalog, lookup))

	assert.Equal(t, [][]string{
		{"PRD_EAN13", ColumnChronicityScore, "PRD_NOM"},
		{"1", "5", "SMECTA"},
		{"2", "", "BIAFINE"},
	}, readTable(t, buf.String()))
}

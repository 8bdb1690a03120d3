package usecase

import (
	"sort"

	"github.com/prefixlens/backend/internal/domain"
)

// MergeResults flattens per-bucket results into a code -> MatchResult map.
// Buckets are merged in slice order; a code seen twice keeps its last result.
func MergeResults(perBucket [][]domain.MatchResult) map[string]domain.MatchResult {
	size := 0
	for _, results := range perBucket {
		size += len(results)
	}

	merged := make(map[string]domain.MatchResult, size)
	for _, results := range perBucket {
		for _, r := range results {
			merged[r.Code] = r
		}
	}
	return merged
}

// Annotate attaches a common string and variation to every catalog row.
// Codes absent from the map get empty values, which callers read as "ungrouped".
func Annotate(catalog *domain.Catalog, merged map[string]domain.MatchResult) []domain.AnnotatedRow {
	rows := make([]domain.AnnotatedRow, 0, len(catalog.Products))
	for i, p := range catalog.Products {
		row := domain.AnnotatedRow{Product: p}
		if i < len(catalog.Rows) {
			row.Fields = catalog.Rows[i]
		}
		if r, ok := merged[p.Code]; ok {
			row.CommonString = r.CommonString
			row.Variation = r.Variation
		}
		rows = append(rows, row)
	}
	return rows
}

// GroupRows builds one Group per distinct common string, ordered by key.
// Variations and codes are deduplicated in first-seen order.
func GroupRows(rows []domain.AnnotatedRow) []domain.Group {
	type acc struct {
		group      domain.Group
		variations map[string]struct{}
		codes      map[string]struct{}
	}

	byKey := make(map[string]*acc)
	for _, row := range rows {
		a, ok := byKey[row.CommonString]
		if !ok {
			a = &acc{
				group:      domain.Group{CommonString: row.CommonString},
				variations: make(map[string]struct{}),
				codes:      make(map[string]struct{}),
			}
			byKey[row.CommonString] = a
		}
		if _, seen := a.variations[row.Variation]; !seen {
			a.variations[row.Variation] = struct{}{}
			a.group.Variations = append(a.group.Variations, row.Variation)
		}
		if _, seen := a.codes[row.Code]; !seen {
			a.codes[row.Code] = struct{}{}
			a.group.Codes = append(a.group.Codes, row.Code)
		}
	}

	groups := make([]domain.Group, 0, len(byKey))
	for _, a := range byKey {
		a.group.NVariations = len(a.group.Variations)
		groups = append(groups, a.group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].CommonString < groups[j].CommonString
	})

	return groups
}

// ExpandRows returns one row per annotated row, grouped by common string in
// key order and keeping input order inside each group. Nothing is deduplicated.
func ExpandRows(rows []domain.AnnotatedRow) []domain.ExpandedRow {
	expanded := make([]domain.ExpandedRow, 0, len(rows))
	for _, row := range rows {
		expanded = append(expanded, domain.ExpandedRow{
			CommonString: row.CommonString,
			Code:         row.Code,
			Variation:    row.Variation,
		})
	}
	sort.SliceStable(expanded, func(i, j int) bool {
		return expanded[i].CommonString < expanded[j].CommonString
	})
	return expanded
}

// Aggregate produces the annotated, grouped and expanded views of a run
func Aggregate(catalog *domain.Catalog, perBucket [][]domain.MatchResult) *domain.ClusterResult {
	annotated := Annotate(catalog, MergeResults(perBucket))
	return &domain.ClusterResult{
		Annotated: annotated,
		Groups:    GroupRows(annotated),
		Expanded:  ExpandRows(annotated),
	}
}

package domain

// Product is a single catalog row identified by its code.
// Code is an opaque key: it may repeat across rows of the same catalog.
type Product struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name"`
}

// MatchResult is the outcome of resolving one product against its bucket.
// An empty CommonString means the product is ungrouped.
type MatchResult struct {
	Code         string `json:"code"`
	CommonString string `json:"commonString"`
	Variation    string `json:"variation"`
}

// Bucket holds the products sharing the same first name token, in input order.
type Bucket struct {
	Key      string
	Products []Product
}

// AnnotatedRow is an input row carrying its clustering result.
// Fields holds the raw input columns in header order.
type AnnotatedRow struct {
	Product
	Fields       []string `json:"-"`
	CommonString string   `json:"commonString"`
	Variation    string   `json:"variation"`
}

// Group collects the distinct variations and codes observed under one common string.
type Group struct {
	CommonString string   `json:"commonString"`
	Variations   []string `json:"variations"`
	Codes        []string `json:"codes"`
	NVariations  int      `json:"nVariations"`
}

// ExpandedRow is one (common string, code, variation) triple.
type ExpandedRow struct {
	CommonString string `json:"commonString"`
	Code         string `json:"code"`
	Variation    string `json:"variation"`
}

// Catalog is a parsed input table.
// Header is empty for catalogs built without a source file.
type Catalog struct {
	Header   []string
	Rows     [][]string
	Products []Product
}

// ClusterResult carries the three derived views of a clustering run.
type ClusterResult struct {
	Annotated []AnnotatedRow `json:"annotated"`
	Groups    []Group        `json:"groups"`
	Expanded  []ExpandedRow  `json:"expanded"`
}

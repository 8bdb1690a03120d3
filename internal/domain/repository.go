package domain

import (
	"context"
	"io"
)

// ScoreStore is a persistent code -> chronicity score mapping.
type ScoreStore interface {
	Get(code string) (int, error)
	Set(code string, score int)
	Has(code string) bool
	Len() int
	Persist() error
}

// ChronicityClient assigns a 1..5 purchase-chronicity score to a product.
type ChronicityClient interface {
	Score(ctx context.Context, code, name string) (int, error)
}

// CatalogReader parses a delimited product table.
type CatalogReader interface {
	Read(r io.Reader) (*Catalog, error)
}

// ResultExporter persists the views of a clustering run.
type ResultExporter interface {
	Export(ctx context.Context, catalog *Catalog, result *ClusterResult) error
}

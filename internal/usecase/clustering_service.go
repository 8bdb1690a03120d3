package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/prefixlens/backend/internal/domain"
)

// ClusteringServiceConfig holds configuration for the clustering service
type ClusteringServiceConfig struct {
	Workers            int
	NormalizeBucketKey bool
	Stopwords          []string
	EnableDebugLogging bool
}

// ClusteringService groups catalog products by shared leading name tokens
type ClusteringService struct {
	resolver           *BucketResolver
	dispatcher         *Dispatcher
	normalizeBucketKey bool
	enableDebugLogging bool
}

// NewClusteringService creates a new clustering service with the given configuration
func NewClusteringService(config ClusteringServiceConfig) *ClusteringService {
	return &ClusteringService{
		resolver:           NewBucketResolver(config.Stopwords, config.EnableDebugLogging),
		dispatcher:         NewDispatcher(config.Workers),
		normalizeBucketKey: config.NormalizeBucketKey,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Cluster validates the catalog, resolves every bucket in parallel and
// aggregates the per-product results into the three output views.
// Flow: validate -> bucketize -> dispatch (barrier) -> aggregate
func (s *ClusteringService) Cluster(ctx context.Context, catalog *domain.Catalog) (*domain.ClusterResult, error) {
	if catalog == nil {
		return nil, domain.ErrInvalidRequest
	}

	if err := ValidateProducts(catalog.Products); err != nil {
		return nil, err
	}

	start := time.Now()
	buckets := Bucketize(catalog.Products, s.normalizeBucketKey)

	perBucket, err := s.dispatcher.Dispatch(ctx, buckets, s.resolver.Resolve)
	if err != nil {
		return nil, fmt.Errorf("resolve buckets: %w", err)
	}

	result := Aggregate(catalog, perBucket)

	log.Printf("[CLUSTER] %d products, %d buckets, %d groups, workers=%d (%s)",
		len(catalog.Products), len(buckets), len(result.Groups), s.dispatcher.Workers(), time.Since(start))

	return result, nil
}

// ClusterProducts clusters a bare product list with no source table
func (s *ClusteringService) ClusterProducts(ctx context.Context, products []domain.Product) (*domain.ClusterResult, error) {
	return s.Cluster(ctx, &domain.Catalog{Products: products})
}

// ValidateProducts rejects records with a blank code before any bucket is built
func ValidateProducts(products []domain.Product) error {
	for i, p := range products {
		if strings.TrimSpace(p.Code) == "" {
			return &domain.ValidationError{Row: i + 1, Field: "code", Reason: "is empty"}
		}
	}
	return nil
}

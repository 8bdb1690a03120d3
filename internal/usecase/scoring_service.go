package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/prefixlens/backend/internal/domain"
)

// ScoringServiceConfig holds configuration for the scoring service
type ScoringServiceConfig struct {
	// MaxItems caps the number of uncached products scored per run; 0 means no cap
	MaxItems           int
	EnableDebugLogging bool
}

// ScoreReport summarizes one scoring run
type ScoreReport struct {
	Unique    int // distinct (code, name) pairs in the catalog
	Cached    int // pairs skipped because their code was already scored
	Attempted int
	Scored    int
	Failed    int
}

// ScoringService assigns chronicity scores to catalog products, reusing
// previously scored codes from the store.
type ScoringService struct {
	store              domain.ScoreStore
	client             domain.ChronicityClient
	maxItems           int
	enableDebugLogging bool
}

// NewScoringService creates a new scoring service with dependencies
func NewScoringService(
	store domain.ScoreStore,
	client domain.ChronicityClient,
	config ScoringServiceConfig,
) *ScoringService {
	maxItems := config.MaxItems
	if maxItems < 0 {
		maxItems = 0
	}

	return &ScoringService{
		store:              store,
		client:             client,
		maxItems:           maxItems,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// ScoreCatalog scores every distinct (code, name) pair whose code is not yet
// cached, one request at a time. A failed item is logged and left unscored;
// only successes reach the store. The store is persisted before returning,
// including when ctx is cancelled mid-batch.
func (s *ScoringService) ScoreCatalog(ctx context.Context, products []domain.Product) (*ScoreReport, error) {
	pending := UniqueProducts(NormalizeNames(products))
	report := &ScoreReport{Unique: len(pending)}

	todo := make([]domain.Product, 0, len(pending))
	for _, p := range pending {
		if s.store.Has(p.Code) {
			report.Cached++
			continue
		}
		todo = append(todo, p)
	}
	if s.maxItems > 0 && len(todo) > s.maxItems {
		todo = todo[:s.maxItems]
	}

	log.Printf("[SCORE] products to score: %d (cached: %d)", len(todo), report.Cached)

	var runErr error
	for _, p := range todo {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		report.Attempted++
		score, err := s.client.Score(ctx, p.Code, p.Name)
		if err != nil {
			report.Failed++
			log.Printf("[SCORE] failed for %s (%s): %v", p.Name, p.Code, err)
			continue
		}

		s.store.Set(p.Code, score)
		report.Scored++

		if s.enableDebugLogging {
			log.Printf("[SCORE] %s (%s) -> %d", p.Name, p.Code, score)
		}
	}

	if err := s.store.Persist(); err != nil {
		return report, fmt.Errorf("persist score cache: %w", err)
	}

	log.Printf("[SCORE] done: scored=%d failed=%d cache size=%d", report.Scored, report.Failed, s.store.Len())
	return report, runErr
}

// Lookup returns the cached score for code
func (s *ScoringService) Lookup(code string) (int, bool) {
	score, err := s.store.Get(code)
	if err != nil {
		return 0, false
	}
	return score, true
}

// NormalizeNames returns a copy of products with names trimmed and upper-cased
func NormalizeNames(products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	for i, p := range products {
		out[i] = domain.Product{
			Code: p.Code,
			Name: strings.ToUpper(strings.TrimSpace(p.Name)),
		}
	}
	return out
}

// UniqueProducts drops repeated (code, name) pairs, keeping first occurrences in order
func UniqueProducts(products []domain.Product) []domain.Product {
	seen := make(map[domain.Product]struct{}, len(products))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

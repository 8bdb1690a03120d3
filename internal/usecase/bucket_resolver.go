package usecase

import (
	"log"
	"strings"
	"unicode/utf8"

	"github.com/prefixlens/backend/internal/domain"
)

// DefaultStopwords are generic pharmaceutical-form terms too broad to serve as a group key
var DefaultStopwords = []string{
	"GEL", "SERUM", "TROUSSE", "COUSSIN", "VERNIS",
	"SPRAY", "MASQUE", "CREME", "HUILE", "SHAMPOOING",
	"NEUT", "POMMADE", "CAPSULES", "COMPRIMES",
}

// BucketResolver finds, for every product of a bucket, a common string shared
// with a bucket-mate and the variation left once that string is removed.
type BucketResolver struct {
	stopwords          map[string]bool
	enableDebugLogging bool
}

// NewBucketResolver creates a resolver. A nil stopword list selects DefaultStopwords.
func NewBucketResolver(stopwords []string, enableDebugLogging bool) *BucketResolver {
	if stopwords == nil {
		stopwords = DefaultStopwords
	}

	set := make(map[string]bool, len(stopwords))
	for _, w := range stopwords {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w != "" {
			set[w] = true
		}
	}

	return &BucketResolver{
		stopwords:          set,
		enableDebugLogging: enableDebugLogging,
	}
}

// IsStopword reports whether s is one of the resolver's stopwords
func (r *BucketResolver) IsStopword(s string) bool {
	return r.stopwords[strings.ToUpper(s)]
}

// Resolve returns one MatchResult per product of the bucket, in bucket order.
// Matching is first-match: the first bucket-mate with a different code that
// shares a leading token decides the common string.
func (r *BucketResolver) Resolve(bucket domain.Bucket) []domain.MatchResult {
	results := make([]domain.MatchResult, 0, len(bucket.Products))

	for _, p := range bucket.Products {
		common := ""
		for _, q := range bucket.Products {
			if q.Code == p.Code {
				continue
			}
			if c := CommonPrefixTokens(p.Name, q.Name); c != "" {
				common = c
				break
			}
		}

		variation := p.Name
		if common != "" {
			if rest, ok := stripCommonPrefix(p.Name, common); ok {
				variation = rest
			}
		}

		common, variation = r.rekey(common, variation)

		if r.enableDebugLogging {
			log.Printf("[RESOLVE] bucket=%q code=%s name=%q common=%q variation=%q",
				bucket.Key, p.Code, p.Name, common, variation)
		}

		results = append(results, domain.MatchResult{
			Code:         p.Code,
			CommonString: common,
			Variation:    variation,
		})
	}

	return results
}

// rekey promotes the first token of the variation to the group key when the
// common string is a stopword, keeping the stopword at the head of the variation.
// An empty variation leaves both values unchanged.
func (r *BucketResolver) rekey(common, variation string) (string, string) {
	if !r.stopwords[common] {
		return common, variation
	}

	head := firstToken(variation)
	if head == "" {
		return common, variation
	}

	return strings.ToUpper(head), common + " " + variation
}

// stripCommonPrefix removes prefix from the front of name when the upper-cased
// name starts with it. The cut is made at the prefix's rune offset in the
// original-case name and the remainder is trimmed.
func stripCommonPrefix(name, prefix string) (string, bool) {
	if !strings.HasPrefix(strings.ToUpper(name), prefix) {
		return name, false
	}

	runes := []rune(name)
	n := utf8.RuneCountInString(prefix)
	if n > len(runes) {
		return name, false
	}

	return strings.TrimSpace(string(runes[n:])), true
}

package usecase

import (
	"sort"
	"strings"

	"github.com/prefixlens/backend/internal/domain"
)

// Bucketize partitions products by the first whitespace token of their name.
// Buckets are returned sorted by key and each keeps the input order of its
// products, which drives first-match tie-breaking in the resolver. Key order
// decides which bucket's result a repeated code keeps when merging.
// Products with a blank name share the bucket keyed by "".
// When normalize is set the key is upper-cased so that tokens differing only in
// case land in the same bucket.
func Bucketize(products []domain.Product, normalize bool) []domain.Bucket {
	index := make(map[string]int)
	var buckets []domain.Bucket

	for _, p := range products {
		key := firstToken(p.Name)
		if normalize {
			key = strings.ToUpper(key)
		}

		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, domain.Bucket{Key: key})
		}
		buckets[i].Products = append(buckets[i].Products, p)
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Key < buckets[j].Key
	})
	return buckets
}

// firstToken returns the first whitespace-delimited token of s, or "" if s is blank
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

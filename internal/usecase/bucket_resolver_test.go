package usecase

import (
	"strings"
	"testing"

	"github.com/prefixlens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bucketOf(products ...domain.Product) domain.Bucket {
	return domain.Bucket{Key: firstToken(products[0].Name), Products: products}
}

func TestBucketResolver_Resolve(t *testing.T) {
	r := NewBucketResolver(nil, false)

	t.Run("shared leading token becomes the common string", func(t *testing.T) {
		results := r.Resolve(bucketOf(
			domain.Product{Code: "1", Name: "DOLIPRANE 500MG COMPRIME"},
			domain.Product{Code: "2", Name: "DOLIPRANE 1000MG COMPRIME"},
		))

		require.Len(t, results, 2)
		assert.Equal(t, domain.MatchResult{Code: "1", CommonString: "DOLIPRANE", Variation: "500MG COMPRIME"}, results[0])
		assert.Equal(t, domain.MatchResult{Code: "2", CommonString: "DOLIPRANE", Variation: "1000MG COMPRIME"}, results[1])
	})

	t.Run("stopword common string is re-keyed", func(t *testing.T) {
		results := r.Resolve(bucketOf(
			domain.Product{Code: "1", Name: "GEL DOUCHE AMANDE"},
			domain.Product{Code: "2", Name: "GEL NETTOYANT VISAGE"},
		))

		require.Len(t, results, 2)
		assert.Equal(t, "DOUCHE", results[0].CommonString)
		assert.Equal(t, "GEL DOUCHE AMANDE", results[0].Variation)
		assert.Equal(t, "NETTOYANT", results[1].CommonString)
		assert.Equal(t, "GEL NETTOYANT VISAGE", results[1].Variation)
	})

	t.Run("lone product keeps its full name as variation", func(t *testing.T) {
		results := r.Resolve(bucketOf(domain.Product{Code: "1", Name: "SMECTA ORANGE"}))

		require.Len(t, results, 1)
		assert.Equal(t, "", results[0].CommonString)
		assert.Equal(t, "SMECTA ORANGE", results[0].Variation)
	})

	t.Run("rows sharing a code never match each other", func(t *testing.T) {
		results := r.Resolve(bucketOf(
			domain.Product{Code: "7", Name: "BIAFINE EMULSION"},
			domain.Product{Code: "7", Name: "BIAFINE EMULSION"},
		))

		require.Len(t, results, 2)
		for _, res := range results {
			assert.Equal(t, "", res.CommonString)
			assert.Equal(t, "BIAFINE EMULSION", res.Variation)
		}
	})

	t.Run("first match in bucket order wins over a longer later match", func(t *testing.T) {
		results := r.Resolve(bucketOf(
			domain.Product{Code: "1", Name: "ARNICA 9CH GRANULES"},
			domain.Product{Code: "2", Name: "ARNICA 5CH TUBE"},
			domain.Product{Code: "3", Name: "ARNICA 9CH GRANULES DOSE"},
		))

		require.Len(t, results, 3)
		assert.Equal(t, "ARNICA", results[0].CommonString)
		assert.Equal(t, "9CH GRANULES", results[0].Variation)
		// the third product meets the first one before the second
		assert.Equal(t, "ARNICA 9CH GRANULES", results[2].CommonString)
		assert.Equal(t, "DOSE", results[2].Variation)
	})

	t.Run("variation is cut from the original-case name", func(t *testing.T) {
		results := r.Resolve(bucketOf(
			domain.Product{Code: "1", Name: "Doliprane 500mg Comprime"},
			domain.Product{Code: "2", Name: "DOLIPRANE 1000MG"},
		))

		assert.Equal(t, "DOLIPRANE", results[0].CommonString)
		assert.Equal(t, "500mg Comprime", results[0].Variation)
	})

	t.Run("name that does not literally start with the common string keeps its full name", func(t *testing.T) {
		results := r.Resolve(bucketOf(
			domain.Product{Code: "1", Name: "DOLIPRANE  500MG"},
			domain.Product{Code: "2", Name: "DOLIPRANE 500MG SIROP"},
		))

		assert.Equal(t, "DOLIPRANE 500MG", results[0].CommonString)
		assert.Equal(t, "DOLIPRANE  500MG", results[0].Variation)
	})

	t.Run("stopword with empty variation is left unchanged", func(t *testing.T) {
		results := r.Resolve(bucketOf(
			domain.Product{Code: "1", Name: "GEL"},
			domain.Product{Code: "2", Name: "GEL DOUCHE"},
		))

		assert.Equal(t, domain.MatchResult{Code: "1", CommonString: "GEL", Variation: ""}, results[0])
		assert.Equal(t, "DOUCHE", results[1].CommonString)
		assert.Equal(t, "GEL DOUCHE", results[1].Variation)
	})

	t.Run("multi-token common string is not a stopword", func(t *testing.T) {
		results := r.Resolve(bucketOf(
			domain.Product{Code: "1", Name: "CREME MAINS KARITE"},
			domain.Product{Code: "2", Name: "CREME MAINS AVOINE"},
		))

		assert.Equal(t, "CREME MAINS", results[0].CommonString)
		assert.Equal(t, "KARITE", results[0].Variation)
	})
}

func TestBucketResolver_CustomStopwords(t *testing.T) {
	r := NewBucketResolver([]string{" baume ", ""}, false)

	assert.True(t, r.IsStopword("BAUME"))
	assert.True(t, r.IsStopword("baume"))
	assert.False(t, r.IsStopword("GEL"))
	assert.False(t, r.IsStopword(""))

	results := r.Resolve(bucketOf(
		domain.Product{Code: "1", Name: "BAUME LEVRES"},
		domain.Product{Code: "2", Name: "BAUME CORPS"},
	))
	assert.Equal(t, "LEVRES", results[0].CommonString)
	assert.Equal(t, "BAUME LEVRES", results[0].Variation)
}

func TestBucketResolver_Properties(t *testing.T) {
	r := NewBucketResolver(nil, false)
	products := []domain.Product{
		{Code: "1", Name: "DOLIPRANE 500MG COMPRIME"},
		{Code: "2", Name: "DOLIPRANE 1000MG COMPRIME"},
		{Code: "3", Name: "DOLIPRANE 1000MG GELULE"},
		{Code: "4", Name: "SERUM ANTI AGE"},
		{Code: "5", Name: "SERUM ECLAT"},
		{Code: "6", Name: "VICHY MINERAL 89"},
		{Code: "7", Name: "VICHY MINERAL 89 50ML"},
	}

	var results []domain.MatchResult
	for _, b := range Bucketize(products, true) {
		results = append(results, r.Resolve(b)...)
	}
	require.Len(t, results, len(products))

	for i, res := range results {
		name := strings.ToUpper(products[i].Name)
		if res.CommonString == "" {
			assert.Equal(t, products[i].Name, res.Variation)
			continue
		}
		if r.IsStopword(firstToken(name)) && !strings.HasPrefix(name, res.CommonString) {
			// re-keyed: the stopword is kept at the head of the variation
			assert.True(t, strings.HasPrefix(res.Variation, firstToken(name)+" "), "variation %q", res.Variation)
			assert.False(t, r.IsStopword(res.CommonString))
			continue
		}
		assert.True(t, strings.HasPrefix(name, res.CommonString), "%q is not a prefix of %q", res.CommonString, name)
		assert.Equal(t, strings.TrimSpace(products[i].Name[len(res.CommonString):]), res.Variation)
	}
}

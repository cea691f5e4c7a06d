// internal/similarity/similarity_test.go
package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJaccard(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{
			name:     "identical strings",
			a:        "personal loan application",
			b:        "personal loan application",
			expected: 1.0,
		},
		{
			name:     "case insensitive",
			a:        "Personal Loan",
			b:        "personal loan",
			expected: 1.0,
		},
		{
			name:     "partial overlap",
			a:        "home loan",
			b:        "home loan application",
			expected: 2.0 / 3.0,
		},
		{
			name:     "no overlap",
			a:        "credit score",
			b:        "loan tenure",
			expected: 0.0,
		},
		{
			name:     "both empty",
			a:        "",
			b:        "",
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Jaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosine(t *testing.T) {
	t.Run("self similarity is one", func(t *testing.T) {
		for _, s := range []string{"loan", "personal loan offer", "a a b c"} {
			assert.InDelta(t, 1.0, Cosine(s, s), 1e-9)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		a := "home loan for new flat"
		b := "personal loan"
		assert.InDelta(t, Cosine(a, b), Cosine(b, a), 1e-12)
	})

	t.Run("bounded", func(t *testing.T) {
		pairs := [][2]string{
			{"loan amount", "loan tenure"},
			{"credit", "score"},
			{"", "loan"},
		}
		for _, p := range pairs {
			score := Cosine(p[0], p[1])
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	})

	t.Run("zero norm yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Cosine("", "loan"))
		assert.Equal(t, 0.0, Cosine("loan", ""))
	})
}

func TestTFIDF(t *testing.T) {
	corpus := []string{
		"personal loan for travel",
		"home loan for new house",
		"credit card balance transfer",
	}

	vectors := TFIDF(corpus)
	require.Len(t, vectors, 3)

	// "loan" appears in two documents, "travel" in one; the rarer term gets
	// the larger weight.
	assert.Greater(t, vectors[0]["travel"], vectors[0]["loan"])

	// Disjoint documents share no terms.
	for term := range vectors[2] {
		_, inFirst := vectors[0][term]
		assert.False(t, inFirst, "unexpected shared term %q", term)
	}
}

func TestFuzzySearch(t *testing.T) {
	corpus := []string{
		"Personal Loan",
		"Home Loan",
		"Business Loan",
		"Gold Loan",
	}

	t.Run("ranks exact product first", func(t *testing.T) {
		results := FuzzySearch("personal loan", corpus, 0.3)
		require.NotEmpty(t, results)
		assert.Equal(t, "Personal Loan", results[0].Document)
		assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	})

	t.Run("threshold filters weak matches", func(t *testing.T) {
		results := FuzzySearch("personal loan", corpus, 0.99)
		require.Len(t, results, 1)
	})

	t.Run("ties keep corpus order", func(t *testing.T) {
		results := FuzzySearch("loan", corpus, 0.1)
		require.Len(t, results, 4)
		// All four share exactly the token "loan" out of two tokens each.
		assert.Equal(t, "Personal Loan", results[0].Document)
		assert.Equal(t, "Home Loan", results[1].Document)
		assert.Equal(t, "Business Loan", results[2].Document)
		assert.Equal(t, "Gold Loan", results[3].Document)
	})

	t.Run("no match above threshold", func(t *testing.T) {
		assert.Empty(t, FuzzySearch("mortgage refinance", corpus, 0.5))
	})
}

func TestWeightedScore(t *testing.T) {
	tests := []struct {
		name     string
		factors  map[string]float64
		weights  map[string]float64
		expected float64
	}{
		{
			name:     "full overlap",
			factors:  map[string]float64{"credit": 0.8, "income": 0.5},
			weights:  map[string]float64{"credit": 0.5, "income": 0.5},
			expected: 0.65,
		},
		{
			name:     "weights renormalized over present keys",
			factors:  map[string]float64{"credit": 1.0},
			weights:  map[string]float64{"credit": 0.5, "income": 0.3},
			expected: 1.0,
		},
		{
			name:     "no overlap",
			factors:  map[string]float64{"age": 0.4},
			weights:  map[string]float64{"credit": 0.5},
			expected: 0.0,
		},
		{
			name:     "empty inputs",
			factors:  map[string]float64{},
			weights:  map[string]float64{},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, WeightedScore(tt.factors, tt.weights), 1e-9)
		})
	}
}

func TestKNN(t *testing.T) {
	vectors := []Vector{
		{"loan": 1, "personal": 1},
		{"loan": 1, "home": 1},
		{"card": 1, "credit": 1},
	}

	t.Run("nearest first", func(t *testing.T) {
		indices := KNN(Vector{"loan": 1, "personal": 1}, vectors, 2)
		require.Len(t, indices, 2)
		assert.Equal(t, 0, indices[0])
		assert.Equal(t, 1, indices[1])
	})

	t.Run("k larger than corpus", func(t *testing.T) {
		indices := KNN(Vector{"loan": 1}, vectors, 10)
		assert.Len(t, indices, 3)
	})

	t.Run("ties keep index order", func(t *testing.T) {
		indices := KNN(Vector{"loan": 1}, vectors[:2], 2)
		assert.Equal(t, []int{0, 1}, indices)
	})
}

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected bool
	}{
		{"case and whitespace insensitive", "Anita Verma", "anita  verma", true},
		{"containment", "Anita", "Anita Verma", true},
		{"different identities", "Anita Verma", "Rahul Mehra", false},
		{"exact", "Dev Patel", "Dev Patel", true},
		{"empty against name", "", "Anita Verma", true}, // containment of the empty string
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FuzzyMatch(tt.a, tt.b))
		})
	}
}

func TestFuzzyMatchThreshold(t *testing.T) {
	// "anita sharma" shares 9 of 12 characters with "anita verma" (ratio 0.75),
	// landing between a lenient and the default threshold.
	assert.True(t, FuzzyMatchThreshold("Anita Verma", "Anita Sharma", 0.5))
	assert.False(t, FuzzyMatchThreshold("Anita Verma", "Anita Sharma", 0.8))

	// Equality and containment ignore the threshold entirely.
	assert.True(t, FuzzyMatchThreshold("Anita Verma", "anita verma", 0.99))
	assert.True(t, FuzzyMatchThreshold("Anita", "Anita Verma", 0.99))
}

// internal/similarity/similarity.go

// Package similarity is the text-similarity toolkit shared by KYC matching,
// product selection and context retrieval. Everything here is pure
// computation over whitespace-tokenized lowercase text.
package similarity

import (
	"math"
	"sort"
	"strings"
)

// Vector is a sparse term-weight vector.
type Vector map[string]float64

func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

func termFrequencies(s string) Vector {
	vec := Vector{}
	for _, tok := range tokenize(s) {
		vec[tok]++
	}
	return vec
}

// Jaccard returns |A∩B| / |A∪B| over the token sets of a and b.
// An empty union yields 0.
func Jaccard(a, b string) float64 {
	setA := map[string]struct{}{}
	for _, tok := range tokenize(a) {
		setA[tok] = struct{}{}
	}
	setB := map[string]struct{}{}
	for _, tok := range tokenize(b) {
		setB[tok] = struct{}{}
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Cosine returns the term-frequency cosine similarity of a and b in [0,1].
// Either operand having a zero norm yields 0.
func Cosine(a, b string) float64 {
	return SparseCosine(termFrequencies(a), termFrequencies(b))
}

// SparseCosine is cosine similarity over sparse vectors, used directly by KNN
// on TF-IDF output.
func SparseCosine(v1, v2 Vector) float64 {
	var dot float64
	for term, w1 := range v1 {
		if w2, ok := v2[term]; ok {
			dot += w1 * w2
		}
	}

	var sum1, sum2 float64
	for _, w := range v1 {
		sum1 += w * w
	}
	for _, w := range v2 {
		sum2 += w * w
	}

	denom := math.Sqrt(sum1) * math.Sqrt(sum2)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// TFIDF computes one sparse vector per corpus document: term frequency
// (count / document length) scaled by ln(N / (1 + docFrequency)).
func TFIDF(corpus []string) []Vector {
	tfs := make([]Vector, len(corpus))
	for i, doc := range corpus {
		words := tokenize(doc)
		tf := Vector{}
		for _, w := range words {
			tf[w]++
		}
		for w := range tf {
			tf[w] /= float64(len(words))
		}
		tfs[i] = tf
	}

	docFreq := map[string]int{}
	for _, tf := range tfs {
		for w := range tf {
			docFreq[w]++
		}
	}

	n := float64(len(corpus))
	vectors := make([]Vector, len(corpus))
	for i, tf := range tfs {
		vec := Vector{}
		for w, f := range tf {
			vec[w] = f * math.Log(n/float64(1+docFreq[w]))
		}
		vectors[i] = vec
	}
	return vectors
}

// SearchResult pairs a corpus document with its score against a query.
type SearchResult struct {
	Document string
	Score    float64
}

// FuzzySearch scores every corpus entry by cosine similarity against the
// query, keeps scores >= threshold, and returns them sorted descending.
// Equal scores keep their original corpus order.
func FuzzySearch(query string, corpus []string, threshold float64) []SearchResult {
	results := []SearchResult{}
	for _, doc := range corpus {
		if score := Cosine(query, doc); score >= threshold {
			results = append(results, SearchResult{Document: doc, Score: score})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// WeightedScore computes Σ(factor·weight) / Σ(weight) over keys present in
// both maps. No overlapping keys yields 0.
func WeightedScore(factors, weights map[string]float64) float64 {
	var total, totalWeight float64
	for key, weight := range weights {
		if factor, ok := factors[key]; ok {
			total += factor * weight
			totalWeight += weight
		}
	}
	if totalWeight == 0 {
		return 0
	}
	return total / totalWeight
}

// KNN returns the indices of the k vectors nearest to query by sparse cosine
// similarity. Ties keep ascending index order.
func KNN(query Vector, vectors []Vector, k int) []int {
	type scored struct {
		index int
		score float64
	}
	scores := make([]scored, len(vectors))
	for i, vec := range vectors {
		scores[i] = scored{index: i, score: SparseCosine(query, vec)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if k > len(scores) {
		k = len(scores)
	}
	indices := make([]int, 0, k)
	for _, s := range scores[:k] {
		indices = append(indices, s.index)
	}
	return indices
}

// FuzzyMatch reports whether a and b are the same identity string: equal
// after normalization, one containing the other, or a shared-character ratio
// above 0.8. The ratio is a crude approximation, not edit distance; it is
// cheap and good enough for the short name fields KYC compares.
func FuzzyMatch(a, b string) bool {
	return FuzzyMatchThreshold(a, b, 0.8)
}

// FuzzyMatchThreshold is FuzzyMatch with a caller-chosen ratio threshold.
// Equality and containment always match regardless of the threshold.
func FuzzyMatchThreshold(a, b string, threshold float64) bool {
	n1 := normalize(a)
	n2 := normalize(b)

	if n1 == n2 {
		return true
	}
	if strings.Contains(n1, n2) || strings.Contains(n2, n1) {
		return true
	}
	return matchRatio(n1, n2) > threshold
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// matchRatio counts the shorter string's characters that occur anywhere in
// the longer one, over the longer string's length.
func matchRatio(a, b string) float64 {
	longer, shorter := a, b
	if len(b) > len(a) {
		longer, shorter = b, a
	}
	if len(longer) == 0 {
		return 1
	}

	matches := 0
	for _, c := range shorter {
		if strings.ContainsRune(longer, c) {
			matches++
		}
	}
	return float64(matches) / float64(len(longer))
}

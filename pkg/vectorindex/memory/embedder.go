package memory

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// embeddingDim is the dimensionality of the hashing embedder.
const embeddingDim = 128

// HashingEmbedder is a deterministic bag-of-words embedder: each token is
// hashed into a fixed-size vector of term counts. No model, no network; the
// same text always embeds to the same vector.
type HashingEmbedder struct{}

// NewHashingEmbedder creates a deterministic hashing embedder.
func NewHashingEmbedder() *HashingEmbedder {
	return &HashingEmbedder{}
}

// Embed hashes lowercase word tokens into a fixed-size count vector.
func (e *HashingEmbedder) Embed(text string) []float64 {
	vec := make([]float64, embeddingDim)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[h.Sum32()%embeddingDim]++
	}
	return vec
}

// tokenize splits on any non-letter, non-digit rune and lowercases.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

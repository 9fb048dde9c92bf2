package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"dishdash/pkg/vectormath"
)

// HashProvider is an offline embedder: every word is hashed and spread over all
// dimensions with a sine pattern, then the vector is L2-normalised. Texts that
// share words land close together. It needs no credentials and is deterministic,
// which makes it the provider for local runs and tests.
type HashProvider struct {
	dimension int
}

func NewHashProvider(dimension int) *HashProvider {
	if dimension <= 0 {
		dimension = 256
	}
	return &HashProvider{dimension: dimension}
}

func (h *HashProvider) Name() string { return fmt.Sprintf("hash:fnv32a:%d", h.dimension) }

func (h *HashProvider) Dimension() int { return h.dimension }

func (h *HashProvider) Embed(ctx context.Context, text string) (vectormath.Vector, error) {
	return single(ctx, h, text)
}

func (h *HashProvider) EmbedBatch(ctx context.Context, texts []string) ([]vectormath.Vector, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}
	out := make([]vectormath.Vector, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.textToVector(t)
	}
	return out, nil
}

func (h *HashProvider) textToVector(text string) vectormath.Vector {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(text)))

	vector := make(vectormath.Vector, h.dimension)
	for _, word := range words {
		hash := hashWord(word)
		for i := range vector {
			vector[i] += math.Sin(float64(hash+uint32(i))) * 0.1
		}
	}

	var magnitude float64
	for _, val := range vector {
		magnitude += val * val
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude > 0 {
		for i := range vector {
			vector[i] /= magnitude
		}
	}
	return vector
}

func hashWord(word string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(word))
	return h.Sum32()
}

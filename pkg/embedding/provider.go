// Package embedding turns short texts into fixed-length vectors.
//
// Concrete providers (OpenAI, Gemini, the offline hash embedder) are wrapped by
// decorators that add a per-attempt timeout and retry policy, a circuit breaker,
// a token-bucket rate limit and a badger-backed cache. Every provider error is
// classified as utils.ErrProviderTransient (worth retrying) or
// utils.ErrProviderRejected (surfaced immediately).
package embedding

import (
	"context"
	"errors"
	"fmt"

	"dishdash/pkg/utils"
	"dishdash/pkg/vectormath"
)

// Provider maps text to vectors of a fixed Dimension.
//
// EmbedBatch returns exactly one vector per input, in input order. A failure
// for any item fails the whole call.
type Provider interface {
	Embed(ctx context.Context, text string) (vectormath.Vector, error)
	EmbedBatch(ctx context.Context, texts []string) ([]vectormath.Vector, error)
	Dimension() int
	// Name identifies provider, model and dimension. Vectors are only
	// comparable when they come from providers with the same Name.
	Name() string
}

func transient(err error) error {
	if err == nil || errors.Is(err, utils.ErrProviderTransient) {
		return err
	}
	return fmt.Errorf("%w: %w", utils.ErrProviderTransient, err)
}

func rejected(err error) error {
	if err == nil || errors.Is(err, utils.ErrProviderRejected) {
		return err
	}
	return fmt.Errorf("%w: %w", utils.ErrProviderRejected, err)
}

// classifyStatus sorts an HTTP status from a provider into transient or rejected.
func classifyStatus(code int, err error) error {
	switch {
	case code == 408 || code == 429 || code >= 500:
		return transient(err)
	case code >= 400:
		return rejected(err)
	default:
		return transient(err)
	}
}

// classifyGeneric handles errors that carry no provider status. Cancellation by
// the caller is passed through untouched so it is never retried.
func classifyGeneric(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return err
	}
	return transient(err)
}

// checkBatch enforces the batch contract on a raw provider response.
func checkBatch(texts []string, vectors []vectormath.Vector, dim int) error {
	if len(vectors) != len(texts) {
		return rejected(fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(vectors)))
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: item %d has length %d, want %d", utils.ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return nil
}

func validateTexts(texts []string) error {
	if len(texts) == 0 {
		return rejected(errors.New("no input texts provided"))
	}
	for i, t := range texts {
		if t == "" {
			return rejected(fmt.Errorf("input %d is empty", i))
		}
	}
	return nil
}

// chunk splits texts into slices of at most size elements.
func chunk(texts []string, size int) [][]string {
	if size <= 0 || len(texts) <= size {
		return [][]string{texts}
	}
	var out [][]string
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		out = append(out, texts[start:end])
	}
	return out
}

func single(ctx context.Context, p Provider, text string) (vectormath.Vector, error) {
	vs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

package domain

import (
	"context"
	"fmt"
	"strings"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// QueryEmbedder is the outermost decorator for user questions. It collapses
// whitespace, so "SS2  outlet\n" and "SS2 outlet" share a cache entry, then
// prepends the model's query instruction (asymmetric retrieval models expect one).
type QueryEmbedder struct {
	inner       Embedder
	instruction string
}

// NewQueryEmbedder wraps inner. instruction may be empty.
func NewQueryEmbedder(inner Embedder, instruction string) *QueryEmbedder {
	return &QueryEmbedder{inner: inner, instruction: instruction}
}

// Embed normalizes text and delegates to the inner embedder.
func (e *QueryEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	normalized := NormalizeQuery(text)
	if normalized == "" {
		return EmbeddingResult{}, fmt.Errorf("%w: empty query text", ErrInvalidArgument)
	}
	result, err := e.inner.Embed(ctx, e.instruction+normalized)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("query embed: %w", err)
	}
	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (e *QueryEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

// NormalizeQuery trims text and collapses internal whitespace runs to one space.
func NormalizeQuery(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

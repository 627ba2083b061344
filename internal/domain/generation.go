package domain

import "context"

// Generator is the black-box text generation capability. One call per request.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

// GenerationRequest is a single system+user prompt pair.
type GenerationRequest struct {
	System string
	Prompt string
}

// GenerationResult is the completion text with token usage.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

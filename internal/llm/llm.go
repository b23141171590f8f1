// Package llm provides provider-agnostic access to chat-completion models.
// It defines a small client interface with a concrete OpenAI implementation
// and deterministic mocks for testing. Callers supply the model identifier
// and any provider options per request, so a single client can serve calls
// against different models.
package llm

import (
	"context"
	"errors"
)

var (
	ErrLLMFailed     = errors.New("LLM request failed")
	ErrInvalidConfig = errors.New("invalid LLM configuration")
)

// Request describes one completion call.
type Request struct {
	// Model specifies the model identifier (e.g., "gpt-4o", "nemotron-4-340b-instruct")
	Model string

	// Prompt is the user message sent to the model
	Prompt string

	// Options carries provider configuration for this call (temperature,
	// top_p, max_tokens, seed, ...). Keys are unique; semantics are opaque
	// to callers and interpreted by the client implementation.
	Options map[string]any
}

// Client defines the interface for interacting with language models.
// Implementations must be stateless and thread-safe.
type Client interface {
	// Complete produces text for a single-turn prompt using the requested model.
	// Returns the generated text or an error if the call fails.
	Complete(ctx context.Context, req Request) (string, error)
}

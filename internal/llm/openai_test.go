package llm

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/openai/openai-go"
)

func TestNewOpenAIClient_MissingAPIKey(t *testing.T) {
	originalKey := os.Getenv("OPENAI_API_KEY")
	defer os.Setenv("OPENAI_API_KEY", originalKey)

	os.Unsetenv("OPENAI_API_KEY")

	_, err := NewOpenAIClient(OpenAIConfig{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewOpenAIClient_ConfigKeyWins(t *testing.T) {
	originalKey := os.Getenv("OPENAI_API_KEY")
	defer os.Setenv("OPENAI_API_KEY", originalKey)

	os.Unsetenv("OPENAI_API_KEY")

	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("client is nil")
	}
}

func TestOpenAIClient_CompleteValidation(t *testing.T) {
	client := &OpenAIClient{}
	ctx := context.Background()

	_, err := client.Complete(ctx, Request{Prompt: "p"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("missing model: expected ErrInvalidConfig, got %v", err)
	}

	_, err = client.Complete(ctx, Request{Model: "m"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("empty prompt: expected ErrInvalidConfig, got %v", err)
	}
}

func TestApplyOptions_KnownKeys(t *testing.T) {
	params := openai.ChatCompletionNewParams{}
	reqOpts := applyOptions(&params, map[string]any{
		"temperature": 0.7,
		"top_p":       0.9,
		"max_tokens":  512,
		"seed":        42,
	})

	if len(reqOpts) != 0 {
		t.Errorf("known keys should not produce request options, got %d", len(reqOpts))
	}

	if !params.Temperature.Valid() || params.Temperature.Value != 0.7 {
		t.Errorf("temperature not applied: %+v", params.Temperature)
	}
	if !params.TopP.Valid() || params.TopP.Value != 0.9 {
		t.Errorf("top_p not applied: %+v", params.TopP)
	}
	if !params.MaxTokens.Valid() || params.MaxTokens.Value != 512 {
		t.Errorf("max_tokens not applied: %+v", params.MaxTokens)
	}
	if !params.Seed.Valid() || params.Seed.Value != 42 {
		t.Errorf("seed not applied: %+v", params.Seed)
	}
}

func TestApplyOptions_UnknownKeysForwarded(t *testing.T) {
	params := openai.ChatCompletionNewParams{}
	reqOpts := applyOptions(&params, map[string]any{
		"top_k":       40,
		"temperature": 0.2,
	})

	// top_k is not a chat-completion param; it must be forwarded in the body.
	if len(reqOpts) != 1 {
		t.Errorf("expected 1 request option for top_k, got %d", len(reqOpts))
	}
	if !params.Temperature.Valid() {
		t.Error("temperature should still be applied alongside unknown keys")
	}
}

func TestApplyOptions_StopSequences(t *testing.T) {
	params := openai.ChatCompletionNewParams{}
	reqOpts := applyOptions(&params, map[string]any{"stop": "\n\n"})

	if len(reqOpts) != 0 {
		t.Errorf("string stop should map to a typed param, got %d request options", len(reqOpts))
	}
	if !params.Stop.OfString.Valid() || params.Stop.OfString.Value != "\n\n" {
		t.Errorf("stop string not applied: %+v", params.Stop)
	}

	params = openai.ChatCompletionNewParams{}
	reqOpts = applyOptions(&params, map[string]any{"stop": []string{"END", "STOP"}})

	if len(reqOpts) != 0 {
		t.Errorf("string-slice stop should map to a typed param, got %d request options", len(reqOpts))
	}
	if len(params.Stop.OfStringArray) != 2 {
		t.Errorf("stop sequences not applied: %+v", params.Stop)
	}
}

func TestApplyOptions_IntegerTemperature(t *testing.T) {
	params := openai.ChatCompletionNewParams{}
	applyOptions(&params, map[string]any{"temperature": 1})

	if !params.Temperature.Valid() || params.Temperature.Value != 1.0 {
		t.Errorf("integer temperature not coerced: %+v", params.Temperature)
	}
}

func TestApplyOptions_MistypedKnownKeyForwarded(t *testing.T) {
	params := openai.ChatCompletionNewParams{}
	reqOpts := applyOptions(&params, map[string]any{"max_tokens": "lots"})

	if params.MaxTokens.Valid() {
		t.Error("mistyped max_tokens must not be applied as a typed param")
	}
	if len(reqOpts) != 1 {
		t.Errorf("mistyped key should fall through to the body, got %d options", len(reqOpts))
	}
}

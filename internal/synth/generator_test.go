package synth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/curate-labs/topicforge/internal/llm"
)

func TestNewGenerator_NilClient(t *testing.T) {
	_, err := NewGenerator(nil)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestGenerator_GenerateMacroTopics(t *testing.T) {
	mock := llm.NewMockClient("1. Food and drinks\n2. Technology")
	gen, err := NewGenerator(mock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	responses, err := gen.GenerateMacroTopics(context.Background(), MacroTopicsRequest{
		Model:   "test-model",
		NTopics: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	if responses[0] != "1. Food and drinks\n2. Technology" {
		t.Errorf("unexpected response: %q", responses[0])
	}

	req := mock.LastRequest()
	if req.Model != "test-model" {
		t.Errorf("model = %q, want test-model", req.Model)
	}
	if !strings.Contains(req.Prompt, "generate 2 comprehensive topics") {
		t.Errorf("prompt missing topic count: %q", req.Prompt)
	}
	if strings.Contains(req.Prompt, "{n_macro_topics}") {
		t.Errorf("prompt has unresolved placeholder: %q", req.Prompt)
	}
}

func TestGenerator_GenerateMacroTopics_Validation(t *testing.T) {
	gen, _ := NewGenerator(llm.NewMockClient("x"))

	_, err := gen.GenerateMacroTopics(context.Background(), MacroTopicsRequest{Model: "m", NTopics: 0})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("zero count: expected ErrInvalidRequest, got %v", err)
	}

	_, err = gen.GenerateMacroTopics(context.Background(), MacroTopicsRequest{
		Model:          "m",
		NTopics:        3,
		PromptTemplate: "List {n_macro_topics} topics about {unknown_thing}.",
	})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("unknown placeholder: expected ErrInvalidRequest, got %v", err)
	}
}

func TestGenerator_GenerateSubtopics(t *testing.T) {
	mock := llm.NewMockClient("1. Baking\n2. Grilling\n3. Fermentation")
	gen, _ := NewGenerator(mock)

	responses, err := gen.GenerateSubtopics(context.Background(), SubtopicsRequest{
		Model:      "test-model",
		MacroTopic: "Cooking",
		NSubtopics: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}

	prompt := mock.LastRequest().Prompt
	if !strings.Contains(prompt, "Cooking") {
		t.Errorf("prompt missing macro topic: %q", prompt)
	}
	if !strings.Contains(prompt, "generate 3 comprehensive topics") {
		t.Errorf("prompt missing subtopic count: %q", prompt)
	}
}

func TestGenerator_GenerateSubtopics_Validation(t *testing.T) {
	gen, _ := NewGenerator(llm.NewMockClient("x"))

	_, err := gen.GenerateSubtopics(context.Background(), SubtopicsRequest{Model: "m", NSubtopics: 3})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("missing macro topic: expected ErrInvalidRequest, got %v", err)
	}

	_, err = gen.GenerateSubtopics(context.Background(), SubtopicsRequest{Model: "m", MacroTopic: "Cooking", NSubtopics: -1})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("negative count: expected ErrInvalidRequest, got %v", err)
	}
}

func TestGenerator_CustomPromptTemplate(t *testing.T) {
	mock := llm.NewMockClient("response")
	gen, _ := NewGenerator(mock)

	_, err := gen.GenerateMacroTopics(context.Background(), MacroTopicsRequest{
		Model:          "m",
		NTopics:        7,
		PromptTemplate: "Give me exactly {n_macro_topics} broad themes.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := mock.LastRequest().Prompt; got != "Give me exactly 7 broad themes." {
		t.Errorf("prompt = %q", got)
	}
}

func TestGenerator_LLMErrorPassesThrough(t *testing.T) {
	apiErr := errors.New("boom")
	gen, _ := NewGenerator(llm.NewMockClientWithError(apiErr))

	_, err := gen.GenerateMacroTopics(context.Background(), MacroTopicsRequest{Model: "m", NTopics: 1})
	if !errors.Is(err, apiErr) {
		t.Fatalf("expected the client error to pass through, got %v", err)
	}
	if IsConversionError(err) {
		t.Error("client errors must not be classified as conversion failures")
	}
}

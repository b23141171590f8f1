// Package synth generates synthetic training-data topics from a language
// model. A Generator issues the raw model calls and normalizes free-form
// responses into YAML lists of strings; the MacroTopics and Subtopics helpers
// drive it with bounded retries on conversion failures.
package synth

import (
	"context"
	"fmt"
	"strconv"

	"github.com/curate-labs/topicforge/internal/llm"
)

// MacroTopicsRequest describes one macro-topic generation call.
type MacroTopicsRequest struct {
	// Model is the model identifier passed through to the LLM client
	Model string

	// ModelOptions carries provider configuration for the call
	ModelOptions map[string]any

	// NTopics is the number of topics requested from the model
	NTopics int

	// PromptTemplate overrides DefaultMacroTopicsPromptTemplate when set.
	// It may reference the {n_macro_topics} placeholder.
	PromptTemplate string
}

// SubtopicsRequest describes one subtopic generation call.
type SubtopicsRequest struct {
	Model        string
	ModelOptions map[string]any

	// MacroTopic is the parent topic the subtopics should fall under
	MacroTopic string

	// NSubtopics is the number of subtopics requested from the model
	NSubtopics int

	// PromptTemplate overrides DefaultSubtopicsPromptTemplate when set.
	// It may reference the {macro_topic} and {n_subtopics} placeholders.
	PromptTemplate string
}

// ConversionRequest describes one response-to-list normalization call.
type ConversionRequest struct {
	// Response is the raw model output to normalize
	Response string

	Model        string
	ModelOptions map[string]any

	// PromptTemplate overrides DefaultConversionPromptTemplate when set.
	// It may reference the {llm_response} placeholder.
	PromptTemplate string
}

// TopicSource is the generation capability consumed by the retry helpers.
// Generator is the production implementation; tests substitute scripted fakes.
type TopicSource interface {
	// GenerateMacroTopics requests broad top-level topics and returns the
	// raw response collection (first element is consumed downstream).
	GenerateMacroTopics(ctx context.Context, req MacroTopicsRequest) ([]string, error)

	// GenerateSubtopics requests subtopics of a macro topic and returns the
	// raw response collection.
	GenerateSubtopics(ctx context.Context, req SubtopicsRequest) ([]string, error)

	// ConvertResponseToList normalizes a raw response into a list of strings.
	// Failures to produce that shape are reported as *ConversionError;
	// transport and model failures pass through untyped.
	ConvertResponseToList(ctx context.Context, req ConversionRequest) ([]string, error)
}

// Generator produces topic lists using an LLM client.
type Generator struct {
	client llm.Client
}

// NewGenerator creates a generator over the given LLM client.
func NewGenerator(client llm.Client) (*Generator, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: LLM client is required", ErrInvalidRequest)
	}
	return &Generator{client: client}, nil
}

// GenerateMacroTopics asks the model for broad topics covering diverse
// subject areas. The returned slice holds one raw response per completion.
func (g *Generator) GenerateMacroTopics(ctx context.Context, req MacroTopicsRequest) ([]string, error) {
	if req.NTopics <= 0 {
		return nil, fmt.Errorf("%w: topic count must be positive, got %d", ErrInvalidRequest, req.NTopics)
	}

	template := req.PromptTemplate
	if template == "" {
		template = DefaultMacroTopicsPromptTemplate
	}

	prompt, err := renderTemplate(template, map[string]string{
		"n_macro_topics": strconv.Itoa(req.NTopics),
	})
	if err != nil {
		return nil, err
	}

	text, err := g.client.Complete(ctx, llm.Request{
		Model:   req.Model,
		Prompt:  prompt,
		Options: req.ModelOptions,
	})
	if err != nil {
		return nil, err
	}

	return []string{text}, nil
}

// GenerateSubtopics asks the model for subtopics nested under req.MacroTopic.
func (g *Generator) GenerateSubtopics(ctx context.Context, req SubtopicsRequest) ([]string, error) {
	if req.MacroTopic == "" {
		return nil, fmt.Errorf("%w: macro topic is required", ErrInvalidRequest)
	}
	if req.NSubtopics <= 0 {
		return nil, fmt.Errorf("%w: subtopic count must be positive, got %d", ErrInvalidRequest, req.NSubtopics)
	}

	template := req.PromptTemplate
	if template == "" {
		template = DefaultSubtopicsPromptTemplate
	}

	prompt, err := renderTemplate(template, map[string]string{
		"macro_topic": req.MacroTopic,
		"n_subtopics": strconv.Itoa(req.NSubtopics),
	})
	if err != nil {
		return nil, err
	}

	text, err := g.client.Complete(ctx, llm.Request{
		Model:   req.Model,
		Prompt:  prompt,
		Options: req.ModelOptions,
	})
	if err != nil {
		return nil, err
	}

	return []string{text}, nil
}

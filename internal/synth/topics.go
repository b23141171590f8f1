package synth

import (
	"context"
	"fmt"
	"io"
	"os"
)

// DefaultMaxRetries bounds the conversion retry loop when callers use the
// Default*Params constructors.
const DefaultMaxRetries = 5

// MacroTopicsParams configures a bounded-retry macro-topic generation call.
type MacroTopicsParams struct {
	Model        string
	ModelOptions map[string]any

	// NTopics is the number of macro topics requested
	NTopics int

	// PromptTemplate overrides the default macro-topic template when set
	PromptTemplate string

	// MaxRetries bounds the number of attempts. Zero means no attempts at
	// all: the call returns an empty list without touching the source.
	MaxRetries int

	// Diagnostics receives one line per failed conversion attempt.
	// Defaults to os.Stderr.
	Diagnostics io.Writer
}

// DefaultMacroTopicsParams returns params with the default retry bound.
func DefaultMacroTopicsParams() MacroTopicsParams {
	return MacroTopicsParams{MaxRetries: DefaultMaxRetries}
}

// SubtopicsParams configures a bounded-retry subtopic generation call.
type SubtopicsParams struct {
	Model        string
	ModelOptions map[string]any

	// MacroTopic is the parent topic the subtopics should fall under
	MacroTopic string

	// NSubtopics is the number of subtopics requested
	NSubtopics int

	PromptTemplate string
	MaxRetries     int
	Diagnostics    io.Writer
}

// DefaultSubtopicsParams returns params with the default retry bound.
func DefaultSubtopicsParams() SubtopicsParams {
	return SubtopicsParams{MaxRetries: DefaultMaxRetries}
}

// MacroTopics generates a list of macro topics, retrying on conversion
// failures up to params.MaxRetries times. Each failed attempt emits one
// diagnostic line. If every attempt fails conversion the result is an empty
// list and a nil error; callers must check for emptiness. Any error other
// than a conversion failure aborts the loop and is returned as-is.
func MacroTopics(ctx context.Context, source TopicSource, params MacroTopicsParams) ([]string, error) {
	diag := params.Diagnostics
	if diag == nil {
		diag = os.Stderr
	}

	for attempt := 0; attempt < params.MaxRetries; attempt++ {
		responses, err := source.GenerateMacroTopics(ctx, MacroTopicsRequest{
			Model:          params.Model,
			ModelOptions:   params.ModelOptions,
			NTopics:        params.NTopics,
			PromptTemplate: params.PromptTemplate,
		})
		if err == nil {
			var topics []string
			topics, err = convertFirst(ctx, source, responses, ConversionRequest{
				Model:        params.Model,
				ModelOptions: params.ModelOptions,
			})
			if err == nil {
				return topics, nil
			}
		}

		if !IsConversionError(err) {
			return nil, err
		}
		fmt.Fprintf(diag, "hit: %v, retrying...\n", err)
	}

	return []string{}, nil
}

// Subtopics generates a list of subtopics for params.MacroTopic with the same
// retry contract as MacroTopics. Unlike the macro-topic variant, the model
// option mapping is not forwarded to the conversion call; conversion runs
// with model defaults.
func Subtopics(ctx context.Context, source TopicSource, params SubtopicsParams) ([]string, error) {
	diag := params.Diagnostics
	if diag == nil {
		diag = os.Stderr
	}

	for attempt := 0; attempt < params.MaxRetries; attempt++ {
		responses, err := source.GenerateSubtopics(ctx, SubtopicsRequest{
			Model:          params.Model,
			ModelOptions:   params.ModelOptions,
			MacroTopic:     params.MacroTopic,
			NSubtopics:     params.NSubtopics,
			PromptTemplate: params.PromptTemplate,
		})
		if err == nil {
			var topics []string
			topics, err = convertFirst(ctx, source, responses, ConversionRequest{
				Model: params.Model,
			})
			if err == nil {
				return topics, nil
			}
		}

		if !IsConversionError(err) {
			return nil, err
		}
		fmt.Fprintf(diag, "hit: %v, retrying...\n", err)
	}

	return []string{}, nil
}

// convertFirst normalizes the first element of a response collection.
func convertFirst(ctx context.Context, source TopicSource, responses []string, req ConversionRequest) ([]string, error) {
	if len(responses) == 0 {
		return nil, fmt.Errorf("%w: generation returned an empty response collection", ErrInvalidRequest)
	}
	req.Response = responses[0]
	return source.ConvertResponseToList(ctx, req)
}

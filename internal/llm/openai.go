package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIClient implements the Client interface using OpenAI's API.
// A BaseURL override makes it usable against any OpenAI-compatible
// endpoint (build.nvidia.com, vLLM, ...).
type OpenAIClient struct {
	client openai.Client
}

// OpenAIConfig holds connection settings for the OpenAI client.
type OpenAIConfig struct {
	// APIKey is the authentication key; falls back to OPENAI_API_KEY
	APIKey string

	// BaseURL overrides the API endpoint (empty = api.openai.com)
	BaseURL string
}

// NewOpenAIClient creates an OpenAI-backed client.
// Returns an error if the API key is missing.
func NewOpenAIClient(config OpenAIConfig) (*OpenAIClient, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key (set OPENAI_API_KEY or provide in config)", ErrInvalidConfig)
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &OpenAIClient{client: openai.NewClient(opts...)}, nil
}

// Complete sends the prompt to the model and returns the generated text.
func (o *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if req.Model == "" {
		return "", fmt.Errorf("%w: missing model name", ErrInvalidConfig)
	}
	if req.Prompt == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", ErrInvalidConfig)
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}

	reqOpts := applyOptions(&params, req.Options)

	completion, err := o.client.Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLLMFailed, err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no response generated", ErrLLMFailed)
	}

	return completion.Choices[0].Message.Content, nil
}

// applyOptions maps the well-known option keys onto typed request params.
// Anything else is forwarded verbatim in the request body so provider-specific
// knobs still reach the endpoint.
func applyOptions(params *openai.ChatCompletionNewParams, options map[string]any) []option.RequestOption {
	var reqOpts []option.RequestOption

	for key, value := range options {
		switch key {
		case "temperature":
			if v, ok := asFloat(value); ok {
				params.Temperature = openai.Float(v)
				continue
			}
		case "top_p":
			if v, ok := asFloat(value); ok {
				params.TopP = openai.Float(v)
				continue
			}
		case "max_tokens":
			if v, ok := asInt(value); ok {
				params.MaxTokens = openai.Int(v)
				continue
			}
		case "seed":
			if v, ok := asInt(value); ok {
				params.Seed = openai.Int(v)
				continue
			}
		case "frequency_penalty":
			if v, ok := asFloat(value); ok {
				params.FrequencyPenalty = openai.Float(v)
				continue
			}
		case "presence_penalty":
			if v, ok := asFloat(value); ok {
				params.PresencePenalty = openai.Float(v)
				continue
			}
		case "stop":
			switch s := value.(type) {
			case string:
				params.Stop = openai.ChatCompletionNewParamsStopUnion{OfString: openai.String(s)}
				continue
			case []string:
				params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: s}
				continue
			}
		}
		reqOpts = append(reqOpts, option.WithJSONSet(key, value))
	}

	return reqOpts
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}

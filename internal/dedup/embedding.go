// Package dedup filters near-duplicate topics out of generation output.
// Topics are embedded and checked against a vector store of everything
// accepted in earlier runs, so repeated pipeline invocations keep producing
// fresh training-data subjects instead of rephrasing old ones.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Common errors for embedding operations
var (
	ErrEmptyTopics     = errors.New("no topics provided for embedding")
	ErrMissingAPIKey   = errors.New("missing OpenAI API key (set OPENAI_API_KEY or provide in config)")
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// DefaultEmbeddingModel is used when EmbedderConfig leaves Model empty.
const DefaultEmbeddingModel = "text-embedding-3-small"

// Embedder turns topic strings into vectors. Embed returns one vector per
// topic, aligned with the input order.
type Embedder interface {
	Embed(ctx context.Context, topics []string) ([][]float32, error)
}

// EmbedderConfig holds settings for the OpenAI embedder.
type EmbedderConfig struct {
	// APIKey is the authentication key; falls back to OPENAI_API_KEY
	APIKey string

	// Model is the embedding model identifier (empty = DefaultEmbeddingModel)
	Model string

	// Dimension is the embedding vector dimension. It must match the
	// dimension of the topic store the vectors are indexed into.
	Dimension int
}

// OpenAIEmbedder implements Embedder using OpenAI's embeddings API.
type OpenAIEmbedder struct {
	client    openai.Client
	model     string
	dimension int
}

// NewOpenAIEmbedder creates an OpenAI-backed embedder.
func NewOpenAIEmbedder(config EmbedderConfig) (*OpenAIEmbedder, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config.Dimension <= 0 {
		return nil, ErrInvalidDimension
	}

	model := config.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	return &OpenAIEmbedder{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		dimension: config.Dimension,
	}, nil
}

// Embed generates one vector per topic, in input order. The API reports each
// embedding with its input index, so results are realigned explicitly rather
// than assumed ordered.
func (e *OpenAIEmbedder) Embed(ctx context.Context, topics []string) ([][]float32, error) {
	if len(topics) == 0 {
		return nil, ErrEmptyTopics
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: topics,
		},
		Model:          e.model,
		Dimensions:     openai.Int(int64(e.dimension)),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	vectors := make([][]float32, len(topics))
	for _, data := range resp.Data {
		if int(data.Index) >= len(vectors) {
			return nil, fmt.Errorf("%w: response index %d out of range for %d topics", ErrEmbeddingFailed, data.Index, len(topics))
		}

		vector := make([]float32, len(data.Embedding))
		for j, val := range data.Embedding {
			vector[j] = float32(val)
		}
		vectors[data.Index] = vector
	}

	for i, vector := range vectors {
		if vector == nil {
			return nil, fmt.Errorf("%w: no embedding returned for topic %q", ErrEmbeddingFailed, topics[i])
		}
	}

	return vectors, nil
}

package dedup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// Common errors for store operations
var (
	ErrInvalidDimension = errors.New("invalid vector dimension")
	ErrEmptyRecords     = errors.New("no records provided for insertion")
	ErrConnectionFailed = errors.New("failed to connect to Milvus")
	ErrInsertFailed     = errors.New("failed to insert records")
	ErrSearchFailed     = errors.New("failed to search vectors")
)

// TopicRecord is one stored topic with its embedding and provenance.
type TopicRecord struct {
	Topic string

	// Parent is the macro topic this record was generated under
	// (empty for macro topics themselves).
	Parent string

	// BatchID groups records indexed by the same run.
	BatchID string

	Vector    []float32
	CreatedAt time.Time
}

// Neighbor is a similarity-search hit.
type Neighbor struct {
	Topic  string  `json:"topic"`
	Parent string  `json:"parent,omitempty"`
	Score  float32 `json:"score"` // Cosine similarity (1.0 = identical)
}

// TopicStore defines the interface for topic vector storage and similarity search.
type TopicStore interface {
	// Insert adds topic records to the store
	Insert(ctx context.Context, records []TopicRecord) error

	// Search performs top-K cosine similarity search against stored topics
	Search(ctx context.Context, vector []float32, topK int) ([]Neighbor, error)

	// Query reports which of the given topic strings are already stored
	Query(ctx context.Context, topics []string) (map[string]bool, error)

	// Delete removes records matching the given topic strings
	Delete(ctx context.Context, topics []string) error

	// Stats returns collection statistics
	Stats(ctx context.Context) (map[string]interface{}, error)

	// Close releases resources and closes connections
	Close() error
}

// StoreConfig holds configuration for the Milvus connection and collection
type StoreConfig struct {
	Address        string // Milvus server address (e.g., "localhost:19530")
	CollectionName string // Name of the collection
	Dimension      int    // Vector dimension (e.g., 1536 for text-embedding-3-small)

	// HNSW index parameters
	M              int
	EfConstruction int
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// DefaultStoreConfig returns default configuration from environment variables
func DefaultStoreConfig() StoreConfig {
	address := envOr("MILVUS_ADDRESS", "localhost:19530")
	collection := envOr("MILVUS_COLLECTION", "topicforge_topics")

	return StoreConfig{
		Address:        address,
		CollectionName: collection,
		Dimension:      1536, // Default for text-embedding-3-small
		M:              16,
		EfConstruction: 256,
	}
}

// MilvusStore implements TopicStore using Milvus
type MilvusStore struct {
	client client.Client
	config StoreConfig
}

// NewMilvusStore connects to Milvus and ensures the topic collection exists.
func NewMilvusStore(ctx context.Context, config StoreConfig) (*MilvusStore, error) {
	if config.Dimension <= 0 {
		return nil, ErrInvalidDimension
	}

	c, err := client.NewGrpcClient(ctx, config.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &MilvusStore{
		client: c,
		config: config,
	}

	if err := store.ensureCollection(ctx); err != nil {
		c.Close()
		return nil, err
	}

	return store, nil
}

// ensureCollection creates the collection with schema if it doesn't exist
func (m *MilvusStore) ensureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.config.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if has {
		return nil
	}

	schema := &entity.Schema{
		CollectionName: m.config.CollectionName,
		AutoID:         true,
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     true,
			},
			{
				Name:     "topic",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "1024",
				},
			},
			{
				Name:     "parent",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "1024",
				},
			},
			{
				Name:     "batch_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.config.Dimension),
				},
			},
			{
				Name:     "created_at",
				DataType: entity.FieldTypeInt64, // Unix timestamp
			},
		},
	}

	if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexHNSW(entity.COSINE, m.config.M, m.config.EfConstruction)
	if err != nil {
		return fmt.Errorf("failed to create index config: %w", err)
	}

	if err := m.client.CreateIndex(ctx, m.config.CollectionName, "embedding", idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	if err := m.client.LoadCollection(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	return nil
}

// Insert adds topic records to Milvus
func (m *MilvusStore) Insert(ctx context.Context, records []TopicRecord) error {
	if len(records) == 0 {
		return ErrEmptyRecords
	}

	topics := make([]string, len(records))
	parents := make([]string, len(records))
	batchIDs := make([]string, len(records))
	embeddings := make([][]float32, len(records))
	createdAts := make([]int64, len(records))

	for i, record := range records {
		if len(record.Vector) != m.config.Dimension {
			return fmt.Errorf("%w: record %d has dimension %d, expected %d",
				ErrInvalidDimension, i, len(record.Vector), m.config.Dimension)
		}
		topics[i] = record.Topic
		parents[i] = record.Parent
		batchIDs[i] = record.BatchID
		embeddings[i] = record.Vector
		createdAt := record.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		createdAts[i] = createdAt.Unix()
	}

	columns := []entity.Column{
		entity.NewColumnVarChar("topic", topics),
		entity.NewColumnVarChar("parent", parents),
		entity.NewColumnVarChar("batch_id", batchIDs),
		entity.NewColumnFloatVector("embedding", m.config.Dimension, embeddings),
		entity.NewColumnInt64("created_at", createdAts),
	}

	if _, err := m.client.Insert(ctx, m.config.CollectionName, "", columns...); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	if err := m.client.Flush(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to flush data: %w", err)
	}

	return nil
}

// Search performs top-K cosine similarity search against stored topics
func (m *MilvusStore) Search(ctx context.Context, vector []float32, topK int) ([]Neighbor, error) {
	if len(vector) != m.config.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(vector))
	}

	sp, err := entity.NewIndexHNSWSearchParam(64) // ef parameter for search
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %w", err)
	}

	vectors := []entity.Vector{entity.FloatVector(vector)}
	outputFields := []string{"topic", "parent"}

	results, err := m.client.Search(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		"",
		outputFields,
		vectors,
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	if len(results) == 0 {
		return []Neighbor{}, nil
	}

	neighbors := make([]Neighbor, 0, results[0].ResultCount)

	for i := 0; i < results[0].ResultCount; i++ {
		neighbor := Neighbor{
			Score: results[0].Scores[i],
		}

		for _, field := range results[0].Fields {
			switch field.Name() {
			case "topic":
				neighbor.Topic = field.(*entity.ColumnVarChar).Data()[i]
			case "parent":
				neighbor.Parent = field.(*entity.ColumnVarChar).Data()[i]
			}
		}

		neighbors = append(neighbors, neighbor)
	}

	return neighbors, nil
}

// topicFilterExpr builds a Milvus filter expression matching any of the given
// topic strings. Quotes and backslashes are escaped so topic text cannot break
// out of the string literal.
func topicFilterExpr(topics []string) string {
	terms := make([]string, len(topics))
	for i, topic := range topics {
		escaped := strings.ReplaceAll(topic, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		terms[i] = fmt.Sprintf(`topic == "%s"`, escaped)
	}
	return strings.Join(terms, " or ")
}

// Query reports which of the given topic strings are already stored
func (m *MilvusStore) Query(ctx context.Context, topics []string) (map[string]bool, error) {
	if len(topics) == 0 {
		return map[string]bool{}, nil
	}

	results, err := m.client.Query(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		topicFilterExpr(topics),
		[]string{"topic"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}

	existence := make(map[string]bool, len(topics))
	for _, topic := range topics {
		existence[topic] = false
	}

	for _, column := range results {
		if column.Name() != "topic" {
			continue
		}
		if varcharCol, ok := column.(*entity.ColumnVarChar); ok {
			for _, topic := range varcharCol.Data() {
				existence[topic] = true
			}
		}
	}

	return existence, nil
}

// Delete removes records matching the given topic strings
func (m *MilvusStore) Delete(ctx context.Context, topics []string) error {
	if len(topics) == 0 {
		return nil
	}

	if err := m.client.Delete(ctx, m.config.CollectionName, "", topicFilterExpr(topics)); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	return nil
}

// Stats returns collection statistics
func (m *MilvusStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.config.CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return map[string]interface{}{
		"row_count": stats["row_count"],
	}, nil
}

// Close releases resources and closes the Milvus connection
func (m *MilvusStore) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

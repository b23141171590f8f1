package dedup

import (
	"context"
	"fmt"
	"math"
	"time"
)

// DefaultThreshold is the cosine-similarity score above which two topics are
// considered duplicates.
const DefaultThreshold float32 = 0.9

// Deduper filters near-duplicate topics using an embedder and a topic store.
// All records it indexes share one batch id, so the rows contributed by a
// single run can be traced or cleaned up together.
type Deduper struct {
	embedder Embedder
	store    TopicStore
	batchID  string
}

// NewDeduper creates a Deduper over the given embedder and store.
func NewDeduper(embedder Embedder, store TopicStore) (*Deduper, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("topic store cannot be nil")
	}

	return &Deduper{
		embedder: embedder,
		store:    store,
		batchID:  fmt.Sprintf("run-%d", time.Now().UnixNano()),
	}, nil
}

// BatchID returns the batch identifier stamped on records this Deduper indexes.
func (d *Deduper) BatchID() string {
	return d.batchID
}

// Filter returns the topics whose nearest stored neighbor scores below the
// threshold, preserving input order. A topic that duplicates an earlier topic
// in the same batch is dropped as well, so the returned slice is internally
// deduplicated too. A threshold <= 0 selects DefaultThreshold.
func (d *Deduper) Filter(ctx context.Context, topics []string, threshold float32) ([]string, error) {
	if len(topics) == 0 {
		return []string{}, nil
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	vectors, err := d.embedder.Embed(ctx, topics)
	if err != nil {
		return nil, fmt.Errorf("failed to embed topics: %w", err)
	}
	if len(vectors) != len(topics) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d topics", len(vectors), len(topics))
	}

	kept := make([]string, 0, len(topics))
	keptVectors := make([][]float32, 0, len(topics))

	for i, topic := range topics {
		neighbors, err := d.store.Search(ctx, vectors[i], 1)
		if err != nil {
			return nil, fmt.Errorf("failed to search stored topics: %w", err)
		}
		if len(neighbors) > 0 && neighbors[0].Score >= threshold {
			continue
		}

		duplicate := false
		for _, v := range keptVectors {
			if CosineSimilarity(vectors[i], v) >= threshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		kept = append(kept, topic)
		keptVectors = append(keptVectors, vectors[i])
	}

	return kept, nil
}

// Add embeds the topics and indexes them in the store under the given parent.
// Topics already present in the store (exact match) are skipped, so re-running
// a pipeline never inserts duplicate rows even when Filter was bypassed.
func (d *Deduper) Add(ctx context.Context, topics []string, parent string) error {
	if len(topics) == 0 {
		return nil
	}

	existing, err := d.store.Query(ctx, topics)
	if err != nil {
		return fmt.Errorf("failed to query stored topics: %w", err)
	}

	fresh := make([]string, 0, len(topics))
	for _, topic := range topics {
		if existing[topic] {
			continue
		}
		fresh = append(fresh, topic)
		existing[topic] = true // skip repeats within this call
	}
	if len(fresh) == 0 {
		return nil
	}

	vectors, err := d.embedder.Embed(ctx, fresh)
	if err != nil {
		return fmt.Errorf("failed to embed topics: %w", err)
	}
	if len(vectors) != len(fresh) {
		return fmt.Errorf("embedder returned %d vectors for %d topics", len(vectors), len(fresh))
	}

	records := make([]TopicRecord, len(fresh))
	for i, topic := range fresh {
		records[i] = TopicRecord{
			Topic:   topic,
			Parent:  parent,
			BatchID: d.batchID,
			Vector:  vectors[i],
		}
	}

	if err := d.store.Insert(ctx, records); err != nil {
		return fmt.Errorf("failed to index topics: %w", err)
	}

	return nil
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 for mismatched lengths or zero vectors.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

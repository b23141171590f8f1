// Package pipeline runs the full topic generation flow: macro topics first,
// then subtopics for each, with optional near-duplicate filtering between the
// two stages.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/curate-labs/topicforge/internal/synth"
)

// Filterer filters near-duplicate topics and indexes accepted ones.
// *dedup.Deduper is the production implementation.
type Filterer interface {
	Filter(ctx context.Context, topics []string, threshold float32) ([]string, error)
	Add(ctx context.Context, topics []string, parent string) error
}

// Config controls one pipeline run.
type Config struct {
	Model        string
	ModelOptions map[string]any

	// NMacroTopics is the number of macro topics to request
	NMacroTopics int

	// NSubtopics is the number of subtopics to request per macro topic
	NSubtopics int

	// MaxRetries bounds each generation call's conversion retry loop
	MaxRetries int

	// Diagnostics receives retry diagnostics (default os.Stderr)
	Diagnostics io.Writer

	// Dedup, when set, filters generated topics against previously indexed
	// ones and indexes everything this run accepts.
	Dedup Filterer

	// Threshold is the similarity cutoff used with Dedup (<= 0 = default)
	Threshold float32
}

// DefaultConfig returns a pipeline configuration with the default retry bound.
func DefaultConfig() Config {
	return Config{
		NMacroTopics: 10,
		NSubtopics:   5,
		MaxRetries:   synth.DefaultMaxRetries,
	}
}

// Branch is one macro topic with its generated subtopics.
type Branch struct {
	MacroTopic string   `json:"macro_topic"`
	Subtopics  []string `json:"subtopics"`
}

// TopicTree is the result of a pipeline run.
type TopicTree struct {
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
	Branches    []Branch  `json:"branches"`
}

// TotalTopics counts the macro topics plus all subtopics in the tree.
func (t *TopicTree) TotalTopics() int {
	total := len(t.Branches)
	for _, b := range t.Branches {
		total += len(b.Subtopics)
	}
	return total
}

// Run generates macro topics, then subtopics under each. A branch whose
// subtopic generation exhausts its retries ends up with an empty subtopic
// list; the run continues with the remaining branches. Non-conversion errors
// abort the run.
func Run(ctx context.Context, source synth.TopicSource, cfg Config) (*TopicTree, error) {
	if source == nil {
		return nil, fmt.Errorf("topic source is required")
	}
	if cfg.NMacroTopics <= 0 {
		return nil, fmt.Errorf("macro topic count must be positive, got %d", cfg.NMacroTopics)
	}
	if cfg.NSubtopics <= 0 {
		return nil, fmt.Errorf("subtopic count must be positive, got %d", cfg.NSubtopics)
	}

	macroTopics, err := synth.MacroTopics(ctx, source, synth.MacroTopicsParams{
		Model:        cfg.Model,
		ModelOptions: cfg.ModelOptions,
		NTopics:      cfg.NMacroTopics,
		MaxRetries:   cfg.MaxRetries,
		Diagnostics:  cfg.Diagnostics,
	})
	if err != nil {
		return nil, fmt.Errorf("macro topic generation failed: %w", err)
	}

	if cfg.Dedup != nil {
		macroTopics, err = cfg.Dedup.Filter(ctx, macroTopics, cfg.Threshold)
		if err != nil {
			return nil, fmt.Errorf("macro topic dedup failed: %w", err)
		}
		if err := cfg.Dedup.Add(ctx, macroTopics, ""); err != nil {
			return nil, fmt.Errorf("failed to index macro topics: %w", err)
		}
	}

	tree := &TopicTree{
		Model:       cfg.Model,
		GeneratedAt: time.Now(),
		Branches:    make([]Branch, 0, len(macroTopics)),
	}

	for _, macroTopic := range macroTopics {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline cancelled: %w", err)
		}

		subtopics, err := synth.Subtopics(ctx, source, synth.SubtopicsParams{
			Model:        cfg.Model,
			ModelOptions: cfg.ModelOptions,
			MacroTopic:   macroTopic,
			NSubtopics:   cfg.NSubtopics,
			MaxRetries:   cfg.MaxRetries,
			Diagnostics:  cfg.Diagnostics,
		})
		if err != nil {
			return nil, fmt.Errorf("subtopic generation for %q failed: %w", macroTopic, err)
		}

		if cfg.Dedup != nil && len(subtopics) > 0 {
			subtopics, err = cfg.Dedup.Filter(ctx, subtopics, cfg.Threshold)
			if err != nil {
				return nil, fmt.Errorf("subtopic dedup for %q failed: %w", macroTopic, err)
			}
			if err := cfg.Dedup.Add(ctx, subtopics, macroTopic); err != nil {
				return nil, fmt.Errorf("failed to index subtopics of %q: %w", macroTopic, err)
			}
		}

		tree.Branches = append(tree.Branches, Branch{
			MacroTopic: macroTopic,
			Subtopics:  subtopics,
		})
	}

	return tree, nil
}

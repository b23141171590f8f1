package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/curate-labs/topicforge/internal/dedup"
	"github.com/curate-labs/topicforge/internal/pipeline"
	"github.com/curate-labs/topicforge/internal/synth"
	"github.com/spf13/cobra"
)

var (
	pipeMacros     int
	pipeSubtopics  int
	pipeModel      string
	pipeRetries    int
	pipeTemp       float64
	pipeDedup      bool
	pipeThreshold  float64
	pipeEmbedModel string
	pipeExport     string
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Generate a full macro topic / subtopic tree",
	Long: `Run the full generation pipeline: macro topics first, then subtopics
under each macro topic.

With --dedup, generated topics are embedded and checked against a Milvus
collection of topics from previous runs; near-duplicates are dropped and
accepted topics are indexed for the next run.

Required environment variables:
  OPENAI_API_KEY   - API key for the model endpoint
  MILVUS_ADDRESS   - Milvus server address, only with --dedup (default: localhost:19530)

Examples:
  topicforge pipeline --macros 10 --subtopics 5
  topicforge pipeline --macros 20 --subtopics 10 --dedup --threshold 0.85
  topicforge pipeline --macros 10 --subtopics 5 --export topics.json`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.Flags().IntVar(&pipeMacros, "macros", 10, "Number of macro topics to generate")
	pipelineCmd.Flags().IntVar(&pipeSubtopics, "subtopics", 5, "Number of subtopics per macro topic")
	pipelineCmd.Flags().StringVar(&pipeModel, "model", "gpt-4o", "Model identifier")
	pipelineCmd.Flags().IntVar(&pipeRetries, "retries", synth.DefaultMaxRetries, "Maximum conversion retry attempts per call")
	pipelineCmd.Flags().Float64Var(&pipeTemp, "temperature", 0, "Sampling temperature (0 = model default)")
	pipelineCmd.Flags().BoolVar(&pipeDedup, "dedup", false, "Filter near-duplicate topics via Milvus")
	pipelineCmd.Flags().Float64Var(&pipeThreshold, "threshold", float64(dedup.DefaultThreshold), "Similarity threshold for --dedup")
	pipelineCmd.Flags().StringVar(&pipeEmbedModel, "embedding-model", dedup.DefaultEmbeddingModel, "Embedding model for --dedup")
	pipelineCmd.Flags().StringVar(&pipeExport, "export", "", "Export the topic tree to a JSON file")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	source, err := newTopicSource()
	if err != nil {
		return err
	}

	cfg := pipeline.Config{
		Model:        pipeModel,
		ModelOptions: modelOptions(pipeTemp),
		NMacroTopics: pipeMacros,
		NSubtopics:   pipeSubtopics,
		MaxRetries:   pipeRetries,
		Threshold:    float32(pipeThreshold),
	}

	if pipeDedup {
		storeConfig := dedup.DefaultStoreConfig()

		embedder, err := dedup.NewOpenAIEmbedder(dedup.EmbedderConfig{
			Model:     pipeEmbedModel,
			Dimension: storeConfig.Dimension,
		})
		if err != nil {
			return fmt.Errorf("failed to create embedder: %w", err)
		}

		store, err := dedup.NewMilvusStore(ctx, storeConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to topic store: %w", err)
		}
		defer store.Close()

		deduper, err := dedup.NewDeduper(embedder, store)
		if err != nil {
			return err
		}
		cfg.Dedup = deduper
	}

	tree, err := pipeline.Run(ctx, source, cfg)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	if pipeExport != "" {
		if err := exportTree(tree, pipeExport); err != nil {
			return err
		}
	}

	printTree(tree)
	return nil
}

func exportTree(tree *pipeline.TopicTree, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tree); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("✓ Exported %d topics to %s\n", tree.TotalTopics(), filename)
	return nil
}

func printTree(tree *pipeline.TopicTree) {
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F780FF")).
		Bold(true)

	macroStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#8BE9FD")).
		Bold(true)

	subStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E9E9F4"))

	mutedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6272A4")).
		Italic(true)

	fmt.Println()
	fmt.Println(headerStyle.Render(fmt.Sprintf("Topic tree (%s, %d topics)", tree.Model, tree.TotalTopics())))
	fmt.Println()

	for _, branch := range tree.Branches {
		fmt.Println(macroStyle.Render(branch.MacroTopic))
		if len(branch.Subtopics) == 0 {
			fmt.Println(mutedStyle.Render("  (no subtopics generated)"))
			continue
		}
		for _, subtopic := range branch.Subtopics {
			fmt.Println(subStyle.Render("  - " + subtopic))
		}
	}
	fmt.Println()
}

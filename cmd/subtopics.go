package cmd

import (
	"context"
	"fmt"

	"github.com/curate-labs/topicforge/internal/synth"
	"github.com/spf13/cobra"
)

var (
	subCount    int
	subModel    string
	subRetries  int
	subTemp     float64
	subTemplate string
	subJSON     bool
)

var subtopicsCmd = &cobra.Command{
	Use:   "subtopics [macro topic]",
	Short: "Generate subtopics of a macro topic",
	Long: `Generate a list of subtopics nested under the given macro topic.

The model's free-form answer is normalized into a clean list of strings; if
that normalization fails, the call is retried up to --retries times. An empty
result means every attempt failed.

Required environment variables:
  OPENAI_API_KEY   - API key for the model endpoint

Examples:
  topicforge subtopics "Machine learning" --n 5
  topicforge subtopics "Cooking" --n 10 --model gpt-4o --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSubtopics,
}

func init() {
	rootCmd.AddCommand(subtopicsCmd)
	subtopicsCmd.Flags().IntVar(&subCount, "n", 5, "Number of subtopics to generate")
	subtopicsCmd.Flags().StringVar(&subModel, "model", "gpt-4o", "Model identifier")
	subtopicsCmd.Flags().IntVar(&subRetries, "retries", synth.DefaultMaxRetries, "Maximum conversion retry attempts")
	subtopicsCmd.Flags().Float64Var(&subTemp, "temperature", 0, "Sampling temperature (0 = model default)")
	subtopicsCmd.Flags().StringVar(&subTemplate, "template-file", "", "File containing a custom prompt template")
	subtopicsCmd.Flags().BoolVar(&subJSON, "json", false, "Print the topic list as JSON")
}

func runSubtopics(cmd *cobra.Command, args []string) error {
	macroTopic := args[0]
	ctx := context.Background()

	source, err := newTopicSource()
	if err != nil {
		return err
	}

	template, err := loadTemplate(subTemplate)
	if err != nil {
		return err
	}

	params := synth.SubtopicsParams{
		Model:          subModel,
		ModelOptions:   modelOptions(subTemp),
		MacroTopic:     macroTopic,
		NSubtopics:     subCount,
		PromptTemplate: template,
		MaxRetries:     subRetries,
	}

	topics, err := synth.Subtopics(ctx, source, params)
	if err != nil {
		return fmt.Errorf("subtopic generation failed: %w", err)
	}

	return printTopics(fmt.Sprintf("Subtopics of %q (%s)", macroTopic, subModel), topics, subJSON)
}

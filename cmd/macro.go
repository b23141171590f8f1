package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/curate-labs/topicforge/internal/llm"
	"github.com/curate-labs/topicforge/internal/synth"
	"github.com/spf13/cobra"
)

var (
	macroCount    int
	macroModel    string
	macroRetries  int
	macroTemp     float64
	macroTemplate string
	macroJSON     bool
)

var macroCmd = &cobra.Command{
	Use:   "macro",
	Short: "Generate broad macro topics",
	Long: `Generate a list of broad macro topics using a language model.

The model's free-form answer is normalized into a clean list of strings; if
that normalization fails, the call is retried up to --retries times. An empty
result means every attempt failed.

Required environment variables:
  OPENAI_API_KEY   - API key for the model endpoint

Examples:
  topicforge macro --n 10
  topicforge macro --n 25 --model gpt-4o --temperature 0.8
  topicforge macro --n 10 --template-file prompts/macro.txt --json`,
	Args: cobra.NoArgs,
	RunE: runMacro,
}

func init() {
	rootCmd.AddCommand(macroCmd)
	macroCmd.Flags().IntVar(&macroCount, "n", 10, "Number of macro topics to generate")
	macroCmd.Flags().StringVar(&macroModel, "model", "gpt-4o", "Model identifier")
	macroCmd.Flags().IntVar(&macroRetries, "retries", synth.DefaultMaxRetries, "Maximum conversion retry attempts")
	macroCmd.Flags().Float64Var(&macroTemp, "temperature", 0, "Sampling temperature (0 = model default)")
	macroCmd.Flags().StringVar(&macroTemplate, "template-file", "", "File containing a custom prompt template")
	macroCmd.Flags().BoolVar(&macroJSON, "json", false, "Print the topic list as JSON")
}

func runMacro(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	source, err := newTopicSource()
	if err != nil {
		return err
	}

	template, err := loadTemplate(macroTemplate)
	if err != nil {
		return err
	}

	params := synth.MacroTopicsParams{
		Model:          macroModel,
		ModelOptions:   modelOptions(macroTemp),
		NTopics:        macroCount,
		PromptTemplate: template,
		MaxRetries:     macroRetries,
	}

	topics, err := synth.MacroTopics(ctx, source, params)
	if err != nil {
		return fmt.Errorf("macro topic generation failed: %w", err)
	}

	return printTopics(fmt.Sprintf("Macro topics (%s)", macroModel), topics, macroJSON)
}

// newTopicSource builds the production generator from the environment.
func newTopicSource() (synth.TopicSource, error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
	})
	if err != nil {
		return nil, err
	}

	return synth.NewGenerator(client)
}

// modelOptions maps CLI flags to the option mapping sent to the model.
func modelOptions(temperature float64) map[string]any {
	if temperature <= 0 {
		return nil
	}
	return map[string]any{"temperature": temperature}
}

// loadTemplate reads a prompt template file; empty path means package default.
func loadTemplate(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template file: %w", err)
	}
	return string(data), nil
}

// printTopics renders a topic list, styled or as JSON.
func printTopics(header string, topics []string, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(topics)
	}

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F780FF")).
		Bold(true)

	topicStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E9E9F4"))

	warnStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF5555")).
		Bold(true)

	fmt.Println()
	fmt.Println(headerStyle.Render(header))

	if len(topics) == 0 {
		fmt.Println(warnStyle.Render("No topics generated (all conversion attempts failed)"))
		return nil
	}

	for i, topic := range topics {
		fmt.Println(topicStyle.Render(fmt.Sprintf("%2d. %s", i+1, topic)))
	}
	fmt.Println()

	return nil
}

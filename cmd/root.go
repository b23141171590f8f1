package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "topicforge",
	Short: "Topicforge - Synthetic topic generation tool",
	Long: `Topicforge generates synthetic training-data topics with a language model.

It produces broad macro topics and per-topic subtopics, normalizes free-form
model output into clean topic lists, retries transient conversion failures,
and can filter near-duplicate topics against previous runs.`,
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

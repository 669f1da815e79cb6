package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reverse-prompt",
	Short: "A CLI tool for reconstructing natural language prompts from images",
	Long: `Reverse Prompt analyzes images of people and reconstructs the kind of
natural language prompt that could have produced them. It combines a local
face detector, a demographic attribute model and a general classifier
(CLIP scoring sidecar, OpenAI or Gemini) into a fixed prompt sentence,
built for auditing demographic skew in image generation models.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/reverse-prompt/internal/taxonomy"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List the categories and candidate labels",
	Long: `Print every category the pipeline resolves, in resolution order, with
its candidate labels and the hypothesis template used for CLIP scoring.`,
	RunE: runLabels,
}

func init() {
	rootCmd.AddCommand(labelsCmd)

	labelsCmd.Flags().Bool("json", false, "Output as JSON")
}

func runLabels(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	type categoryOutput struct {
		Name       string   `json:"name"`
		Hypothesis string   `json:"hypothesis"`
		Candidates []string `json:"candidates"`
	}

	var out []categoryOutput
	for _, spec := range taxonomy.Categories() {
		out = append(out, categoryOutput{
			Name:       string(spec.Name),
			Hypothesis: spec.Hypothesis,
			Candidates: spec.Candidates,
		})
	}

	if jsonOutput {
		return outputJSON(out)
	}

	for _, category := range out {
		fmt.Printf("%s (%q)\n", category.Name, category.Hypothesis)
		for _, candidate := range category.Candidates {
			fmt.Printf("  - %s\n", candidate)
		}
		fmt.Println()
	}
	return nil
}

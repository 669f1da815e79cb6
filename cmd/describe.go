package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/reverse-prompt/internal/config"
	"github.com/kozaktomas/reverse-prompt/internal/store"
	"github.com/kozaktomas/reverse-prompt/internal/store/postgres"
	"github.com/kozaktomas/reverse-prompt/internal/taxonomy"
)

var describeCmd = &cobra.Command{
	Use:   "describe <image>",
	Short: "Reconstruct a prompt for a single image",
	Long: `Run the full pipeline on a single image and print the reconstructed
prompt together with the resolved tags.

Examples:
  # Print the prompt
  reverse-prompt describe photo.jpg

  # Full result as JSON
  reverse-prompt describe photo.jpg --json

  # Persist the run (requires DATABASE_URL)
  reverse-prompt describe photo.jpg --save`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().Bool("json", false, "Output as JSON")
	describeCmd.Flags().Bool("save", false, "Persist the run to the database")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	save := mustGetBool(cmd, "save")

	ctx := context.Background()
	cfg := config.Load()

	p, cleanup, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := p.DescribeFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to describe %s: %w", args[0], err)
	}

	if save {
		run := &store.Run{
			ImageName:       filepath.Base(args[0]),
			Prompt:          result.Prompt,
			Tags:            result.Tags,
			FaceFound:       result.FaceFound,
			DemographicUsed: result.DemographicUsed,
		}
		if err := persistRun(ctx, cfg, run); err != nil {
			return err
		}
	}

	if jsonOutput {
		return outputJSON(result)
	}

	fmt.Println(result.Prompt)
	fmt.Println()
	for _, spec := range taxonomy.Categories() {
		fmt.Printf("  %-10s %s\n", spec.Name, result.Tags[spec.Name])
	}
	if result.FaceFound {
		source := "general classifier"
		if result.DemographicUsed {
			source = "demographic model"
		}
		fmt.Printf("\nFace found, demographics via %s\n", source)
	} else {
		fmt.Println("\nNo face found")
	}
	return nil
}

// persistRun opens the configured database, applies pending migrations and
// stores one run.
func persistRun(ctx context.Context, cfg *config.Config, run *store.Run) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required for --save")
	}

	pool, err := postgres.NewPool(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := postgres.NewRunRepository(pool).Save(ctx, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

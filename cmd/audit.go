package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/reverse-prompt/internal/config"
	"github.com/kozaktomas/reverse-prompt/internal/pipeline"
	"github.com/kozaktomas/reverse-prompt/internal/store"
	"github.com/kozaktomas/reverse-prompt/internal/store/postgres"
	"github.com/kozaktomas/reverse-prompt/internal/taxonomy"
)

var auditCmd = &cobra.Command{
	Use:   "audit <directory>",
	Short: "Reconstruct prompts for a directory of images and tally the labels",
	Long: `Run the pipeline over every image in a directory and print how often each
label was assigned per category. The distribution makes demographic skew
in a generated image set directly visible.

Examples:
  # Audit a directory of generated images
  reverse-prompt audit ./generations

  # Use more workers and persist every run
  reverse-prompt audit ./generations --concurrency 8 --save

  # JSON output for further analysis
  reverse-prompt audit ./generations --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().Int("concurrency", 4, "Number of images processed in parallel")
	auditCmd.Flags().Bool("json", false, "Output as JSON")
	auditCmd.Flags().Bool("save", false, "Persist every run to the database")
}

// AuditResult represents the result of an audit run over a directory.
type AuditResult struct {
	Directory     string                    `json:"directory"`
	TotalImages   int                       `json:"total_images"`
	Described     int                       `json:"described"`
	Failed        int                       `json:"failed"`
	SaveFailed    int                       `json:"save_failed"`
	FacesFound    int                       `json:"faces_found"`
	Demographic   int                       `json:"demographic_used"`
	Distributions map[string]map[string]int `json:"distributions"`
	Prompts       map[string]string         `json:"prompts,omitempty"`
	DurationMs    int64                     `json:"duration_ms"`
}

// recordRun folds one described image into the audit result. A storage
// failure is counted on its own, the description itself still stands.
// Callers must hold the result lock.
func (r *AuditResult) recordRun(name string, res *pipeline.Result, saveErr error) {
	if saveErr != nil {
		r.SaveFailed++
	}
	r.Described++
	if res.FaceFound {
		r.FacesFound++
	}
	if res.DemographicUsed {
		r.Demographic++
	}
	for category, label := range res.Tags {
		r.Distributions[string(category)][label]++
	}
	r.Prompts[name] = res.Prompt
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// listImages returns image files directly inside dir, sorted by name.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(images)
	return images, nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	concurrency := mustGetInt(cmd, "concurrency")
	jsonOutput := mustGetBool(cmd, "json")
	save := mustGetBool(cmd, "save")
	if concurrency < 1 {
		concurrency = 1
	}

	ctx := context.Background()
	cfg := config.Load()
	startTime := time.Now()

	images, err := listImages(args[0])
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return fmt.Errorf("no images found in %s", args[0])
	}

	p, cleanup, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var runs store.RunWriter
	if save {
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
		runs = postgres.NewRunRepository(pool)
	}

	result := AuditResult{
		Directory:     args[0],
		TotalImages:   len(images),
		Distributions: make(map[string]map[string]int),
		Prompts:       make(map[string]string),
	}
	for _, spec := range taxonomy.Categories() {
		result.Distributions[string(spec.Name)] = make(map[string]int)
	}

	var bar *progressbar.ProgressBar
	if !jsonOutput {
		bar = progressbar.NewOptions(len(images),
			progressbar.OptionSetDescription("Describing images"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("images"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	var mu sync.Mutex
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, path := range images {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			defer func() {
				if bar != nil {
					bar.Add(1)
				}
			}()

			res, err := p.DescribeFile(ctx, path)
			if err != nil {
				mu.Lock()
				result.Failed++
				mu.Unlock()
				return
			}

			var saveErr error
			if runs != nil {
				run := &store.Run{
					ImageName:       filepath.Base(path),
					Prompt:          res.Prompt,
					Tags:            res.Tags,
					FaceFound:       res.FaceFound,
					DemographicUsed: res.DemographicUsed,
				}
				if saveErr = runs.Save(ctx, run); saveErr != nil {
					log.Printf("failed to save run for %s: %v", path, saveErr)
				}
			}

			mu.Lock()
			result.recordRun(filepath.Base(path), res, saveErr)
			mu.Unlock()
		}(path)
	}
	wg.Wait()

	result.DurationMs = time.Since(startTime).Milliseconds()

	if jsonOutput {
		return outputJSON(result)
	}

	printAuditSummary(result)
	return nil
}

func printAuditSummary(result AuditResult) {
	fmt.Printf("\n\nAudited %d images (%d described, %d failed)\n",
		result.TotalImages, result.Described, result.Failed)
	if result.SaveFailed > 0 {
		fmt.Printf("Runs that could not be persisted: %d\n", result.SaveFailed)
	}
	fmt.Printf("Faces found: %d, demographic model used: %d\n",
		result.FacesFound, result.Demographic)

	for _, spec := range taxonomy.Categories() {
		dist := result.Distributions[string(spec.Name)]
		if len(dist) == 0 {
			continue
		}

		labels := make([]string, 0, len(dist))
		for label := range dist {
			labels = append(labels, label)
		}
		sort.Slice(labels, func(i, j int) bool {
			if dist[labels[i]] != dist[labels[j]] {
				return dist[labels[i]] > dist[labels[j]]
			}
			return labels[i] < labels[j]
		})

		fmt.Printf("\n%s:\n", spec.Name)
		for _, label := range labels {
			count := dist[label]
			pct := float64(count) / float64(result.Described) * 100
			fmt.Printf("  %-20s %4d (%.1f%%)\n", label, count, pct)
		}
	}
}

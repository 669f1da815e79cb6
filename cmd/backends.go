package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/kozaktomas/reverse-prompt/internal/classify"
	"github.com/kozaktomas/reverse-prompt/internal/config"
	"github.com/kozaktomas/reverse-prompt/internal/pipeline"
	"github.com/kozaktomas/reverse-prompt/internal/vision"
)

// buildGeneralClassifier creates the classifier selected by
// CLASSIFIER_PROVIDER. The pipeline cannot run without one, so any
// wiring problem here is fatal.
func buildGeneralClassifier(ctx context.Context, cfg *config.Config) (classify.GeneralClassifier, error) {
	switch cfg.Classifier.Provider {
	case "clip":
		return classify.NewCLIPClassifier(classify.NewScoringClient(cfg.Scoring.URL)), nil
	case "openai":
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required for the openai provider")
		}
		return classify.NewOpenAIClassifier(cfg.OpenAI.Token), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is required for the gemini provider")
		}
		return classify.NewGeminiClassifier(ctx, cfg.Gemini.APIKey)
	default:
		return nil, fmt.Errorf("unknown classifier provider %q (expected clip, openai or gemini)", cfg.Classifier.Provider)
	}
}

// buildPipeline wires the full pipeline from configuration. Missing ONNX
// model paths degrade the corresponding stage instead of failing, a
// missing general classifier is an error. The returned cleanup releases
// the ONNX sessions.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	locator, err := vision.NewSSDFaceLocator(cfg.Models.FaceDetectorPath, cfg.Models.OrtLibraryPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load face detector: %w", err)
	}

	attributes, err := vision.NewAttributeNet(cfg.Models.AttributePath, cfg.Models.OrtLibraryPath)
	if err != nil {
		locator.Close()
		return nil, nil, fmt.Errorf("failed to load attribute model: %w", err)
	}

	general, err := buildGeneralClassifier(ctx, cfg)
	if err != nil {
		locator.Close()
		attributes.Close()
		return nil, nil, err
	}

	cleanup := func() {
		locator.Close()
		attributes.Close()
	}

	if cfg.Models.FaceDetectorPath == "" {
		fmt.Fprintln(os.Stderr, "FACE_DETECTOR_MODEL not set, running without face detection")
	}
	if cfg.Models.AttributePath == "" {
		fmt.Fprintln(os.Stderr, "ATTRIBUTE_MODEL not set, race and gender fall back to the general classifier")
	}

	return pipeline.New(locator, attributes, general), cleanup, nil
}

func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

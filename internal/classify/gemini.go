package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/kozaktomas/reverse-prompt/internal/imaging"
	"github.com/kozaktomas/reverse-prompt/internal/taxonomy"
)

const geminiModel = "gemini-2.5-flash"

// GeminiClassifier backs the general classifier with a Gemini vision
// model constrained to the candidate set.
type GeminiClassifier struct {
	client *genai.Client
}

// NewGeminiClassifier creates the Gemini backing.
func NewGeminiClassifier(ctx context.Context, apiKey string) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClassifier{client: client}, nil
}

// Name returns the backing name.
func (c *GeminiClassifier) Name() string {
	return geminiModel
}

// Classify asks the vision model to pick one candidate label.
func (c *GeminiClassifier) Classify(ctx context.Context, imageData []byte, category taxonomy.CategorySpec) (string, error) {
	const maxRetries = 3

	resized, err := imaging.ResizeBytes(imageData, maxRemoteImageSize)
	if err != nil {
		return "", fmt.Errorf("failed to resize image: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildChoicePrompt(category) + "\n\n" + fmt.Sprintf("Classify the %s of this photo.", category.Name)},
				{InlineData: &genai.Blob{Data: resized, MIMEType: "image/jpeg"}},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	}

	var lastAnswer string
	for range maxRetries {
		result, err := c.client.Models.GenerateContent(ctx, geminiModel, contents, config)
		if err != nil {
			return "", fmt.Errorf("gemini API error: %w", err)
		}

		content := result.Text()
		if content == "" {
			return "", errors.New("no response from Gemini")
		}
		lastAnswer = content

		var answer choiceAnswer
		if err := json.Unmarshal([]byte(content), &answer); err == nil {
			if label, ok := matchCandidate(answer.Label, category); ok {
				return label, nil
			}
		}

		contents = append(contents,
			&genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: content}},
			},
			&genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: "That is not one of the allowed labels. Answer with JSON {\"label\": ...} using exactly one label from the list."}},
			},
		)
	}

	return "", fmt.Errorf("no valid %s label after %d attempts (last answer: %s)", category.Name, maxRetries, lastAnswer)
}

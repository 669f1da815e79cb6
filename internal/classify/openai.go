package classify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/kozaktomas/reverse-prompt/internal/imaging"
	"github.com/kozaktomas/reverse-prompt/internal/taxonomy"
)

const openAIModel = openai.ChatModelGPT4_1Mini

// OpenAIClassifier backs the general classifier with an OpenAI vision
// model constrained to the candidate set.
type OpenAIClassifier struct {
	client *openai.Client
}

// NewOpenAIClassifier creates the OpenAI backing.
func NewOpenAIClassifier(apiKey string) *OpenAIClassifier {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClassifier{client: &client}
}

// Name returns the backing name.
func (c *OpenAIClassifier) Name() string {
	return openAIModel
}

// Classify asks the vision model to pick one candidate label. Answers
// outside the candidate set are retried with feedback; a persistent
// mismatch is an error, the general classifier must not guess.
func (c *OpenAIClassifier) Classify(ctx context.Context, imageData []byte, category taxonomy.CategorySpec) (string, error) {
	const maxRetries = 3

	resized, err := imaging.ResizeBytes(imageData, maxRemoteImageSize)
	if err != nil {
		return "", fmt.Errorf("failed to resize image: %w", err)
	}
	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(resized)

	messages := []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(buildChoicePrompt(category)),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						openai.TextContentPart(fmt.Sprintf("Classify the %s of this photo.", category.Name)),
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
							URL:    imageURL,
							Detail: "low",
						}),
					},
				},
			},
		},
	}

	var lastAnswer string
	for range maxRetries {
		resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    openAIModel,
			Messages: messages,
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
			Temperature: openai.Float(0),
			MaxTokens:   openai.Int(50),
		})
		if err != nil {
			return "", fmt.Errorf("OpenAI API error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("no response from OpenAI")
		}

		content := resp.Choices[0].Message.Content
		lastAnswer = content

		var answer choiceAnswer
		if err := json.Unmarshal([]byte(content), &answer); err == nil {
			if label, ok := matchCandidate(answer.Label, category); ok {
				return label, nil
			}
		}

		messages = append(messages,
			openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.String(content),
					},
				},
			},
			openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String("That is not one of the allowed labels. Answer with JSON {\"label\": ...} using exactly one label from the list."),
					},
				},
			},
		)
	}

	return "", fmt.Errorf("no valid %s label after %d attempts (last answer: %s)", category.Name, maxRetries, lastAnswer)
}

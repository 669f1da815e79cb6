package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"

	"github.com/kozaktomas/reverse-prompt/internal/taxonomy"
)

const (
	defaultScoringURL = "http://localhost:8000"

	// clipLogitScale scales cosine similarities into logits before the
	// softmax, matching the temperature CLIP was trained with.
	clipLogitScale = 100.0
)

// ScoringClient talks to the CLIP embedding sidecar.
type ScoringClient struct {
	baseURL string
	client  *http.Client

	mu       sync.Mutex
	textVecs map[string][]float32
}

// NewScoringClient creates a client for the embedding sidecar.
func NewScoringClient(baseURL string) *ScoringClient {
	if baseURL == "" {
		baseURL = defaultScoringURL
	}
	return &ScoringClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		client:   &http.Client{},
		textVecs: make(map[string][]float32),
	}
}

type embeddingResponse struct {
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	Model     string    `json:"model"`
}

// EmbedImage computes the image embedding via the sidecar.
func (c *ScoringClient) EmbedImage(ctx context.Context, imageData []byte) ([]float32, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed/image", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.doEmbedding(req)
}

type textEmbeddingRequest struct {
	Text string `json:"text"`
}

// EmbedText computes the text embedding for a hypothesis. Results are
// cached, hypothesis strings are fixed for the process lifetime.
func (c *ScoringClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	if vec, ok := c.textVecs[text]; ok {
		c.mu.Unlock()
		return vec, nil
	}
	c.mu.Unlock()

	reqBody, err := json.Marshal(textEmbeddingRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed/text", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	vec, err := c.doEmbedding(req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.textVecs[text] = vec
	c.mu.Unlock()
	return vec, nil
}

func (c *ScoringClient) doEmbedding(req *http.Request) ([]float32, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(embResp.Embedding) == 0 {
		return nil, errors.New("empty embedding returned")
	}
	return embResp.Embedding, nil
}

// CLIPClassifier scores candidates by cosine similarity between the image
// embedding and each hypothesis embedding, softmax-normalized.
type CLIPClassifier struct {
	client *ScoringClient
}

// NewCLIPClassifier creates the CLIP sidecar backing.
func NewCLIPClassifier(client *ScoringClient) *CLIPClassifier {
	return &CLIPClassifier{client: client}
}

// Name returns the backing name.
func (c *CLIPClassifier) Name() string {
	return "clip"
}

// Classify embeds the image and every hypothesis, then returns the
// candidate with the highest softmax-normalized similarity.
func (c *CLIPClassifier) Classify(ctx context.Context, imageData []byte, category taxonomy.CategorySpec) (string, error) {
	if len(category.Candidates) == 0 {
		return "", fmt.Errorf("category %s has no candidates", category.Name)
	}

	imgVec, err := c.client.EmbedImage(ctx, imageData)
	if err != nil {
		return "", fmt.Errorf("embedding image for %s: %w", category.Name, err)
	}

	hypotheses := category.Hypotheses()
	scores := make([]float64, len(hypotheses))
	for i, h := range hypotheses {
		textVec, err := c.client.EmbedText(ctx, h)
		if err != nil {
			return "", fmt.Errorf("embedding hypothesis %q: %w", h, err)
		}
		scores[i] = clipLogitScale * cosineSimilarity(imgVec, textVec)
	}

	probs := softmax(scores)
	return category.Candidates[argmax(probs)], nil
}

// cosineSimilarity computes the cosine similarity between two vectors,
// clamped to [-1, 1]. Mismatched or zero vectors score -1.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return -1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return -1
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return sim
}

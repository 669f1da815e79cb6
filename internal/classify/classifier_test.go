package classify

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/reverse-prompt/internal/taxonomy"
)

func TestSoftmax_SumsToOne(t *testing.T) {
	probs := softmax([]float64{1.0, 2.0, 3.0})

	var sum float64
	for _, p := range probs {
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("expected probabilities to sum to 1, got %f", sum)
	}
	if argmax(probs) != 2 {
		t.Errorf("expected argmax 2, got %d", argmax(probs))
	}
}

func TestSoftmax_LargeScoresStable(t *testing.T) {
	probs := softmax([]float64{1000, 1001})

	for i, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			t.Errorf("probability %d is not finite: %f", i, p)
		}
	}
	if argmax(probs) != 1 {
		t.Errorf("expected argmax 1, got %d", argmax(probs))
	}
}

func TestSoftmax_Empty(t *testing.T) {
	if probs := softmax(nil); probs != nil {
		t.Errorf("expected nil for empty input, got %v", probs)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"mismatched length", []float32{1, 0}, []float32{1}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosineSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Bright Light ", "bright light"},
		{"middle-eastern", "middle eastern"},
		{"Latino_Hispanic", "latino hispanic"},
		{`"male".`, "male"},
	}

	for _, tt := range tests {
		if got := normalizeLabel(tt.in); got != tt.want {
			t.Errorf("normalizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchCandidate(t *testing.T) {
	lighting, err := taxonomy.Get(taxonomy.Lighting)
	if err != nil {
		t.Fatalf("Get(Lighting) failed: %v", err)
	}

	if label, ok := matchCandidate("Bright Light", lighting); !ok || label != "bright light" {
		t.Errorf("expected match 'bright light', got %q (%v)", label, ok)
	}
	if label, ok := matchCandidate("the photo shows natural light", lighting); !ok || label != "natural light" {
		t.Errorf("expected embedded match 'natural light', got %q (%v)", label, ok)
	}
	if _, ok := matchCandidate("candlelight dinner ambience", lighting); ok {
		t.Error("expected no match for unlisted label")
	}
}

// fakeSidecar serves deterministic embeddings: the image embedding is
// fixed, and each text embedding is chosen so one hypothesis aligns with
// the image better than the others.
func fakeSidecar(t *testing.T, imgVec []float32, textVecs map[string][]float32) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/embed/image", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embeddingResponse{Dim: len(imgVec), Embedding: imgVec, Model: "clip"})
	})
	mux.HandleFunc("/embed/text", func(w http.ResponseWriter, r *http.Request) {
		var req textEmbeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		vec, ok := textVecs[req.Text]
		if !ok {
			http.Error(w, "unknown text", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(embeddingResponse{Dim: len(vec), Embedding: vec, Model: "clip"})
	})
	return httptest.NewServer(mux)
}

func TestCLIPClassifier_PicksBestHypothesis(t *testing.T) {
	people, err := taxonomy.Get(taxonomy.People)
	if err != nil {
		t.Fatalf("Get(People) failed: %v", err)
	}

	// Align the "two people" hypothesis with the image vector.
	textVecs := make(map[string][]float32)
	for i, h := range people.Hypotheses() {
		if people.Candidates[i] == "two people" {
			textVecs[h] = []float32{1, 0}
		} else {
			textVecs[h] = []float32{0, 1}
		}
	}

	server := fakeSidecar(t, []float32{1, 0}, textVecs)
	defer server.Close()

	classifier := NewCLIPClassifier(NewScoringClient(server.URL))
	label, err := classifier.Classify(context.Background(), []byte("fake image data"), people)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if label != "two people" {
		t.Errorf("expected 'two people', got %q", label)
	}
}

func TestCLIPClassifier_SidecarErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	setting, err := taxonomy.Get(taxonomy.Setting)
	if err != nil {
		t.Fatalf("Get(Setting) failed: %v", err)
	}

	classifier := NewCLIPClassifier(NewScoringClient(server.URL))
	if _, err := classifier.Classify(context.Background(), []byte("fake"), setting); err == nil {
		t.Error("expected error when sidecar fails")
	}
}

func TestScoringClient_TextEmbeddingCached(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(embeddingResponse{Dim: 2, Embedding: []float32{1, 0}, Model: "clip"})
	}))
	defer server.Close()

	client := NewScoringClient(server.URL)
	ctx := context.Background()
	for range 3 {
		if _, err := client.EmbedText(ctx, "a photo of a male"); err != nil {
			t.Fatalf("EmbedText failed: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 sidecar call, got %d", calls)
	}
}

func TestBuildChoicePrompt_ListsAllCandidates(t *testing.T) {
	race, err := taxonomy.Get(taxonomy.Race)
	if err != nil {
		t.Fatalf("Get(Race) failed: %v", err)
	}

	prompt := buildChoicePrompt(race)
	for _, c := range race.Candidates {
		if !strings.Contains(prompt, "- "+c+"\n") {
			t.Errorf("prompt missing candidate %q", c)
		}
	}
}

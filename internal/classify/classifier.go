// Package classify implements the general-purpose image classifier: for
// a category's candidate labels it scores image-vs-hypothesis
// compatibility and returns the arg-max candidate. It is the pipeline's
// fallback of last resort, so its backings report failures instead of
// degrading silently.
package classify

import (
	"context"
	"math"

	"github.com/kozaktomas/reverse-prompt/internal/taxonomy"
)

// GeneralClassifier picks the single best candidate label for a category.
type GeneralClassifier interface {
	Name() string
	Classify(ctx context.Context, imageData []byte, category taxonomy.CategorySpec) (string, error)
}

// softmax converts raw compatibility scores to a normalized distribution.
func softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}

	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// argmax returns the index of the largest value, -1 for an empty slice.
func argmax(values []float64) int {
	best := -1
	for i, v := range values {
		if best < 0 || v > values[best] {
			best = i
		}
	}
	return best
}

// Package pipeline is the decision core: it orchestrates face detection,
// the specialized demographic classifier and the general fallback
// classifier into a complete tag set, then renders the prompt sentence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/kozaktomas/reverse-prompt/internal/classify"
	"github.com/kozaktomas/reverse-prompt/internal/imaging"
	"github.com/kozaktomas/reverse-prompt/internal/taxonomy"
	"github.com/kozaktomas/reverse-prompt/internal/vision"
)

// TagSet maps every attribute category to its chosen label. After
// resolution every declared category holds exactly one non-empty label.
type TagSet map[taxonomy.Category]string

// Resolution is a completed tag set plus how it was reached, useful for
// diagnostics and bias audits.
type Resolution struct {
	Tags            TagSet `json:"tags"`
	FaceFound       bool   `json:"face_found"`
	DemographicUsed bool   `json:"demographic_used"`
}

// Resolver decides, per category, which classifier's output is
// authoritative. The locator and demographic classifier may be nil
// (absent backing); the general classifier is mandatory, it is the
// fallback of last resort.
type Resolver struct {
	locator     vision.FaceLocator
	demographic vision.DemographicClassifier
	general     classify.GeneralClassifier
}

// NewResolver wires the resolver. general must not be nil.
func NewResolver(locator vision.FaceLocator, demographic vision.DemographicClassifier, general classify.GeneralClassifier) *Resolver {
	if general == nil {
		panic("pipeline: general classifier is required")
	}
	return &Resolver{
		locator:     locator,
		demographic: demographic,
		general:     general,
	}
}

// attempt tries to resolve one category. ok=false means the attempt
// defers to the next one; an error aborts resolution.
type attempt func(ctx context.Context, cat taxonomy.CategorySpec) (label string, ok bool, err error)

// Resolve runs the per-image decision sequence: face search, demographic
// attempt on the top region, general fill for everything still open, and
// a final completeness pass. Demographic failures are recovered locally;
// a general classifier failure aborts, there is no further fallback.
func (r *Resolver) Resolve(ctx context.Context, img image.Image, imageData []byte) (*Resolution, error) {
	res := &Resolution{Tags: make(TagSet)}

	var regions []vision.FaceRegion
	if r.locator != nil {
		regions = r.locator.Locate(img)
	}

	// Demographic attempt on the top-confidence region only. The locator
	// contract orders regions by confidence, so the first one wins.
	demo := make(map[taxonomy.Category]string)
	if len(regions) > 0 {
		res.FaceFound = true
		face := imaging.Crop(img, regions[0].Rect())

		result, err := r.classifyDemographics(face)
		if err != nil {
			// Unavailable or failed: race and gender stay open and fall
			// through to the general classifier.
			log.Printf("demographic classifier did not resolve, falling back: %v", err)
		} else {
			demo[taxonomy.Race] = result.Race
			demo[taxonomy.Gender] = result.Gender
			res.DemographicUsed = true
		}
	}

	// Ordered attempts per category: the demographic path first, the
	// general classifier as fallback. Adding a tier means adding an
	// attempt, not another branch.
	attempts := []attempt{
		func(_ context.Context, cat taxonomy.CategorySpec) (string, bool, error) {
			label, ok := demo[cat.Name]
			return label, ok, nil
		},
		func(ctx context.Context, cat taxonomy.CategorySpec) (string, bool, error) {
			label, err := r.general.Classify(ctx, imageData, cat)
			if err != nil {
				return "", false, fmt.Errorf("general classifier failed for %s: %w", cat.Name, err)
			}
			return label, true, nil
		},
	}

	for _, cat := range taxonomy.Categories() {
		for _, try := range attempts {
			label, ok, err := try(ctx, cat)
			if err != nil {
				return nil, err
			}
			if ok {
				res.Tags[cat.Name] = label
				break
			}
		}
	}

	// Completeness pass: every declared category must end up populated.
	for _, cat := range taxonomy.Categories() {
		if res.Tags[cat.Name] != "" {
			continue
		}
		label, err := r.general.Classify(ctx, imageData, cat)
		if err != nil {
			return nil, fmt.Errorf("general classifier failed for %s: %w", cat.Name, err)
		}
		res.Tags[cat.Name] = label
	}

	return res, nil
}

// classifyDemographics runs the demographic classifier on a face crop,
// converting an absent backing and every failure into ErrUnavailable.
func (r *Resolver) classifyDemographics(face image.Image) (*vision.DemographicResult, error) {
	if r.demographic == nil {
		return nil, vision.ErrUnavailable
	}
	result, err := r.demographic.Classify(face)
	if err != nil {
		if errors.Is(err, vision.ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", vision.ErrUnavailable, err)
	}
	return result, nil
}

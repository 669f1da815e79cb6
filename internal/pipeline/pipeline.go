package pipeline

import (
	"context"
	"image"

	"github.com/kozaktomas/reverse-prompt/internal/classify"
	"github.com/kozaktomas/reverse-prompt/internal/imaging"
	"github.com/kozaktomas/reverse-prompt/internal/vision"
)

// Result is the terminal artifact for one image: the rendered prompt and
// the tag set it was rendered from.
type Result struct {
	Prompt          string `json:"prompt"`
	Tags            TagSet `json:"tags"`
	FaceFound       bool   `json:"face_found"`
	DemographicUsed bool   `json:"demographic_used"`
}

// Pipeline runs the full image-to-prompt sequence.
type Pipeline struct {
	resolver *Resolver
}

// New wires a pipeline from the three classifier backings. locator and
// demographic may be nil, general must not be.
func New(locator vision.FaceLocator, demographic vision.DemographicClassifier, general classify.GeneralClassifier) *Pipeline {
	return &Pipeline{resolver: NewResolver(locator, demographic, general)}
}

// DescribeFile loads an image from disk and describes it. Missing or
// undecodable files surface imaging.ErrInput before any classifier runs.
func (p *Pipeline) DescribeFile(ctx context.Context, path string) (*Result, error) {
	data, img, err := imaging.Load(path)
	if err != nil {
		return nil, err
	}
	return p.describe(ctx, data, img)
}

// Describe describes in-memory image data.
func (p *Pipeline) Describe(ctx context.Context, data []byte) (*Result, error) {
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	return p.describe(ctx, data, img)
}

func (p *Pipeline) describe(ctx context.Context, data []byte, img image.Image) (*Result, error) {
	res, err := p.resolver.Resolve(ctx, img, data)
	if err != nil {
		return nil, err
	}
	return &Result{
		Prompt:          Render(res.Tags),
		Tags:            res.Tags,
		FaceFound:       res.FaceFound,
		DemographicUsed: res.DemographicUsed,
	}, nil
}

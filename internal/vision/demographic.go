package vision

import (
	"errors"
	"fmt"
	"image"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/kozaktomas/reverse-prompt/internal/taxonomy"
)

// ErrUnavailable signals that no demographic classifier could run: the
// backing is not loaded or inference failed. Distinct from the "unknown"
// sentinel labels, which are valid answers.
var ErrUnavailable = errors.New("demographic classifier unavailable")

// DemographicResult is the (race, gender) estimate for one face, already
// mapped onto the publishable taxonomy.
type DemographicResult struct {
	Race   string
	Gender string
}

// DemographicClassifier estimates race and gender from a face crop.
type DemographicClassifier interface {
	Classify(face image.Image) (*DemographicResult, error)
}

// Attribute model constants: fixed input size and ImageNet-style
// normalization (pixel/255, then per-channel mean and std).
const attrInputSize = 224

var (
	attrMeans = [3]float32{0.485 * 255, 0.456 * 255, 0.406 * 255}
	attrStds  = [3]float32{0.229 * 255, 0.224 * 255, 0.225 * 255}
)

// AttributeNet classifies demographic attributes with an ONNX model whose
// output vector is the concatenation of a race sub-distribution and a
// gender sub-distribution.
type AttributeNet struct {
	sess      *onnxSession
	raceLen   int
	genderLen int
}

// NewAttributeNet loads the attribute model. An empty modelPath is a
// valid configuration, callers get nil and every Classify call on a nil
// net returns ErrUnavailable.
func NewAttributeNet(modelPath, ortLibPath string) (*AttributeNet, error) {
	if modelPath == "" {
		return nil, nil
	}
	if err := initRuntime(ortLibPath); err != nil {
		return nil, err
	}

	raceLen := len(taxonomy.NativeRaces())
	genderLen := len(taxonomy.NativeGenders())

	sess, err := newONNXSession(modelPath, "input", "output",
		ort.NewShape(1, 3, attrInputSize, attrInputSize),
		ort.NewShape(1, int64(raceLen+genderLen)),
	)
	if err != nil {
		return nil, fmt.Errorf("load attribute model: %w", err)
	}

	return &AttributeNet{
		sess:      sess,
		raceLen:   raceLen,
		genderLen: genderLen,
	}, nil
}

// Classify runs the attribute model on a face crop. The leading segment
// of the output is the race sub-distribution, the trailing segment the
// gender sub-distribution; each is taken as its arg-max and mapped
// through the taxonomy alias tables. Inference failures come back as
// ErrUnavailable so the caller falls back to the general classifier.
func (n *AttributeNet) Classify(face image.Image) (*DemographicResult, error) {
	if n == nil || n.sess == nil {
		return nil, ErrUnavailable
	}

	out, err := n.sess.run(chwTensor(face, attrInputSize, attrInputSize, attrMeans, attrStds, false))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(out) < n.raceLen+n.genderLen {
		return nil, fmt.Errorf("%w: output vector too short (%d)", ErrUnavailable, len(out))
	}

	raceIdx := argmax(out[:n.raceLen])
	genderIdx := argmax(out[n.raceLen : n.raceLen+n.genderLen])

	return &DemographicResult{
		Race:   taxonomy.MapRace(taxonomy.NativeRaces()[raceIdx]),
		Gender: taxonomy.MapGender(taxonomy.NativeGenders()[genderIdx]),
	}, nil
}

// Close releases the model session.
func (n *AttributeNet) Close() error {
	if n == nil || n.sess == nil {
		return nil
	}
	return n.sess.Close()
}

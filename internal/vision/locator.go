// Package vision holds the face detection and demographic classification
// adapters. Both run local ONNX models; either backing may be absent,
// which degrades the pipeline instead of failing it.
package vision

import (
	"fmt"
	"image"
	"log"
	"sort"

	ort "github.com/yalue/onnxruntime_go"
)

// FaceLocator returns face regions for an image, ordered by confidence
// descending. The first region is the most confident one, callers may
// rely on that ordering. An empty result is a valid "no face" outcome.
type FaceLocator interface {
	Locate(img image.Image) []FaceRegion
}

// SSD detector constants: fixed input size, Caffe-style per-channel
// means, and the detection output layout [batch, class, conf, x1..y2].
const (
	ssdInputSize     = 300
	ssdMaxDetections = 200
	ssdFields        = 7

	// ConfidenceThreshold is the minimum detector confidence for a
	// candidate region to be kept.
	ConfidenceThreshold = 0.5
)

var (
	ssdMeans = [3]float32{104, 117, 123}
	ssdStds  = [3]float32{1, 1, 1}
)

// SSDFaceLocator detects faces with a single-shot detector ONNX model.
type SSDFaceLocator struct {
	sess *onnxSession
}

// NewSSDFaceLocator loads the detector model. An empty modelPath is a
// valid configuration meaning no detector, callers get nil and should
// treat it as a locator that never finds faces.
func NewSSDFaceLocator(modelPath, ortLibPath string) (*SSDFaceLocator, error) {
	if modelPath == "" {
		return nil, nil
	}
	if err := initRuntime(ortLibPath); err != nil {
		return nil, err
	}

	sess, err := newONNXSession(modelPath, "data", "detection_out",
		ort.NewShape(1, 3, ssdInputSize, ssdInputSize),
		ort.NewShape(1, 1, ssdMaxDetections, ssdFields),
	)
	if err != nil {
		return nil, fmt.Errorf("load face detector: %w", err)
	}
	return &SSDFaceLocator{sess: sess}, nil
}

// Locate runs the detector and returns regions above the confidence
// threshold, clamped to the image extents and sorted by confidence
// descending. Inference failures are recoverable by contract, they log
// and report no faces.
func (l *SSDFaceLocator) Locate(img image.Image) []FaceRegion {
	if l == nil || l.sess == nil {
		return nil
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	out, err := l.sess.run(chwTensor(img, ssdInputSize, ssdInputSize, ssdMeans, ssdStds, true))
	if err != nil {
		log.Printf("face detector inference failed, continuing without faces: %v", err)
		return nil
	}

	return parseDetections(out, width, height)
}

// parseDetections converts raw detector output rows into regions: rows
// below the confidence threshold are dropped, boxes are scaled to pixel
// coordinates and clamped to the image extents, degenerate boxes are
// discarded. Highest confidence first so "first region wins" is explicit
// rather than an accident of detector scan order.
func parseDetections(out []float32, width, height int) []FaceRegion {
	var regions []FaceRegion
	for i := 0; i+ssdFields <= len(out); i += ssdFields {
		conf := float64(out[i+2])
		if conf < ConfidenceThreshold {
			continue
		}

		region := clampRegion(FaceRegion{
			X1:         int(out[i+3] * float32(width)),
			Y1:         int(out[i+4] * float32(height)),
			X2:         int(out[i+5] * float32(width)),
			Y2:         int(out[i+6] * float32(height)),
			Confidence: conf,
		}, width, height)

		if region.Valid(width, height) {
			regions = append(regions, region)
		}
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Confidence > regions[j].Confidence
	})
	return regions
}

// Close releases the detector session.
func (l *SSDFaceLocator) Close() error {
	if l == nil || l.sess == nil {
		return nil
	}
	return l.sess.Close()
}

package vision

import (
	"image"
	"image/color"
	"testing"
)

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func TestFaceRegion_Rect(t *testing.T) {
	r := FaceRegion{X1: 10, Y1: 20, X2: 50, Y2: 80, Confidence: 0.9}

	if r.Rect() != image.Rect(10, 20, 50, 80) {
		t.Errorf("unexpected rect: %v", r.Rect())
	}
	if r.Area() != 40*60 {
		t.Errorf("expected area %d, got %d", 40*60, r.Area())
	}
}

func TestFaceRegion_Valid(t *testing.T) {
	tests := []struct {
		name   string
		region FaceRegion
		want   bool
	}{
		{"inside", FaceRegion{X1: 0, Y1: 0, X2: 10, Y2: 10}, true},
		{"full image", FaceRegion{X1: 0, Y1: 0, X2: 100, Y2: 100}, true},
		{"zero width", FaceRegion{X1: 10, Y1: 0, X2: 10, Y2: 10}, false},
		{"inverted", FaceRegion{X1: 20, Y1: 0, X2: 10, Y2: 10}, false},
		{"out of bounds", FaceRegion{X1: 0, Y1: 0, X2: 101, Y2: 10}, false},
		{"negative origin", FaceRegion{X1: -1, Y1: 0, X2: 10, Y2: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.region.Valid(100, 100); got != tt.want {
				t.Errorf("Valid(100, 100) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClampRegion(t *testing.T) {
	r := clampRegion(FaceRegion{X1: -5, Y1: 10, X2: 120, Y2: 90}, 100, 80)

	if r.X1 != 0 || r.Y1 != 10 || r.X2 != 100 || r.Y2 != 80 {
		t.Errorf("unexpected clamped region: %+v", r)
	}
}

func TestNilLocator_ReturnsNoFaces(t *testing.T) {
	var l *SSDFaceLocator

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if regions := l.Locate(img); regions != nil {
		t.Errorf("expected no regions from nil locator, got %v", regions)
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close on nil locator failed: %v", err)
	}
}

func TestNilAttributeNet_Unavailable(t *testing.T) {
	var n *AttributeNet

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if _, err := n.Classify(img); err != ErrUnavailable {
		t.Errorf("expected ErrUnavailable from nil net, got %v", err)
	}
	if err := n.Close(); err != nil {
		t.Errorf("Close on nil net failed: %v", err)
	}
}

func TestArgmax(t *testing.T) {
	if got := argmax([]float32{0.1, 0.7, 0.2}); got != 1 {
		t.Errorf("expected argmax 1, got %d", got)
	}
	if got := argmax(nil); got != -1 {
		t.Errorf("expected -1 for empty slice, got %d", got)
	}
}

func TestChwTensor_LayoutAndNormalization(t *testing.T) {
	// A uniform gray image makes every channel plane constant.
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := range 4 {
		for y := range 4 {
			img.Set(x, y, rgb(100, 150, 200))
		}
	}

	means := [3]float32{10, 20, 30}
	stds := [3]float32{1, 1, 1}
	data := chwTensor(img, 2, 2, means, stds, false)

	if len(data) != 3*2*2 {
		t.Fatalf("expected 12 values, got %d", len(data))
	}
	// RGB order: plane 0 holds R - mean[0].
	if data[0] != 100-10 {
		t.Errorf("expected R plane value %v, got %v", float32(90), data[0])
	}
	if data[4] != 150-20 {
		t.Errorf("expected G plane value %v, got %v", float32(130), data[4])
	}
	if data[8] != 200-30 {
		t.Errorf("expected B plane value %v, got %v", float32(170), data[8])
	}
}

func TestChwTensor_BGRSwapsChannels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for x := range 2 {
		for y := range 2 {
			img.Set(x, y, rgb(100, 150, 200))
		}
	}

	data := chwTensor(img, 2, 2, [3]float32{0, 0, 0}, [3]float32{1, 1, 1}, true)

	if data[0] != 200 {
		t.Errorf("expected B first in BGR order, got %v", data[0])
	}
	if data[8] != 100 {
		t.Errorf("expected R last in BGR order, got %v", data[8])
	}
}

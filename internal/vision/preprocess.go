package vision

import (
	"image"

	"golang.org/x/image/draw"
)

// chwTensor scales img to width x height and lays the pixels out
// channel-major (CHW) as float32, applying per-channel mean subtraction
// and std division. When bgr is true the channel order is swapped, which
// is what Caffe-era detection models expect.
func chwTensor(img image.Image, width, height int, means, stds [3]float32, bgr bool) []float32 {
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Over, nil)

	plane := width * height
	data := make([]float32, 3*plane)
	for y := range height {
		for x := range width {
			r, g, b, _ := scaled.At(x, y).RGBA()
			px := [3]float32{float32(r >> 8), float32(g >> 8), float32(b >> 8)}
			if bgr {
				px[0], px[2] = px[2], px[0]
			}
			idx := y*width + x
			for c := range 3 {
				data[c*plane+idx] = (px[c] - means[c]) / stds[c]
			}
		}
	}
	return data
}

// argmax returns the index of the largest value in the slice, -1 when the
// slice is empty.
func argmax(scores []float32) int {
	best := -1
	for i, s := range scores {
		if best < 0 || s > scores[best] {
			best = i
		}
	}
	return best
}

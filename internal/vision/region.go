package vision

import "image"

// FaceRegion is one detected face: an axis-aligned box in image pixel
// space plus the detector's confidence score in [0,1].
type FaceRegion struct {
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
	Confidence float64 `json:"confidence"`
}

// Rect returns the region as an image.Rectangle.
func (r FaceRegion) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// Area returns the region area in pixels.
func (r FaceRegion) Area() int {
	return (r.X2 - r.X1) * (r.Y2 - r.Y1)
}

// Valid reports whether the region has positive extent within an image of
// the given dimensions.
func (r FaceRegion) Valid(width, height int) bool {
	return r.X1 >= 0 && r.X1 < r.X2 && r.X2 <= width &&
		r.Y1 >= 0 && r.Y1 < r.Y2 && r.Y2 <= height
}

// clampRegion clamps the region bounds to the image extents.
func clampRegion(r FaceRegion, width, height int) FaceRegion {
	r.X1 = max(0, min(r.X1, width))
	r.Y1 = max(0, min(r.Y1, height))
	r.X2 = max(0, min(r.X2, width))
	r.Y2 = max(0, min(r.Y2, height))
	return r
}

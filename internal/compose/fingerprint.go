package compose

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// FingerprintDim is the length of the vector returned by Fingerprint.
const FingerprintDim = 64

// Fingerprint reduces img to an 8x8 grayscale thumbnail and returns it as a
// mean-centered, unit-length vector. Visually similar images have a small L2
// distance. A flat (or nearly flat) image yields the zero vector.
func Fingerprint(img image.Image) []float32 {
	v := make([]float32, FingerprintDim)
	if img == nil || img.Bounds().Empty() {
		return v
	}

	thumb := image.NewGray(image.Rect(0, 0, 8, 8))
	draw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), img, img.Bounds(), draw.Src, nil)

	lo, hi := thumb.Pix[0], thumb.Pix[0]
	var mean float64
	for i, p := range thumb.Pix[:FingerprintDim] {
		lo, hi = min(lo, p), max(hi, p)
		v[i] = float32(p) / 255
		mean += float64(v[i])
	}
	if hi-lo < 2 {
		return make([]float32, FingerprintDim)
	}
	mean /= FingerprintDim

	var norm float64
	for i := range v {
		v[i] -= float32(mean)
		norm += float64(v[i]) * float64(v[i])
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

package filters

import (
	"math"

	"texture-extractor/internal/models"
)

const (
	invariantSamples    = 16
	invariantInnerRange = 4
	invariantOuterRange = 8
)

type samplePair struct {
	ax, ay float64
	bx, by float64
}

// invariantOffsets holds, for each sampled angle phi, the offset of the
// radius-4 sample along phi and of the radius-8 sample rotated by 90 degrees.
// Offsets are added to the pixel position and truncated toward zero.
var invariantOffsets = func() [invariantSamples]samplePair {
	var offsets [invariantSamples]samplePair
	for r := range offsets {
		phi := 2 * math.Pi * float64(r) / invariantSamples
		sin, cos := math.Sincos(phi)
		offsets[r] = samplePair{
			ax: invariantInnerRange * cos,
			ay: invariantInnerRange * sin,
			bx: -invariantOuterRange * sin,
			by: invariantOuterRange * cos,
		}
	}
	return offsets
}()

// InvariantFeatureHistogram computes the rotation invariant local-support
// map. Each pixel averages sqrt(a*b) over 16 rotated sample pairs, dividing by
// the number of samples that landed inside the image. Raw values are rescaled
// globally.
func InvariantFeatureHistogram(src *models.Grid) (*models.Grid, error) {
	if err := src.Validate("invariant feature histogram"); err != nil {
		return nil, err
	}

	raw := models.NewFloatGrid(src.Width, src.Height)

	parallelRows(src.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < src.Width; x++ {
				raw.Values[y*src.Width+x] = localSupport(src, x, y)
			}
		}
	})

	return Rescale(raw), nil
}

// localSupport treats an out-of-bounds sample as intensity 0 that is not
// counted towards the average.
func localSupport(src *models.Grid, x, y int) float64 {
	var sum float64
	total := 0

	for _, p := range invariantOffsets {
		var a, b float64

		x1, y1 := int(p.ax+float64(x)), int(p.ay+float64(y))
		if src.Inside(x1, y1) {
			a = float64(src.At(x1, y1))
			total++
		}

		x2, y2 := int(p.bx+float64(x)), int(p.by+float64(y))
		if src.Inside(x2, y2) {
			b = float64(src.At(x2, y2))
			total++
		}

		sum += math.Sqrt(a * b)
	}

	if total == 0 {
		return 0
	}
	return sum / float64(total)
}

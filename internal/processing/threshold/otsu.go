package threshold

import (
	"texture-extractor/internal/models"
	"texture-extractor/internal/processing/histogram"
)

// OtsuCalculator picks the global threshold that maximises the
// between-class variance of a 256-bin histogram.
type OtsuCalculator struct{}

func NewOtsuCalculator() *OtsuCalculator {
	return &OtsuCalculator{}
}

// Calculate returns the first threshold t with the highest variance, where
// class 0 holds intensities <= t. A histogram with a single populated bin has
// no split and yields 0.
func (o *OtsuCalculator) Calculate(h histogram.Histogram) uint8 {
	total := h.Total()

	var totalWeighted float64
	for v, n := range h {
		totalWeighted += float64(v * n)
	}

	var (
		best         uint8
		bestVariance float64

		lowCount    int
		lowWeighted float64
	)
	for t, n := range h {
		lowCount += n
		lowWeighted += float64(t * n)

		highCount := total - lowCount
		if lowCount == 0 || highCount == 0 {
			continue
		}

		lowMean := lowWeighted / float64(lowCount)
		highMean := (totalWeighted - lowWeighted) / float64(highCount)
		diff := lowMean - highMean

		variance := float64(lowCount) * float64(highCount) * diff * diff
		if variance > bestVariance {
			bestVariance = variance
			best = uint8(t)
		}
	}

	return best
}

// Binarize maps pixels above t to 255 and the rest to 0.
func Binarize(src *models.Grid, t uint8) (*models.Grid, error) {
	if err := src.Validate("binarize"); err != nil {
		return nil, err
	}

	out, err := models.NewGrid(src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	for i, v := range src.Pix {
		if v > t {
			out.Pix[i] = 255
		}
	}
	return out, nil
}

// AutoThreshold binarizes src at its Otsu threshold.
func AutoThreshold(src *models.Grid) (*models.Grid, uint8, error) {
	if err := src.Validate("auto threshold"); err != nil {
		return nil, 0, err
	}

	t := NewOtsuCalculator().Calculate(histogram.Compute(src))
	out, err := Binarize(src, t)
	if err != nil {
		return nil, 0, err
	}
	return out, t, nil
}

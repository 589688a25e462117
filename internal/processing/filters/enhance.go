package filters

import (
	"fmt"
	"math"

	"texture-extractor/internal/models"
	"texture-extractor/internal/processing/histogram"
)

// DefaultSaturated is the percentage of pixels StretchHistogram lets
// saturate, split evenly between both ends of the range.
const DefaultSaturated = 0.35

// StretchHistogram maps the intensity range that remains after discarding
// saturated/2 percent of the pixels at each end onto 0..255. Images whose
// remaining range is a single value are returned unchanged.
func StretchHistogram(src *models.Grid, saturated float64) (*models.Grid, error) {
	if err := src.Validate("stretch histogram"); err != nil {
		return nil, err
	}
	if saturated < 0 || saturated >= 100 || math.IsNaN(saturated) {
		return nil, fmt.Errorf("%w: saturated must be in [0, 100), got %v", models.ErrInvalidParameter, saturated)
	}

	hist := histogram.Compute(src)
	lo, hi := saturationBounds(&hist, saturated)
	if hi <= lo {
		return src.Clone(), nil
	}

	var lut [256]uint8
	span := float64(hi - lo)
	for v := range lut {
		switch {
		case v < lo:
			lut[v] = 0
		case v > hi:
			lut[v] = 255
		default:
			lut[v] = uint8(min(int(float64(v-lo)/span*256), 255))
		}
	}
	return applyTable(src, &lut), nil
}

// saturationBounds returns the first levels, scanning up from 0 and down
// from 255, at which the running pixel count exceeds the saturation
// threshold.
func saturationBounds(hist *histogram.Histogram, saturated float64) (lo, hi int) {
	threshold := 0
	if saturated > 0 {
		threshold = int(float64(hist.Total()) * saturated / 200)
	}

	count := 0
	for lo = 0; lo < 255; lo++ {
		count += hist[lo]
		if count > threshold {
			break
		}
	}

	count = 0
	for hi = 255; hi > 0; hi-- {
		count += hist[hi]
		if count > threshold {
			break
		}
	}
	return lo, hi
}

// Equalize flattens the histogram using the square root of each bin count
// as its weight, which keeps large uniform areas from dominating the
// mapping. Levels 0 and 255 map to themselves.
func Equalize(src *models.Grid) (*models.Grid, error) {
	if err := src.Validate("equalize"); err != nil {
		return nil, err
	}

	hist := histogram.Compute(src)
	weight := func(v int) float64 {
		n := hist[v]
		if n < 2 {
			return float64(n)
		}
		return math.Sqrt(float64(n))
	}

	total := weight(0) + weight(255)
	for v := 1; v < 255; v++ {
		total += 2 * weight(v)
	}
	scale := 255 / total

	var lut [256]uint8
	sum := 0.0
	for v := 1; v < 255; v++ {
		delta := weight(v)
		sum += delta
		lut[v] = uint8(min(math.Round(sum*scale), 255))
		sum += delta
	}
	lut[255] = 255

	return applyTable(src, &lut), nil
}

func applyTable(src *models.Grid, lut *[256]uint8) *models.Grid {
	out := src.Clone()
	for i, v := range out.Pix {
		out.Pix[i] = lut[v]
	}
	return out
}

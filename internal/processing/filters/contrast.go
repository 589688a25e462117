package filters

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"texture-extractor/internal/models"
)

const DefaultContrastMargin = 6

// Contrast computes the Tamura contrast map: for each pixel the window of
// half-width margin, clipped at the borders, yields sigma^2 / mu4^(1/4) where
// mu4 is the fourth central moment. Raw values are rescaled globally.
func Contrast(src *models.Grid, margin int) (*models.Grid, error) {
	if err := src.Validate("contrast"); err != nil {
		return nil, err
	}
	if margin < 0 || 2*margin >= min(src.Width, src.Height) {
		return nil, fmt.Errorf("%w: margin %d must be non-negative and below half of %dx%d",
			models.ErrInvalidParameter, margin, src.Width, src.Height)
	}

	raw := models.NewFloatGrid(src.Width, src.Height)
	side := 2*margin + 1

	parallelRows(src.Height, func(y0, y1 int) {
		window := make([]float64, 0, side*side)
		for y := y0; y < y1; y++ {
			top, bottom := max(0, y-margin), min(src.Height-1, y+margin)
			for x := 0; x < src.Width; x++ {
				left, right := max(0, x-margin), min(src.Width-1, x+margin)

				window = window[:0]
				for yy := top; yy <= bottom; yy++ {
					row := src.Pix[yy*src.Width : (yy+1)*src.Width]
					for xx := left; xx <= right; xx++ {
						window = append(window, float64(row[xx]))
					}
				}

				raw.Values[y*src.Width+x] = windowContrast(window)
			}
		}
	})

	return Rescale(raw), nil
}

// windowContrast is sigma^2 / mu4^0.25, or 0 for a flat window where both
// moments vanish.
func windowContrast(window []float64) float64 {
	_, variance := stat.PopMeanVariance(window, nil)
	fourth := stat.Moment(4, window, nil)
	if fourth <= 0 {
		return 0
	}
	return variance / math.Pow(fourth, 0.25)
}

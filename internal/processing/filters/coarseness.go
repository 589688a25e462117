package filters

import (
	"fmt"

	"texture-extractor/internal/models"
)

const (
	DefaultMaxWindowSize = 6
	MaxWindowSizeLimit   = 10
)

// Coarseness computes the Tamura coarseness map. For k = 1..maxWindowSize it
// compares the mean of the two 2^k x 2^k windows on either side of the pixel,
// horizontally and vertically, and keeps the k with the largest absolute
// difference. The output byte is bestK * (255 / maxWindowSize), so the map only
// takes maxWindowSize+1 distinct values.
//
// A (k, orientation) pair whose windows leave the image is skipped, which
// gives pixels near the border a reduced-scale estimate.
func Coarseness(src *models.Grid, maxWindowSize int) (*models.Grid, error) {
	if err := src.Validate("coarseness"); err != nil {
		return nil, err
	}
	if maxWindowSize <= 0 || maxWindowSize > MaxWindowSizeLimit {
		return nil, fmt.Errorf("%w: max window size must be between 1 and %d, got %d",
			models.ErrInvalidParameter, MaxWindowSizeLimit, maxWindowSize)
	}

	out, err := models.NewGrid(src.Width, src.Height)
	if err != nil {
		return nil, err
	}

	table := newSummedArea(src)
	step := 255 / maxWindowSize

	parallelRows(src.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < src.Width; x++ {
				out.Pix[y*src.Width+x] = uint8(bestScale(table, src.Width, src.Height, x, y, maxWindowSize) * step)
			}
		}
	})

	return out, nil
}

// bestScale returns the window exponent with the strongest neighbourhood
// contrast at (x, y), or 0 when every candidate difference is zero.
func bestScale(table *summedArea, width, height, x, y, maxWindowSize int) int {
	var bestDiff int64
	bestK := 0

	for k := 1; k <= maxWindowSize; k++ {
		side := 1 << k
		half := side >> 1
		area := int64(side * side)

		// Horizontal: [x-side, x) against [x, x+side), rows centred on y.
		if x-side >= 0 && x+side <= width && y-half >= 0 && y+half <= height {
			right := table.sum(x, y-half, x+side, y+half) / area
			left := table.sum(x-side, y-half, x, y+half) / area
			if diff := abs64(right - left); diff > bestDiff {
				bestDiff = diff
				bestK = k
			}
		}

		// Vertical: [y-side, y) against [y, y+side), columns centred on x.
		if y-side >= 0 && y+side <= height && x-half >= 0 && x+half <= width {
			below := table.sum(x-half, y, x+half, y+side) / area
			above := table.sum(x-half, y-side, x+half, y) / area
			if diff := abs64(below - above); diff > bestDiff {
				bestDiff = diff
				bestK = k
			}
		}
	}

	return bestK
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

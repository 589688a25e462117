package filters

import (
	"math"

	"texture-extractor/internal/models"
)

// FindEdges highlights intensity changes with the 3x3 Sobel operator. The
// output is the gradient magnitude truncated to an integer and capped at 255.
// Pixels outside the image take the value of the nearest edge pixel.
func FindEdges(src *models.Grid) (*models.Grid, error) {
	if err := src.Validate("find edges"); err != nil {
		return nil, err
	}

	out, err := models.NewGrid(src.Width, src.Height)
	if err != nil {
		return nil, err
	}

	w, h := src.Width, src.Height
	at := func(x, y int) float64 {
		x = min(max(x, 0), w-1)
		y = min(max(y, 0), h-1)
		return float64(src.Pix[y*w+x])
	}

	parallelRows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				p1, p2, p3 := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
				p4, p6 := at(x-1, y), at(x+1, y)
				p7, p8, p9 := at(x-1, y+1), at(x, y+1), at(x+1, y+1)

				gy := p1 + 2*p2 + p3 - p7 - 2*p8 - p9
				gx := p1 + 2*p4 + p7 - p3 - 2*p6 - p9

				out.Pix[y*w+x] = uint8(min(int(math.Sqrt(gx*gx+gy*gy)), 255))
			}
		}
	})

	return out, nil
}

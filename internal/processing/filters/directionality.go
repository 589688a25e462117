package filters

import (
	"math"

	"texture-extractor/internal/models"
)

// Directionality computes the Tamura gradient-orientation map. Interior
// pixels are correlated with a horizontal and a vertical 3x3 Prewitt-style
// kernel; the resulting angle in [0, pi] is scaled to a byte. The one-pixel
// border stays zero.
func Directionality(src *models.Grid) (*models.Grid, error) {
	if err := src.Validate("directionality"); err != nil {
		return nil, err
	}

	out, err := models.NewGrid(src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	if src.Width < 3 || src.Height < 3 {
		return out, nil
	}

	w := src.Width
	parallelRows(src.Height-2, func(r0, r1 int) {
		for y := r0 + 1; y < r1+1; y++ {
			for x := 1; x < w-1; x++ {
				gh, gv := gradient(src.Pix, w, x, y)
				out.Pix[y*w+x] = uint8(orientation(gh, gv) / math.Pi * 255)
			}
		}
	})

	return out, nil
}

// gradient applies [[-1,0,1],[-1,0,1],[-1,0,1]] and [[1,1,1],[0,0,0],[-1,-1,-1]]
// centred on (x, y).
func gradient(pix []uint8, w, x, y int) (gh, gv float64) {
	up, mid, down := (y-1)*w, y*w, (y+1)*w

	gh = float64(int(pix[up+x+1]) + int(pix[mid+x+1]) + int(pix[down+x+1]) -
		int(pix[up+x-1]) - int(pix[mid+x-1]) - int(pix[down+x-1]))
	gv = float64(int(pix[up+x-1]) + int(pix[up+x]) + int(pix[up+x+1]) -
		int(pix[down+x-1]) - int(pix[down+x]) - int(pix[down+x+1]))
	return gh, gv
}

func orientation(gh, gv float64) float64 {
	switch {
	case gh == 0 && gv == 0:
		return 0
	case gh == 0:
		return math.Pi
	default:
		return math.Pi/2 + math.Atan(gv/gh)
	}
}

package filters

import "texture-extractor/internal/models"

// lbpNeighbours lists the 8-neighbourhood offsets in bit order.
var lbpNeighbours = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// LocalBinaryPattern encodes, for every interior pixel, which of its eight
// neighbours are strictly brighter than it. Bit i of the code corresponds to
// lbpNeighbours[i]. The one-pixel border stays zero.
func LocalBinaryPattern(src *models.Grid) (*models.Grid, error) {
	if err := src.Validate("local binary pattern"); err != nil {
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
				out.Pix[y*w+x] = lbpCode(src.Pix, w, x, y)
			}
		}
	})

	return out, nil
}

func lbpCode(pix []uint8, w, x, y int) uint8 {
	center := pix[y*w+x]
	var code uint8
	for pos, d := range lbpNeighbours {
		if pix[(y+d[1])*w+x+d[0]] > center {
			code |= 1 << pos
		}
	}
	return code
}

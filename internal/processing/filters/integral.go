package filters

import "texture-extractor/internal/models"

// summedArea is a summed-area table with one padding row and column, so
// sums[(y+1)*stride+(x+1)] holds the total of every pixel above and left of
// (x, y) inclusive.
type summedArea struct {
	stride int
	sums   []int64
}

func newSummedArea(src *models.Grid) *summedArea {
	stride := src.Width + 1
	sums := make([]int64, stride*(src.Height+1))

	for y := 0; y < src.Height; y++ {
		var rowSum int64
		for x := 0; x < src.Width; x++ {
			rowSum += int64(src.Pix[y*src.Width+x])
			sums[(y+1)*stride+x+1] = sums[y*stride+x+1] + rowSum
		}
	}

	return &summedArea{stride: stride, sums: sums}
}

// sum totals the half-open window [x0, x1) x [y0, y1). Callers keep the
// window inside the grid.
func (s *summedArea) sum(x0, y0, x1, y1 int) int64 {
	return s.sums[y1*s.stride+x1] - s.sums[y0*s.stride+x1] -
		s.sums[y1*s.stride+x0] + s.sums[y0*s.stride+x0]
}

package histogram

import (
	"texture-extractor/internal/models"
)

// Histogram counts pixels per 8-bit intensity.
type Histogram [256]int

// Compute counts every pixel of g. A nil grid yields an empty histogram.
func Compute(g *models.Grid) Histogram {
	var h Histogram
	if g == nil {
		return h
	}
	for _, v := range g.Pix {
		h[v]++
	}
	return h
}

func (h *Histogram) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// Mean returns the average intensity, 0 for an empty histogram.
func (h *Histogram) Mean() float64 {
	total, weighted := 0, 0
	for v, n := range h {
		total += n
		weighted += v * n
	}
	if total == 0 {
		return 0
	}
	return float64(weighted) / float64(total)
}

// Normalized returns the bin frequencies as fractions of the total.
func (h *Histogram) Normalized() []float64 {
	out := make([]float64, len(h))
	total := h.Total()
	if total == 0 {
		return out
	}
	for v, n := range h {
		out[v] = float64(n) / float64(total)
	}
	return out
}

// Counts returns the bins as a slice, for storage and plotting.
func (h *Histogram) Counts() []int {
	out := make([]int, len(h))
	copy(out, h[:])
	return out
}

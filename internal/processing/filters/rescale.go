package filters

import (
	"gonum.org/v1/gonum/floats"

	"texture-extractor/internal/models"
)

// Rescale maps a float accumulation linearly onto [0, 255] using its global
// minimum and maximum.
func Rescale(values *models.FloatGrid) *models.Grid {
	return &models.Grid{
		Width:  values.Width,
		Height: values.Height,
		Pix:    RescaleValues(values.Values),
	}
}

// RescaleValues computes byte = (v - min) * 255 / (max - min), truncated.
// A flat input (max == min) has no range to stretch and maps to all zeros.
func RescaleValues(values []float64) []uint8 {
	out := make([]uint8, len(values))
	if len(values) == 0 {
		return out
	}

	lo, hi := floats.Min(values), floats.Max(values)
	if hi == lo {
		return out
	}

	span := hi - lo
	for i, v := range values {
		if v == hi {
			out[i] = 255
			continue
		}
		out[i] = uint8((v - lo) * 255 / span)
	}
	return out
}

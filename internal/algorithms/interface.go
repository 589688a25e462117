package algorithms

import (
	"context"

	"texture-extractor/internal/models"
)

// Algorithm is a per-pixel feature extractor driven by a parameter map.
type Algorithm interface {
	Process(ctx context.Context, input *models.Grid, params map[string]interface{}) (*ProcessingResult, error)
	ValidateParameters(params map[string]interface{}) error
	GetDefaultParameters() map[string]interface{}
	GetName() string
}

type ProcessingResult struct {
	Output *models.Grid
	// Composite is set by algorithms that produce a colour map.
	Composite *models.RGBGrid
	Metrics   map[string]float64
}

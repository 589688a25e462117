package algorithms

import (
	"context"
	"fmt"
	"math"

	"texture-extractor/internal/models"
	"texture-extractor/internal/processing/filters"
)

const (
	// FilterName is the manager name of the image filter chain.
	FilterName = "filter"

	DefaultFilterSteps = filters.StepContrast
)

// filterSettings is the checked form of the filter parameter map.
type filterSettings struct {
	steps         []string
	saturated     float64
	equalize      bool
	size          string
	interpolation filters.Interpolation
}

func parseFilterSettings(params map[string]interface{}) (filterSettings, error) {
	var fs filterSettings
	var err error

	if fs.steps, err = filters.ParseSteps(getStringParam(params, ParamSteps, DefaultFilterSteps)); err != nil {
		return fs, err
	}
	if fs.saturated, err = getFloatParam(params, ParamSaturated, filters.DefaultSaturated); err != nil {
		return fs, err
	}
	if fs.saturated < 0 || fs.saturated >= 100 || math.IsNaN(fs.saturated) {
		return fs, fmt.Errorf("%w: %s must be in [0, 100), got %v", models.ErrInvalidParameter, ParamSaturated, fs.saturated)
	}
	if fs.equalize, err = getBoolParam(params, ParamEqualize, false); err != nil {
		return fs, err
	}
	if raw, ok := params[ParamSize]; ok {
		if fs.size, ok = raw.(string); !ok {
			return fs, fmt.Errorf("%w: %s must be a string, got %T", models.ErrInvalidParameter, ParamSize, raw)
		}
	}
	if fs.interpolation, err = filters.ParseInterpolation(getStringParam(params, ParamInterpolation, "")); err != nil {
		return fs, err
	}
	return fs, nil
}

// chainParams is the parameter map the filter steps read.
func (fs filterSettings) chainParams() map[string]interface{} {
	return map[string]interface{}{
		ParamSaturated:     fs.saturated,
		ParamEqualize:      fs.equalize,
		ParamSize:          fs.size,
		ParamInterpolation: string(fs.interpolation),
	}
}

// NewFilterProcessor runs edge detection, contrast enhancement and resizing
// as a chain whose order comes from the steps parameter. Unlike the feature
// maps the output may differ in size from the input.
func NewFilterProcessor() Algorithm {
	return &featureProcessor{
		name: FilterName,
		defaults: map[string]interface{}{
			ParamSteps:         DefaultFilterSteps,
			ParamSaturated:     filters.DefaultSaturated,
			ParamEqualize:      false,
			ParamSize:          "",
			ParamInterpolation: string(filters.InterpolationBilinear),
		},
		validate: func(params map[string]interface{}) error {
			_, err := parseFilterSettings(params)
			return err
		},
		run: func(ctx context.Context, input *models.Grid, params map[string]interface{}) (*ProcessingResult, error) {
			fs, err := parseFilterSettings(params)
			if err != nil {
				return nil, err
			}
			pc, err := filters.NewFilterChain(fs.steps)
			if err != nil {
				return nil, err
			}
			return gray(pc.Execute(ctx, input, fs.chainParams()))
		},
	}
}

package algorithms

import (
	"context"
	"fmt"

	"texture-extractor/internal/models"
	"texture-extractor/internal/processing/filters"
	"texture-extractor/internal/processing/histogram"
	"texture-extractor/internal/processing/texture"
)

// featureProcessor adapts one filter function to the Algorithm interface.
type featureProcessor struct {
	name     string
	defaults map[string]interface{}
	validate func(params map[string]interface{}) error
	run      func(ctx context.Context, input *models.Grid, params map[string]interface{}) (*ProcessingResult, error)
}

func (p *featureProcessor) GetName() string {
	return p.name
}

func (p *featureProcessor) GetDefaultParameters() map[string]interface{} {
	return copyParams(p.defaults)
}

func (p *featureProcessor) ValidateParameters(params map[string]interface{}) error {
	if p.validate == nil {
		return nil
	}
	return p.validate(params)
}

func (p *featureProcessor) Process(ctx context.Context, input *models.Grid, params map[string]interface{}) (*ProcessingResult, error) {
	if err := input.Validate(p.name); err != nil {
		return nil, err
	}
	if err := p.ValidateParameters(params); err != nil {
		return nil, fmt.Errorf("parameter validation failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := p.run(ctx, input, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hist := histogram.Compute(result.Output)
	result.Metrics = map[string]float64{
		"mean":   hist.Mean(),
		"pixels": float64(hist.Total()),
	}
	return result, nil
}

func gray(out *models.Grid, err error) (*ProcessingResult, error) {
	if err != nil {
		return nil, err
	}
	return &ProcessingResult{Output: out}, nil
}

func validateWindowSize(params map[string]interface{}) error {
	size, err := getIntParam(params, ParamMaxWindowSize, filters.DefaultMaxWindowSize)
	if err != nil {
		return err
	}
	if size < 1 || size > filters.MaxWindowSizeLimit {
		return fmt.Errorf("%w: %s must be between 1 and %d, got: %d",
			models.ErrInvalidParameter, ParamMaxWindowSize, filters.MaxWindowSizeLimit, size)
	}
	return nil
}

// validateMargin checks only the sign; the upper bound depends on the image
// and is enforced by the filter.
func validateMargin(params map[string]interface{}) error {
	margin, err := getIntParam(params, ParamContrastMargin, filters.DefaultContrastMargin)
	if err != nil {
		return err
	}
	if margin < 0 {
		return fmt.Errorf("%w: %s must be non-negative, got: %d", models.ErrInvalidParameter, ParamContrastMargin, margin)
	}
	return nil
}

func textureOptions(params map[string]interface{}) texture.Options {
	opts := texture.DefaultOptions()
	opts.MaxWindowSize, _ = getIntParam(params, ParamMaxWindowSize, opts.MaxWindowSize)
	opts.ContrastMargin, _ = getIntParam(params, ParamContrastMargin, opts.ContrastMargin)
	return opts
}

func NewCoarsenessProcessor() Algorithm {
	return &featureProcessor{
		name:     "coarseness",
		defaults: map[string]interface{}{ParamMaxWindowSize: filters.DefaultMaxWindowSize},
		validate: validateWindowSize,
		run: func(_ context.Context, input *models.Grid, params map[string]interface{}) (*ProcessingResult, error) {
			return gray(filters.Coarseness(input, textureOptions(params).MaxWindowSize))
		},
	}
}

func NewContrastProcessor() Algorithm {
	return &featureProcessor{
		name:     "contrast",
		defaults: map[string]interface{}{ParamContrastMargin: filters.DefaultContrastMargin},
		validate: validateMargin,
		run: func(_ context.Context, input *models.Grid, params map[string]interface{}) (*ProcessingResult, error) {
			return gray(filters.Contrast(input, textureOptions(params).ContrastMargin))
		},
	}
}

func NewDirectionalityProcessor() Algorithm {
	return &featureProcessor{
		name:     "directionality",
		defaults: map[string]interface{}{},
		run: func(_ context.Context, input *models.Grid, _ map[string]interface{}) (*ProcessingResult, error) {
			return gray(filters.Directionality(input))
		},
	}
}

func NewLBPProcessor() Algorithm {
	return &featureProcessor{
		name:     string(texture.ModeLBP),
		defaults: map[string]interface{}{},
		run: func(_ context.Context, input *models.Grid, _ map[string]interface{}) (*ProcessingResult, error) {
			return gray(filters.LocalBinaryPattern(input))
		},
	}
}

func NewInvariantProcessor() Algorithm {
	return &featureProcessor{
		name:     string(texture.ModeInvariant),
		defaults: map[string]interface{}{},
		run: func(_ context.Context, input *models.Grid, _ map[string]interface{}) (*ProcessingResult, error) {
			return gray(filters.InvariantFeatureHistogram(input))
		},
	}
}

func NewTamuraProcessor() Algorithm {
	return &featureProcessor{
		name: string(texture.ModeTamura),
		defaults: map[string]interface{}{
			ParamMaxWindowSize:  filters.DefaultMaxWindowSize,
			ParamContrastMargin: filters.DefaultContrastMargin,
		},
		validate: func(params map[string]interface{}) error {
			if err := validateWindowSize(params); err != nil {
				return err
			}
			return validateMargin(params)
		},
		run: func(_ context.Context, input *models.Grid, params map[string]interface{}) (*ProcessingResult, error) {
			res, err := texture.Apply(texture.ModeTamura, input, textureOptions(params))
			if err != nil {
				return nil, err
			}
			return &ProcessingResult{Output: res.Gray, Composite: res.Composite}, nil
		},
	}
}

package algorithms

import (
	"fmt"
	"math"

	"texture-extractor/internal/models"
	"texture-extractor/internal/processing/filters"
)

const (
	ParamMaxWindowSize    = "max_window_size"
	ParamContrastMargin   = "contrast_margin"
	ParamOutlierRadius    = "outlier_radius"
	ParamOutlierThreshold = "outlier_threshold"
	ParamOutlierWhich     = "outlier_which"
	ParamSteps            = "steps"
	ParamSaturated        = filters.ParamSaturated
	ParamEqualize         = filters.ParamEqualize
	ParamSize             = filters.ParamSize
	ParamInterpolation    = filters.ParamInterpolation
)

// getIntParam reads an integer parameter. Whole float64 values are accepted
// so that maps decoded from JSON work unchanged.
func getIntParam(params map[string]interface{}, key string, fallback int) (int, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}

	switch v := raw.(type) {
	case int:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %s must be an integer, got %v", models.ErrInvalidParameter, key, v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%w: %s has unsupported type %T", models.ErrInvalidParameter, key, raw)
	}
}

// getFloatParam reads a float parameter, accepting ints as well.
func getFloatParam(params map[string]interface{}, key string, fallback float64) (float64, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: %s has unsupported type %T", models.ErrInvalidParameter, key, raw)
	}
}

func getBoolParam(params map[string]interface{}, key string, fallback bool) (bool, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}
	v, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a boolean, got %T", models.ErrInvalidParameter, key, raw)
	}
	return v, nil
}

func getStringParam(params map[string]interface{}, key, fallback string) string {
	if value, ok := params[key].(string); ok {
		return value
	}
	return fallback
}

func copyParams(params map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(params))
	for k, v := range params {
		result[k] = v
	}
	return result
}

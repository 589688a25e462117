package filters

import (
	"context"
	"fmt"
	"strings"

	"texture-extractor/internal/models"
	"texture-extractor/internal/processing/chain"
)

// Parameters read by the image filter steps.
const (
	ParamSaturated     = "saturated"
	ParamEqualize      = "equalize"
	ParamSize          = "size"
	ParamInterpolation = "interpolation"
)

// Step names accepted by NewFilterChain.
const (
	StepEdge     = "edge"
	StepContrast = "contrast"
	StepResize   = "resize"
)

type EdgeFilter struct{}

func NewEdgeFilter() *EdgeFilter {
	return &EdgeFilter{}
}

func (f *EdgeFilter) Name() string {
	return "edge_filter"
}

func (f *EdgeFilter) ShouldExecute(map[string]interface{}) bool {
	return true
}

func (f *EdgeFilter) Apply(ctx context.Context, input *models.Grid, _ map[string]interface{}) (*models.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return FindEdges(input)
}

// ContrastEnhancer equalizes the histogram when the equalize parameter is
// true and stretches it otherwise.
type ContrastEnhancer struct{}

func NewContrastEnhancer() *ContrastEnhancer {
	return &ContrastEnhancer{}
}

func (c *ContrastEnhancer) Name() string {
	return "contrast_enhancer"
}

func (c *ContrastEnhancer) ShouldExecute(map[string]interface{}) bool {
	return true
}

func (c *ContrastEnhancer) Apply(ctx context.Context, input *models.Grid, params map[string]interface{}) (*models.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if equalize, ok := params[ParamEqualize].(bool); ok && equalize {
		return Equalize(input)
	}

	saturated := DefaultSaturated
	if val, ok := params[ParamSaturated].(float64); ok {
		saturated = val
	}
	return StretchHistogram(input, saturated)
}

// ResizeFilter only runs when a size parameter is given.
type ResizeFilter struct{}

func NewResizeFilter() *ResizeFilter {
	return &ResizeFilter{}
}

func (r *ResizeFilter) Name() string {
	return "resize_filter"
}

func (r *ResizeFilter) ShouldExecute(params map[string]interface{}) bool {
	size, ok := params[ParamSize].(string)
	return ok && size != ""
}

func (r *ResizeFilter) Apply(ctx context.Context, input *models.Grid, params map[string]interface{}) (*models.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size, _ := params[ParamSize].(string)
	width, height, err := ParseSize(size, input.Width, input.Height)
	if err != nil {
		return nil, err
	}

	method, _ := params[ParamInterpolation].(string)
	interpolation, err := ParseInterpolation(method)
	if err != nil {
		return nil, err
	}

	return Resize(input, width, height, interpolation)
}

// ParseSteps splits a comma separated step list such as "resize,edge".
func ParseSteps(s string) ([]string, error) {
	var steps []string
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		switch name {
		case StepEdge, StepContrast, StepResize:
			steps = append(steps, name)
		default:
			return nil, fmt.Errorf("%w: unknown filter step %q, expected %s, %s or %s",
				models.ErrInvalidParameter, name, StepEdge, StepContrast, StepResize)
		}
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: no filter steps in %q", models.ErrInvalidParameter, s)
	}
	return steps, nil
}

// NewFilterChain builds a chain that runs the named steps in order. A step
// may appear more than once.
func NewFilterChain(steps []string) (*chain.ProcessingChain, error) {
	pc := chain.NewProcessingChain(nil)
	for _, name := range steps {
		switch name {
		case StepEdge:
			pc.AddStep(NewEdgeFilter())
		case StepContrast:
			pc.AddStep(NewContrastEnhancer())
		case StepResize:
			pc.AddStep(NewResizeFilter())
		default:
			return nil, fmt.Errorf("%w: unknown filter step %q", models.ErrInvalidParameter, name)
		}
	}
	return pc, nil
}

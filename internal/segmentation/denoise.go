package segmentation

import (
	"context"
	"fmt"

	"texture-extractor/internal/models"
	"texture-extractor/internal/processing/chain"
	"texture-extractor/internal/processing/threshold"
)

// Denoiser turns a grayscale image into a 0/255 foreground mask with
// isolated outliers removed.
type Denoiser interface {
	Mask(ctx context.Context, src *models.Grid, opts threshold.OutlierOptions) (*models.Grid, error)
}

const (
	paramOutlierRadius    = "outlier_radius"
	paramOutlierThreshold = "outlier_threshold"
	paramOutlierWhich     = "outlier_which"
)

// ChainDenoiser is the pure Go Denoiser: an Otsu step followed by a rank
// outlier step.
type ChainDenoiser struct {
	chain *chain.ProcessingChain
}

func NewChainDenoiser() *ChainDenoiser {
	return &ChainDenoiser{
		chain: chain.NewProcessingChain([]chain.ProcessingStep{
			autoThresholdStep{},
			outlierStep{},
		}),
	}
}

func (d *ChainDenoiser) Mask(ctx context.Context, src *models.Grid, opts threshold.OutlierOptions) (*models.Grid, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return d.chain.Execute(ctx, src, map[string]interface{}{
		paramOutlierRadius:    opts.Radius,
		paramOutlierThreshold: opts.Threshold,
		paramOutlierWhich:     opts.Which,
	})
}

type autoThresholdStep struct{}

func (autoThresholdStep) Name() string { return "auto threshold" }

func (autoThresholdStep) ShouldExecute(map[string]interface{}) bool { return true }

func (autoThresholdStep) Apply(_ context.Context, input *models.Grid, _ map[string]interface{}) (*models.Grid, error) {
	mask, _, err := threshold.AutoThreshold(input)
	return mask, err
}

type outlierStep struct{}

func (outlierStep) Name() string { return "remove outliers" }

func (outlierStep) ShouldExecute(params map[string]interface{}) bool {
	radius, _ := params[paramOutlierRadius].(int)
	return radius > 0
}

func (outlierStep) Apply(_ context.Context, input *models.Grid, params map[string]interface{}) (*models.Grid, error) {
	radius, _ := params[paramOutlierRadius].(int)
	level, _ := params[paramOutlierThreshold].(int)
	which, _ := params[paramOutlierWhich].(threshold.Which)

	return threshold.RemoveOutliers(input, threshold.OutlierOptions{
		Radius:    radius,
		Threshold: level,
		Which:     which,
	})
}

// Denoise masks src with d and returns a working copy of src in which every
// pixel outside the mask is zeroed, together with the mask.
func Denoise(ctx context.Context, d Denoiser, src *models.Grid, opts threshold.OutlierOptions) (working, mask *models.Grid, err error) {
	if err := src.Validate("denoise"); err != nil {
		return nil, nil, err
	}
	if d == nil {
		d = NewChainDenoiser()
	}

	mask, err = d.Mask(ctx, src, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mask: %w", err)
	}
	if !mask.SameSize(src) {
		return nil, nil, fmt.Errorf("%w: mask is %dx%d for %dx%d image", models.ErrInvalidImage,
			mask.Width, mask.Height, src.Width, src.Height)
	}

	working = src.Clone()
	for i, m := range mask.Pix {
		if m == 0 {
			working.Pix[i] = 0
		}
	}
	return working, mask, nil
}

package algorithms

import (
	"context"
	"fmt"

	"texture-extractor/internal/models"
	"texture-extractor/internal/processing/threshold"
	"texture-extractor/internal/segmentation"
)

// BlobProcessor runs blob extraction with the same parameter map idiom as
// the feature algorithms.
type BlobProcessor struct {
	name     string
	denoiser segmentation.Denoiser
	labeler  segmentation.Labeler
}

// NewBlobProcessor uses denoiser for the foreground mask; nil selects the
// pure Go chain.
func NewBlobProcessor(denoiser segmentation.Denoiser) *BlobProcessor {
	if denoiser == nil {
		denoiser = segmentation.NewChainDenoiser()
	}
	return &BlobProcessor{name: "blobs", denoiser: denoiser}
}

// WithLabeler replaces the flood fill component labelling with l.
func (p *BlobProcessor) WithLabeler(l segmentation.Labeler) *BlobProcessor {
	p.labeler = l
	return p
}

func (p *BlobProcessor) GetName() string {
	return p.name
}

func (p *BlobProcessor) GetDefaultParameters() map[string]interface{} {
	o := threshold.DefaultOutlierOptions()
	return map[string]interface{}{
		ParamOutlierRadius:    o.Radius,
		ParamOutlierThreshold: o.Threshold,
		ParamOutlierWhich:     o.Which.String(),
	}
}

func (p *BlobProcessor) ValidateParameters(params map[string]interface{}) error {
	opts, err := p.options(params)
	if err != nil {
		return err
	}
	return opts.Validate()
}

func (p *BlobProcessor) options(params map[string]interface{}) (threshold.OutlierOptions, error) {
	opts := threshold.DefaultOutlierOptions()

	var err error
	if opts.Radius, err = getIntParam(params, ParamOutlierRadius, opts.Radius); err != nil {
		return opts, err
	}
	if opts.Threshold, err = getIntParam(params, ParamOutlierThreshold, opts.Threshold); err != nil {
		return opts, err
	}
	if opts.Which, err = threshold.ParseWhich(getStringParam(params, ParamOutlierWhich, opts.Which.String())); err != nil {
		return opts, err
	}
	return opts, nil
}

// Process splits the gray channel of img into ranked blobs.
func (p *BlobProcessor) Process(ctx context.Context, img *models.ImageData, params map[string]interface{}) ([]models.Blob, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: image is nil", models.ErrInvalidImage)
	}

	opts, err := p.options(params)
	if err != nil {
		return nil, fmt.Errorf("parameter validation failed: %w", err)
	}

	return segmentation.ExtractContext(ctx, img.Gray, segmentation.Options{
		Radius:      opts.Radius,
		Threshold:   opts.Threshold,
		Which:       opts.Which,
		Denoiser:    p.denoiser,
		Labeler:     p.labeler,
		SourceID:    img.ID,
		SourceTitle: img.Title,
	})
}

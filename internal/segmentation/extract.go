package segmentation

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"texture-extractor/internal/models"
	"texture-extractor/internal/processing/threshold"
)

// Options configures Extract. The zero value disables the outlier filter;
// DefaultOptions matches the usual particle-splitting setup.
type Options struct {
	Radius    int
	Threshold int
	Which     threshold.Which

	// Denoiser defaults to a ChainDenoiser.
	Denoiser Denoiser
	// Labeler defaults to a FloodFillLabeler.
	Labeler Labeler

	SourceID    string
	SourceTitle string
}

func DefaultOptions() Options {
	o := threshold.DefaultOutlierOptions()
	return Options{
		Radius:    o.Radius,
		Threshold: o.Threshold,
		Which:     o.Which,
	}
}

func (o Options) outliers() threshold.OutlierOptions {
	return threshold.OutlierOptions{Radius: o.Radius, Threshold: o.Threshold, Which: o.Which}
}

// Extract splits src into one cropped blob per connected foreground region,
// ordered by bounding box area, smallest first. An image without foreground
// yields no blobs and no error.
func Extract(src *models.Grid, opts Options) ([]models.Blob, error) {
	return ExtractContext(context.Background(), src, opts)
}

func ExtractContext(ctx context.Context, src *models.Grid, opts Options) ([]models.Blob, error) {
	if err := src.Validate("blob extraction"); err != nil {
		return nil, err
	}
	if err := opts.outliers().Validate(); err != nil {
		return nil, err
	}

	working, mask, err := Denoise(ctx, opts.Denoiser, src, opts.outliers())
	if err != nil {
		return nil, fmt.Errorf("denoise: %w", err)
	}

	labeler := opts.Labeler
	if labeler == nil {
		labeler = FloodFillLabeler{}
	}
	comps, err := labeler.Components(ctx, mask)
	if err != nil {
		return nil, fmt.Errorf("label: %w", err)
	}

	blobs := make([]models.Blob, 0, len(comps))
	for _, c := range comps {
		crop, err := working.Crop(c.Bounds)
		if err != nil {
			return nil, fmt.Errorf("crop component %d: %w", c.Label, err)
		}
		blobs = append(blobs, models.NewBlob(opts.SourceID, opts.SourceTitle, c.Label, c.Bounds, c.Pixels, crop))
	}

	slices.SortStableFunc(blobs, func(a, b models.Blob) int {
		return cmp.Compare(a.Area(), b.Area())
	})

	return blobs, nil
}

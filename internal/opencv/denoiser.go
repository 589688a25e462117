// Package opencv runs the segmentation mask and its component labelling
// through OpenCV instead of the pure Go filters.
package opencv

import (
	"context"
	"fmt"

	"texture-extractor/internal/models"
	"texture-extractor/internal/opencv/conversion"
	"texture-extractor/internal/opencv/safe"
	"texture-extractor/internal/processing/threshold"

	"gocv.io/x/gocv"
)

// Denoiser builds the foreground mask with cv::threshold in Otsu mode and
// removes outliers against a cv::medianBlur of the mask. MedianBlur
// replicates border pixels where the pure Go filter clips its window, so the
// two backends can disagree within Radius of the image edge.
type Denoiser struct{}

func NewDenoiser() *Denoiser {
	return &Denoiser{}
}

func (d *Denoiser) Mask(ctx context.Context, src *models.Grid, opts threshold.OutlierOptions) (*models.Grid, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := src.Validate("opencv mask"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gray, err := conversion.GridToMat(src)
	if err != nil {
		return nil, fmt.Errorf("grid to Mat: %w", err)
	}
	defer gray.Close()

	mask := safe.NewEmpty()
	defer mask.Close()

	gocv.Threshold(gray.GetMat(), mask.Ptr(), 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	if err := safe.ValidateGray(mask, "otsu threshold"); err != nil {
		return nil, err
	}

	if opts.Radius > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := removeOutliers(mask, opts); err != nil {
			return nil, err
		}
	}

	return conversion.MatToGrid(mask)
}

// removeOutliers overwrites, in place, every pixel of mask that deviates
// from its median by more than opts.Threshold in the selected direction.
func removeOutliers(mask *safe.Mat, opts threshold.OutlierOptions) error {
	ksize := 2*opts.Radius + 1
	if err := safe.ValidateKernelSize(ksize, "median blur"); err != nil {
		return err
	}

	median := safe.NewEmpty()
	defer median.Close()
	gocv.MedianBlur(mask.GetMat(), median.Ptr(), ksize)
	if err := safe.ValidateGray(median, "median blur"); err != nil {
		return err
	}

	diff := safe.NewEmpty()
	defer diff.Close()
	switch opts.Which {
	case threshold.Bright:
		gocv.Subtract(mask.GetMat(), median.GetMat(), diff.Ptr())
	case threshold.Dark:
		gocv.Subtract(median.GetMat(), mask.GetMat(), diff.Ptr())
	}

	selected := safe.NewEmpty()
	defer selected.Close()
	gocv.Threshold(diff.GetMat(), selected.Ptr(), float32(opts.Threshold), 255, gocv.ThresholdBinary)
	if err := safe.ValidateGray(selected, "outlier selection"); err != nil {
		return err
	}

	medianMat := median.GetMat()
	medianMat.CopyToWithMask(mask.Ptr(), selected.GetMat())
	return nil
}

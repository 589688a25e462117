package opencv

import (
	"context"
	"fmt"
	"image"
	"slices"

	"texture-extractor/internal/models"
	"texture-extractor/internal/opencv/conversion"
	"texture-extractor/internal/opencv/safe"
	"texture-extractor/internal/segmentation"

	"gocv.io/x/gocv"
)

// Columns of the cv::connectedComponentsWithStats stats matrix.
const (
	statLeft = iota
	statTop
	statWidth
	statHeight
	statArea
)

// Labeler labels the mask with cv::connectedComponentsWithStats. OpenCV
// numbers components by their first pixel anywhere in the image, so labels
// are renumbered by their first pixel off the border and regions lying
// entirely on the border are dropped.
type Labeler struct{}

func NewLabeler() *Labeler {
	return &Labeler{}
}

func (l *Labeler) Components(ctx context.Context, mask *models.Grid) ([]segmentation.Component, error) {
	if err := mask.Validate("opencv labelling"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	binary := mask.Clone()
	for i, v := range binary.Pix {
		if v != 255 {
			binary.Pix[i] = 0
		}
	}

	src, err := conversion.GridToMat(binary)
	if err != nil {
		return nil, fmt.Errorf("grid to Mat: %w", err)
	}
	defer src.Close()

	labels := safe.NewEmpty()
	defer labels.Close()
	stats := safe.NewEmpty()
	defer stats.Close()
	centroids := safe.NewEmpty()
	defer centroids.Close()

	n := gocv.ConnectedComponentsWithStats(src.GetMat(), labels.Ptr(), stats.Ptr(), centroids.Ptr())
	if n <= 1 {
		return nil, nil
	}
	if labels.Rows() != mask.Height || labels.Cols() != mask.Width {
		return nil, fmt.Errorf("connected components returned a %dx%d label Mat for a %dx%d mask",
			labels.Cols(), labels.Rows(), mask.Width, mask.Height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	labelMat := labels.GetMat()
	order := make([]int32, n)
	next := int32(0)
	for y := 1; y < mask.Height-1; y++ {
		for x := 1; x < mask.Width-1; x++ {
			cv := labelMat.GetIntAt(y, x)
			if cv > 0 && order[cv] == 0 {
				next++
				order[cv] = next
			}
		}
	}

	if next == 0 {
		return nil, nil
	}

	statMat := stats.GetMat()
	comps := make([]segmentation.Component, 0, next)
	for cv := 1; cv < n; cv++ {
		if order[cv] == 0 {
			continue
		}
		left := int(statMat.GetIntAt(cv, statLeft))
		top := int(statMat.GetIntAt(cv, statTop))
		comps = append(comps, segmentation.Component{
			Label: order[cv],
			Bounds: image.Rect(left, top,
				left+int(statMat.GetIntAt(cv, statWidth)),
				top+int(statMat.GetIntAt(cv, statHeight))),
			Pixels: int(statMat.GetIntAt(cv, statArea)),
		})
	}

	slices.SortFunc(comps, func(a, b segmentation.Component) int {
		return int(a.Label - b.Label)
	})
	return comps, nil
}

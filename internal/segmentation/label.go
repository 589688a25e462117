package segmentation

import (
	"context"
	"image"

	"texture-extractor/internal/models"
)

// Component is one labelled region of a LabelGrid.
type Component struct {
	Label  int32
	Bounds image.Rectangle
	Pixels int
}

// Labeler finds the connected foreground regions of a 0/255 mask. Only
// regions holding at least one pixel off the image border are reported, and
// they are labelled 1..n in the raster order of their first such pixel.
type Labeler interface {
	Components(ctx context.Context, mask *models.Grid) ([]Component, error)
}

// FloodFillLabeler is the pure Go Labeler.
type FloodFillLabeler struct{}

func (FloodFillLabeler) Components(ctx context.Context, mask *models.Grid) ([]Component, error) {
	if err := mask.Validate("label components"); err != nil {
		return nil, err
	}
	labels := Binarize(mask)
	count := LabelComponents(labels)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ComponentBounds(labels, count), nil
}

var neighbours8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Binarize marks mask pixels equal to 255 as pending foreground and all
// others as background.
func Binarize(mask *models.Grid) *models.LabelGrid {
	labels := models.NewLabelGrid(mask.Width, mask.Height)
	for i, v := range mask.Pix {
		if v == 255 {
			labels.Labels[i] = models.LabelPending
		}
	}
	return labels
}

// LabelComponents assigns consecutive labels from 1 to the 8-connected
// pending regions of labels and returns how many it assigned. Seeds are
// taken from interior pixels only; a region reached from a seed may still
// extend onto the border.
func LabelComponents(labels *models.LabelGrid) int {
	w, h := labels.Width, labels.Height
	next := int32(0)
	var queue []image.Point

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			if labels.At(x, y) != models.LabelPending {
				continue
			}

			next++
			labels.Set(x, y, next)
			queue = append(queue[:0], image.Pt(x, y))

			for head := 0; head < len(queue); head++ {
				p := queue[head]
				for _, d := range neighbours8 {
					nx, ny := p.X+d[0], p.Y+d[1]
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					if labels.At(nx, ny) == models.LabelPending {
						labels.Set(nx, ny, next)
						queue = append(queue, image.Pt(nx, ny))
					}
				}
			}
		}
	}

	return int(next)
}

// ComponentBounds computes the bounding rectangle and pixel count of labels
// 1..count in a single pass. Entry i describes label i+1.
func ComponentBounds(labels *models.LabelGrid, count int) []Component {
	if count <= 0 {
		return nil
	}

	comps := make([]Component, count)
	for i := range comps {
		comps[i].Label = int32(i + 1)
	}

	for y := 0; y < labels.Height; y++ {
		for x := 0; x < labels.Width; x++ {
			l := labels.At(x, y)
			if l < 1 || int(l) > count {
				continue
			}

			c := &comps[l-1]
			px := image.Rect(x, y, x+1, y+1)
			if c.Pixels == 0 {
				c.Bounds = px
			} else {
				c.Bounds = c.Bounds.Union(px)
			}
			c.Pixels++
		}
	}

	return comps
}

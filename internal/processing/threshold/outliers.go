package threshold

import (
	"fmt"

	"texture-extractor/internal/models"
)

// Which selects the outliers RemoveOutliers replaces.
type Which int

const (
	Bright Which = iota
	Dark
)

func (w Which) String() string {
	switch w {
	case Bright:
		return "bright"
	case Dark:
		return "dark"
	default:
		return fmt.Sprintf("Which(%d)", int(w))
	}
}

// ParseWhich accepts "bright" and "dark". An empty string means bright.
func ParseWhich(s string) (Which, error) {
	switch s {
	case "", "bright":
		return Bright, nil
	case "dark":
		return Dark, nil
	default:
		return Bright, fmt.Errorf("%w: unknown outlier kind %q", models.ErrInvalidParameter, s)
	}
}

const (
	DefaultOutlierRadius    = 50
	DefaultOutlierThreshold = 50
)

// OutlierOptions configures RemoveOutliers. Radius 0 disables the filter.
type OutlierOptions struct {
	Radius    int
	Threshold int
	Which     Which
}

func DefaultOutlierOptions() OutlierOptions {
	return OutlierOptions{
		Radius:    DefaultOutlierRadius,
		Threshold: DefaultOutlierThreshold,
		Which:     Bright,
	}
}

func (o OutlierOptions) Validate() error {
	if o.Radius < 0 {
		return fmt.Errorf("%w: outlier radius must be non-negative, got %d", models.ErrInvalidParameter, o.Radius)
	}
	if o.Threshold < 0 || o.Threshold > 255 {
		return fmt.Errorf("%w: outlier threshold must be between 0 and 255, got %d", models.ErrInvalidParameter, o.Threshold)
	}
	if o.Which != Bright && o.Which != Dark {
		return fmt.Errorf("%w: unknown outlier kind %d", models.ErrInvalidParameter, int(o.Which))
	}
	return nil
}

// RemoveOutliers replaces a pixel by the median of the (2r+1)x(2r+1) window
// around it, clipped to the image, when it deviates from that median by more
// than the threshold in the selected direction. The median of an even-sized
// window is the lower one.
func RemoveOutliers(src *models.Grid, opts OutlierOptions) (*models.Grid, error) {
	if err := src.Validate("remove outliers"); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	out := src.Clone()
	if opts.Radius == 0 {
		return out, nil
	}

	r := opts.Radius
	threshold := opts.Threshold

	for y := 0; y < src.Height; y++ {
		top, bottom := max(0, y-r), min(src.Height-1, y+r)

		var window [256]int
		count := 0
		addColumn := func(x, delta int) {
			for yy := top; yy <= bottom; yy++ {
				window[src.Pix[yy*src.Width+x]] += delta
			}
			count += delta * (bottom - top + 1)
		}

		for x := 0; x <= min(r, src.Width-1); x++ {
			addColumn(x, 1)
		}

		for x := 0; x < src.Width; x++ {
			if x > 0 {
				if in := x + r; in < src.Width {
					addColumn(in, 1)
				}
				if outCol := x - r - 1; outCol >= 0 {
					addColumn(outCol, -1)
				}
			}

			v := int(src.Pix[y*src.Width+x])
			median := lowerMedian(&window, count)

			switch opts.Which {
			case Bright:
				if v-median > threshold {
					out.Pix[y*src.Width+x] = uint8(median)
				}
			case Dark:
				if median-v > threshold {
					out.Pix[y*src.Width+x] = uint8(median)
				}
			}
		}
	}

	return out, nil
}

func lowerMedian(window *[256]int, count int) int {
	cumulative := 0
	for v, n := range window {
		cumulative += n
		if 2*cumulative >= count {
			return v
		}
	}
	return 255
}

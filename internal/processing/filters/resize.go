package filters

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"golang.org/x/image/draw"

	"texture-extractor/internal/models"
)

// MaxResizeDimension bounds each side of a resized image.
const MaxResizeDimension = 32768

type Interpolation string

const (
	InterpolationNone     Interpolation = "none"
	InterpolationBilinear Interpolation = "bilinear"
	InterpolationBicubic  Interpolation = "bicubic"
)

func ParseInterpolation(s string) (Interpolation, error) {
	switch m := Interpolation(strings.ToLower(strings.TrimSpace(s))); m {
	case InterpolationNone, InterpolationBilinear, InterpolationBicubic:
		return m, nil
	case "":
		return InterpolationBilinear, nil
	default:
		return "", fmt.Errorf("%w: unknown interpolation %q, expected none, bilinear or bicubic",
			models.ErrInvalidParameter, s)
	}
}

// ParseSize resolves a target size for a width x height image. Accepted
// forms are "WxH", "Wx" and "xH", where a missing side keeps the aspect
// ratio, and "P%" which scales both sides by P percent.
func ParseSize(size string, width, height int) (int, int, error) {
	s := strings.ToLower(strings.TrimSpace(size))
	if s == "" {
		return 0, 0, fmt.Errorf("%w: empty size", models.ErrInvalidParameter)
	}

	var w, h int
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		p, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil || p <= 0 {
			return 0, 0, fmt.Errorf("%w: invalid percentage %q", models.ErrInvalidParameter, size)
		}
		w = int(float64(width) * (p / 100))
		h = int(float64(height) * (p / 100))
	} else {
		ws, hs, _ := strings.Cut(s, "x")
		w = parseSide(ws)
		h = parseSide(hs)
		switch {
		case w == 0 && h == 0:
			return 0, 0, fmt.Errorf("%w: size %q needs a width or a height", models.ErrInvalidParameter, size)
		case h == 0:
			h = int(float64(w) * float64(height) / float64(width))
		case w == 0:
			w = int(float64(h) * float64(width) / float64(height))
		}
	}

	if err := validateSize(w, h); err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", size, err)
	}
	return w, h, nil
}

func validateSize(w, h int) error {
	if w <= 0 || h <= 0 || w > MaxResizeDimension || h > MaxResizeDimension {
		return fmt.Errorf("%w: target size %dx%d outside 1..%d", models.ErrInvalidParameter, w, h, MaxResizeDimension)
	}
	return nil
}

// parseSide reads one side of a WxH size; anything unparsable counts as
// missing.
func parseSide(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

// Resize scales src to width x height. Source and destination are aligned
// on their centres; bilinear sampling shifts the destination centre by a
// quarter of the scale factor along each resized axis and clamps samples to
// the source.
func Resize(src *models.Grid, width, height int, method Interpolation) (*models.Grid, error) {
	if err := src.Validate("resize"); err != nil {
		return nil, err
	}
	if err := validateSize(width, height); err != nil {
		return nil, err
	}
	if width == src.Width && height == src.Height {
		return src.Clone(), nil
	}

	switch method {
	case InterpolationBicubic:
		dst := image.NewGray(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src.Image(), src.Bounds(), draw.Src, nil)
		return models.GridFromImage(dst)
	case InterpolationNone, InterpolationBilinear:
	default:
		return nil, fmt.Errorf("%w: unknown interpolation %q", models.ErrInvalidParameter, method)
	}

	out, err := models.NewGrid(width, height)
	if err != nil {
		return nil, err
	}

	bilinear := method == InterpolationBilinear
	xScale := float64(width) / float64(src.Width)
	yScale := float64(height) / float64(src.Height)
	srcCX, srcCY := float64(src.Width)/2, float64(src.Height)/2
	dstCX, dstCY := float64(width)/2, float64(height)/2
	if bilinear {
		if width != src.Width {
			dstCX += xScale / 4
		}
		if height != src.Height {
			dstCY += yScale / 4
		}
	}

	parallelRows(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			ys := (float64(y)-dstCY)/yScale + srcCY
			if bilinear {
				ys = clampSample(ys, src.Height)
			}
			for x := 0; x < width; x++ {
				xs := (float64(x)-dstCX)/xScale + srcCX
				if !bilinear {
					out.Pix[y*width+x] = src.At(min(int(xs), src.Width-1), min(int(ys), src.Height-1))
					continue
				}
				xs = clampSample(xs, src.Width)
				out.Pix[y*width+x] = uint8(int(interpolate(src, xs, ys)+0.5) & 255)
			}
		}
	})

	return out, nil
}

// clampSample keeps v inside [0, n-1) so that v and its right neighbour are
// both valid indexes.
func clampSample(v float64, n int) float64 {
	if n == 1 || v < 0 {
		return 0
	}
	if v >= float64(n-1) {
		return float64(n) - 1.001
	}
	return v
}

func interpolate(src *models.Grid, x, y float64) float64 {
	x0, y0 := int(x), int(y)
	x1, y1 := min(x0+1, src.Width-1), min(y0+1, src.Height-1)
	fx, fy := x-float64(x0), y-float64(y0)

	lowerLeft := float64(src.At(x0, y0))
	lowerRight := float64(src.At(x1, y0))
	upperLeft := float64(src.At(x0, y1))
	upperRight := float64(src.At(x1, y1))

	upper := upperLeft + fx*(upperRight-upperLeft)
	lower := lowerLeft + fx*(lowerRight-lowerLeft)
	return lower + fy*(upper-lower)
}

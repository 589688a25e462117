package models

import (
	"fmt"
	"image"
	"image/color"
)

// Grid is a row-major 8-bit single-channel pixel buffer.
type Grid struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGrid allocates a zero-filled grid.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImage, width, height)
	}

	return &Grid{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}, nil
}

// GridFromPix wraps pix without copying it.
func GridFromPix(width, height int, pix []uint8) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImage, width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d grid", ErrInvalidImage, len(pix), width, height)
	}

	return &Grid{Width: width, Height: height, Pix: pix}, nil
}

// GridFromImage converts any image to 8-bit gray using the luma weights of
// color.GrayModel. The result is anchored at (0,0).
func GridFromImage(img image.Image) (*Grid, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: input image is nil", ErrInvalidImage)
	}

	bounds := img.Bounds()
	grid, err := NewGrid(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	if gray, ok := img.(*image.Gray); ok {
		for y := 0; y < grid.Height; y++ {
			start := gray.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(grid.Pix[y*grid.Width:(y+1)*grid.Width], gray.Pix[start:start+grid.Width])
		}
		return grid, nil
	}

	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			c := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			grid.Pix[y*grid.Width+x] = c.Y
		}
	}

	return grid, nil
}

// Validate reports whether the grid is usable as input for operation.
func (g *Grid) Validate(operation string) error {
	if g == nil {
		return fmt.Errorf("%w: grid is nil for operation: %s", ErrInvalidImage, operation)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: grid has invalid dimensions %dx%d for operation: %s",
			ErrInvalidImage, g.Width, g.Height, operation)
	}
	if len(g.Pix) != g.Width*g.Height {
		return fmt.Errorf("%w: grid holds %d pixels, want %d for operation: %s",
			ErrInvalidImage, len(g.Pix), g.Width*g.Height, operation)
	}
	return nil
}

func (g *Grid) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

func (g *Grid) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// Inside reports whether (x, y) addresses a pixel of the grid.
func (g *Grid) Inside(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// Bounds returns the grid rectangle anchored at the origin.
func (g *Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

func (g *Grid) Clone() *Grid {
	pix := make([]uint8, len(g.Pix))
	copy(pix, g.Pix)
	return &Grid{Width: g.Width, Height: g.Height, Pix: pix}
}

// SameSize reports whether both grids share width and height.
func (g *Grid) SameSize(other *Grid) bool {
	return other != nil && g.Width == other.Width && g.Height == other.Height
}

// Crop copies r out of the grid. Rectangles that extend past the grid are
// clipped; a rectangle that does not overlap the grid is an error.
func (g *Grid) Crop(r image.Rectangle) (*Grid, error) {
	clipped := r.Intersect(g.Bounds())
	if clipped.Empty() {
		return nil, fmt.Errorf("%w: crop %v outside %dx%d grid", ErrInvalidParameter, r, g.Width, g.Height)
	}

	out, err := NewGrid(clipped.Dx(), clipped.Dy())
	if err != nil {
		return nil, err
	}

	for y := 0; y < out.Height; y++ {
		src := (clipped.Min.Y+y)*g.Width + clipped.Min.X
		copy(out.Pix[y*out.Width:(y+1)*out.Width], g.Pix[src:src+out.Width])
	}

	return out, nil
}

// Image exposes the grid as a standard library gray image sharing no memory
// with the grid.
func (g *Grid) Image() *image.Gray {
	img := image.NewGray(g.Bounds())
	copy(img.Pix, g.Pix)
	return img
}

// FloatGrid holds per-pixel accumulations before they are rescaled to bytes.
type FloatGrid struct {
	Width  int
	Height int
	Values []float64
}

func NewFloatGrid(width, height int) *FloatGrid {
	return &FloatGrid{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
}

// RGBGrid is a packed three-channel composite, R G B per pixel.
type RGBGrid struct {
	Width  int
	Height int
	Pix    []uint8
}

func NewRGBGrid(width, height int) *RGBGrid {
	return &RGBGrid{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// RGBAt returns the three channels of pixel (x, y).
func (g *RGBGrid) RGBAt(x, y int) (r, gr, b uint8) {
	i := (y*g.Width + x) * 3
	return g.Pix[i], g.Pix[i+1], g.Pix[i+2]
}

func (g *RGBGrid) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	for i, j := 0, 0; i < len(g.Pix); i, j = i+3, j+4 {
		img.Pix[j] = g.Pix[i]
		img.Pix[j+1] = g.Pix[i+1]
		img.Pix[j+2] = g.Pix[i+2]
		img.Pix[j+3] = 255
	}
	return img
}

// Label states used by LabelGrid.
const (
	LabelBackground int32 = 0
	LabelPending    int32 = -1
)

// LabelGrid assigns every pixel a component id. 0 is background, -1 is
// foreground not yet reached by the flood fill, n >= 1 is component n.
type LabelGrid struct {
	Width  int
	Height int
	Labels []int32
}

func NewLabelGrid(width, height int) *LabelGrid {
	return &LabelGrid{
		Width:  width,
		Height: height,
		Labels: make([]int32, width*height),
	}
}

func (l *LabelGrid) At(x, y int) int32 {
	return l.Labels[y*l.Width+x]
}

func (l *LabelGrid) Set(x, y int, label int32) {
	l.Labels[y*l.Width+x] = label
}

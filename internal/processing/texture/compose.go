package texture

import (
	"fmt"

	"texture-extractor/internal/models"
)

// Compose merges up to three equally sized maps into the R, G and B
// channels in argument order. Channels without a map stay zero.
func Compose(maps ...*models.Grid) (*models.RGBGrid, error) {
	if len(maps) == 0 || len(maps) > 3 {
		return nil, fmt.Errorf("%w: compose needs 1 to 3 maps, got %d", models.ErrInvalidParameter, len(maps))
	}
	for i, m := range maps {
		if err := m.Validate("compose"); err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}
		if !m.SameSize(maps[0]) {
			return nil, fmt.Errorf("%w: channel %d is %dx%d, expected %dx%d", models.ErrInvalidImage,
				i, m.Width, m.Height, maps[0].Width, maps[0].Height)
		}
	}

	out := models.NewRGBGrid(maps[0].Width, maps[0].Height)
	for c, m := range maps {
		for i, v := range m.Pix {
			out.Pix[i*3+c] = v
		}
	}
	return out, nil
}

// Regrey collapses an RGB grid with the unweighted channel mean.
func Regrey(rgb *models.RGBGrid) *models.Grid {
	out := &models.Grid{
		Width:  rgb.Width,
		Height: rgb.Height,
		Pix:    make([]uint8, rgb.Width*rgb.Height),
	}
	for i := range out.Pix {
		sum := int(rgb.Pix[i*3]) + int(rgb.Pix[i*3+1]) + int(rgb.Pix[i*3+2])
		out.Pix[i] = uint8(sum / 3)
	}
	return out
}

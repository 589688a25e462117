package filters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texture-extractor/internal/models"
)

func uniformGrid(t *testing.T, w, h int, v uint8) *models.Grid {
	t.Helper()
	g, err := models.NewGrid(w, h)
	require.NoError(t, err)
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func splitGrid(t *testing.T, w, h int, vertical bool) *models.Grid {
	t.Helper()
	g, err := models.NewGrid(w, h)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (vertical && x >= w/2) || (!vertical && y < h/2) {
				g.Set(x, y, 255)
			}
		}
	}
	return g
}

func TestRescaleValues(t *testing.T) {
	t.Parallel()

	t.Run("identity on full byte range", func(t *testing.T) {
		values := make([]float64, 256)
		for i := range values {
			values[i] = float64(i)
		}
		out := RescaleValues(values)
		for i, v := range out {
			assert.Equal(t, uint8(i), v)
		}
	})

	t.Run("stretches narrow range", func(t *testing.T) {
		out := RescaleValues([]float64{10, 15, 20})
		assert.Equal(t, []uint8{0, 127, 255}, out)
	})

	t.Run("flat input maps to zero", func(t *testing.T) {
		out := RescaleValues([]float64{3, 3, 3})
		assert.Equal(t, []uint8{0, 0, 0}, out)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, RescaleValues(nil))
	})
}

func TestCoarseness(t *testing.T) {
	t.Parallel()

	t.Run("step edge picks smallest winning scale", func(t *testing.T) {
		src := splitGrid(t, 64, 64, true)
		out, err := Coarseness(src, DefaultMaxWindowSize)
		require.NoError(t, err)

		assert.Equal(t, uint8(42), out.At(32, 32))
		assert.Equal(t, uint8(168), out.At(33, 32))
	})

	t.Run("uniform image has no texture", func(t *testing.T) {
		out, err := Coarseness(uniformGrid(t, 32, 32, 90), DefaultMaxWindowSize)
		require.NoError(t, err)
		for _, v := range out.Pix {
			assert.Equal(t, uint8(0), v)
		}
	})

	t.Run("window size out of range", func(t *testing.T) {
		src := uniformGrid(t, 8, 8, 1)
		for _, size := range []int{0, -1, MaxWindowSizeLimit + 1} {
			_, err := Coarseness(src, size)
			assert.ErrorIs(t, err, models.ErrInvalidParameter)
		}
	})

	t.Run("nil grid", func(t *testing.T) {
		_, err := Coarseness(nil, DefaultMaxWindowSize)
		assert.ErrorIs(t, err, models.ErrInvalidImage)
	})
}

func TestContrast(t *testing.T) {
	t.Parallel()

	t.Run("uniform image", func(t *testing.T) {
		out, err := Contrast(uniformGrid(t, 16, 16, 200), DefaultContrastMargin)
		require.NoError(t, err)
		for _, v := range out.Pix {
			assert.Equal(t, uint8(0), v)
		}
	})

	t.Run("edge region is the most contrasted", func(t *testing.T) {
		src := splitGrid(t, 32, 32, true)
		out, err := Contrast(src, 2)
		require.NoError(t, err)

		assert.Equal(t, uint8(0), out.At(2, 16))
		assert.Equal(t, uint8(0), out.At(29, 16))
		assert.Greater(t, out.At(16, 16), uint8(0))
	})

	t.Run("margin validation", func(t *testing.T) {
		src := uniformGrid(t, 12, 20, 1)
		_, err := Contrast(src, 6)
		assert.ErrorIs(t, err, models.ErrInvalidParameter)
		_, err = Contrast(src, -1)
		assert.ErrorIs(t, err, models.ErrInvalidParameter)
		_, err = Contrast(src, 5)
		assert.NoError(t, err)
	})
}

func TestDirectionality(t *testing.T) {
	t.Parallel()

	t.Run("vertical edge", func(t *testing.T) {
		out, err := Directionality(splitGrid(t, 8, 8, true))
		require.NoError(t, err)
		assert.Equal(t, uint8(127), out.At(4, 4))
		assert.Equal(t, uint8(0), out.At(1, 4))
	})

	t.Run("horizontal edge with bright top", func(t *testing.T) {
		out, err := Directionality(splitGrid(t, 8, 8, false))
		require.NoError(t, err)
		assert.Equal(t, uint8(255), out.At(4, 4))
	})

	t.Run("border stays zero", func(t *testing.T) {
		out, err := Directionality(splitGrid(t, 8, 8, false))
		require.NoError(t, err)
		for x := 0; x < 8; x++ {
			assert.Equal(t, uint8(0), out.At(x, 0))
			assert.Equal(t, uint8(0), out.At(x, 7))
		}
	})

	t.Run("uniform image", func(t *testing.T) {
		out, err := Directionality(uniformGrid(t, 8, 8, 40))
		require.NoError(t, err)
		for _, v := range out.Pix {
			assert.Equal(t, uint8(0), v)
		}
	})
}

func TestLocalBinaryPattern(t *testing.T) {
	t.Parallel()

	src, err := models.GridFromPix(3, 3, []uint8{
		3, 6, 2,
		7, 5, 4,
		8, 1, 9,
	})
	require.NoError(t, err)

	out, err := LocalBinaryPattern(src)
	require.NoError(t, err)

	assert.Equal(t, uint8(170), out.At(1, 1))
	for i, v := range out.Pix {
		if i != 4 {
			assert.Equal(t, uint8(0), v, "border pixel %d", i)
		}
	}

	t.Run("bright pixels compare unsigned", func(t *testing.T) {
		bright, err := models.GridFromPix(3, 3, []uint8{
			200, 200, 200,
			200, 100, 200,
			200, 200, 200,
		})
		require.NoError(t, err)
		out, err := LocalBinaryPattern(bright)
		require.NoError(t, err)
		assert.Equal(t, uint8(255), out.At(1, 1))
	})

	t.Run("tiny image", func(t *testing.T) {
		out, err := LocalBinaryPattern(uniformGrid(t, 2, 2, 9))
		require.NoError(t, err)
		assert.Equal(t, []uint8{0, 0, 0, 0}, out.Pix)
	})
}

func TestInvariantFeatureHistogram(t *testing.T) {
	t.Parallel()

	t.Run("uniform interior saturates", func(t *testing.T) {
		out, err := InvariantFeatureHistogram(uniformGrid(t, 24, 24, 100))
		require.NoError(t, err)
		for y := invariantOuterRange; y < 24-invariantOuterRange; y++ {
			for x := invariantOuterRange; x < 24-invariantOuterRange; x++ {
				assert.Equal(t, uint8(255), out.At(x, y))
			}
		}
		assert.Less(t, out.At(0, 0), uint8(255))
	})

	t.Run("black image", func(t *testing.T) {
		out, err := InvariantFeatureHistogram(uniformGrid(t, 12, 12, 0))
		require.NoError(t, err)
		for _, v := range out.Pix {
			assert.Equal(t, uint8(0), v)
		}
	})
}

func gradientGrid(t *testing.T, w, h int) *models.Grid {
	t.Helper()
	g, err := models.NewGrid(w, h)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Set(x, y, uint8(x+10*y))
		}
	}
	return g
}

func TestLocalSupportOnGradient(t *testing.T) {
	t.Parallel()

	g := gradientGrid(t, 20, 20)

	// At (4, 5) all 16 radius-4 samples and 8 of the radius-8 samples land
	// inside; the other radius-8 samples fall off the left or top edge.
	// Pairs with both samples inside, in angle order:
	pairs := [][2]float64{
		{58, 134}, {67, 120},
		{21, 9}, {12, 21}, {13, 52}, {15, 91}, {26, 109}, {37, 127},
	}
	var sum float64
	for _, p := range pairs {
		sum += math.Sqrt(p[0] * p[1])
	}
	assert.InDelta(t, sum/24, localSupport(g, 4, 5), 1e-9)
	assert.InDelta(t, 16.340738116097242, localSupport(g, 4, 5), 1e-9)

	assert.InDelta(t, 25.397356056817713, localSupport(g, 3, 8), 1e-9)
}

func TestFiltersKeepDimensions(t *testing.T) {
	t.Parallel()

	filters := map[string]func(*models.Grid) (*models.Grid, error){
		"coarseness":     func(g *models.Grid) (*models.Grid, error) { return Coarseness(g, DefaultMaxWindowSize) },
		"contrast":       func(g *models.Grid) (*models.Grid, error) { return Contrast(g, 1) },
		"directionality": Directionality,
		"lbp":            LocalBinaryPattern,
		"invariant":      InvariantFeatureHistogram,
	}
	sizes := [][2]int{{13, 7}, {7, 13}, {3, 3}, {40, 5}}

	for name, fn := range filters {
		for _, size := range sizes {
			src := gradientGrid(t, size[0], size[1])
			out, err := fn(src)
			require.NoError(t, err, "%s on %dx%d", name, size[0], size[1])
			assert.Equal(t, size[0], out.Width, "%s width", name)
			assert.Equal(t, size[1], out.Height, "%s height", name)
			assert.Len(t, out.Pix, size[0]*size[1], name)
		}
	}
}

func TestParallelRowsCoversEveryRow(t *testing.T) {
	t.Parallel()

	const height = 257
	seen := make([]int, height)
	parallelRows(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			seen[y]++
		}
	})
	for y, n := range seen {
		assert.Equal(t, 1, n, "row %d", y)
	}
}

package segmentation

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texture-extractor/internal/models"
	"texture-extractor/internal/processing/threshold"
)

func canvas(t *testing.T, w, h int) *models.Grid {
	t.Helper()
	g, err := models.NewGrid(w, h)
	require.NoError(t, err)
	return g
}

func fillRect(g *models.Grid, r image.Rectangle, v uint8) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			g.Set(x, y, v)
		}
	}
}

func TestExtract_TwoBlobsRankedByArea(t *testing.T) {
	t.Parallel()

	src := canvas(t, 20, 20)
	fillRect(src, image.Rect(10, 10, 15, 15), 200)
	fillRect(src, image.Rect(2, 2, 5, 5), 200)

	blobs, err := Extract(src, Options{SourceID: "img-1", SourceTitle: "pills"})
	require.NoError(t, err)
	require.Len(t, blobs, 2)

	got := []image.Rectangle{blobs[0].Bounds, blobs[1].Bounds}
	want := []image.Rectangle{image.Rect(2, 2, 5, 5), image.Rect(10, 10, 15, 15)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 9, blobs[0].Pixels)
	assert.Equal(t, 25, blobs[1].Pixels)
	assert.Equal(t, "img-1", blobs[0].SourceID)
	assert.Equal(t, "pills (object)", blobs[1].Source)
	assert.NotEqual(t, blobs[0].ID, blobs[1].ID)

	require.NotNil(t, blobs[0].Image)
	assert.Equal(t, 3, blobs[0].Image.Width)
	for _, v := range blobs[0].Image.Pix {
		assert.Equal(t, uint8(200), v)
	}
}

func TestExtract_NoForeground(t *testing.T) {
	t.Parallel()

	blobs, err := Extract(canvas(t, 10, 10), Options{})
	require.NoError(t, err)
	assert.Empty(t, blobs)
}

func TestExtract_AllForeground(t *testing.T) {
	t.Parallel()

	src := canvas(t, 6, 4)
	fillRect(src, src.Bounds(), 90)

	blobs, err := Extract(src, Options{})
	require.NoError(t, err)
	require.Len(t, blobs, 1)
	assert.Equal(t, src.Bounds(), blobs[0].Bounds)
	assert.Equal(t, 24, blobs[0].Pixels)
}

func TestExtract_OutlierFilterDropsSpecks(t *testing.T) {
	t.Parallel()

	src := canvas(t, 40, 40)
	fillRect(src, image.Rect(10, 10, 30, 30), 255)
	src.Set(3, 3, 255)

	blobs, err := Extract(src, Options{Radius: 3, Threshold: 50})
	require.NoError(t, err)
	require.Len(t, blobs, 1)
	assert.True(t, blobs[0].Bounds.In(image.Rect(10, 10, 30, 30)))
}

func TestExtract_InvalidOptions(t *testing.T) {
	t.Parallel()

	src := canvas(t, 4, 4)
	_, err := Extract(src, Options{Radius: -1})
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	_, err = Extract(src, Options{Threshold: 300})
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	_, err = Extract(nil, Options{})
	assert.ErrorIs(t, err, models.ErrInvalidImage)
}

type stubDenoiser struct {
	mask *models.Grid
	err  error
}

func (s stubDenoiser) Mask(context.Context, *models.Grid, threshold.OutlierOptions) (*models.Grid, error) {
	return s.mask, s.err
}

func TestDenoise_ZeroesOutsideMask(t *testing.T) {
	t.Parallel()

	src, err := models.GridFromPix(3, 1, []uint8{5, 6, 7})
	require.NoError(t, err)
	mask, err := models.GridFromPix(3, 1, []uint8{0, 255, 0})
	require.NoError(t, err)

	working, gotMask, err := Denoise(context.Background(), stubDenoiser{mask: mask}, src, threshold.OutlierOptions{})
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 6, 0}, working.Pix)
	assert.Equal(t, mask, gotMask)
	assert.Equal(t, []uint8{5, 6, 7}, src.Pix)
}

func TestDenoise_DenoiserErrors(t *testing.T) {
	t.Parallel()

	src := canvas(t, 3, 3)
	boom := errors.New("boom")

	_, _, err := Denoise(context.Background(), stubDenoiser{err: boom}, src, threshold.OutlierOptions{})
	assert.ErrorIs(t, err, boom)

	_, _, err = Denoise(context.Background(), stubDenoiser{mask: canvas(t, 2, 2)}, src, threshold.OutlierOptions{})
	assert.ErrorIs(t, err, models.ErrInvalidImage)
}

func TestLabelComponents(t *testing.T) {
	t.Parallel()

	t.Run("diagonal pixels are connected", func(t *testing.T) {
		mask := canvas(t, 6, 6)
		mask.Set(1, 1, 255)
		mask.Set(2, 2, 255)
		mask.Set(3, 3, 255)
		mask.Set(4, 1, 255)

		labels := Binarize(mask)
		require.Equal(t, 2, LabelComponents(labels))
		assert.Equal(t, int32(1), labels.At(3, 3))
		assert.Equal(t, int32(2), labels.At(4, 1))
	})

	t.Run("border-only region is never seeded", func(t *testing.T) {
		mask := canvas(t, 5, 5)
		mask.Set(0, 0, 255)
		mask.Set(1, 0, 255)

		labels := Binarize(mask)
		assert.Equal(t, 0, LabelComponents(labels))
		assert.Equal(t, models.LabelPending, labels.At(0, 0))
	})

	t.Run("interior seed grows onto the border", func(t *testing.T) {
		mask := canvas(t, 5, 5)
		mask.Set(0, 0, 255)
		mask.Set(1, 1, 255)

		labels := Binarize(mask)
		require.Equal(t, 1, LabelComponents(labels))
		comps := ComponentBounds(labels, 1)
		want := []Component{{Label: 1, Bounds: image.Rect(0, 0, 2, 2), Pixels: 2}}
		if diff := cmp.Diff(want, comps); diff != "" {
			t.Errorf("components mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("large region does not recurse", func(t *testing.T) {
		mask := canvas(t, 512, 512)
		fillRect(mask, mask.Bounds(), 255)

		labels := Binarize(mask)
		require.Equal(t, 1, LabelComponents(labels))
		comps := ComponentBounds(labels, 1)
		assert.Equal(t, 512*512, comps[0].Pixels)
	})
}

func TestComponentBounds_Empty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ComponentBounds(models.NewLabelGrid(3, 3), 0))
}

type stubLabeler struct {
	comps []Component
	err   error
}

func (s stubLabeler) Components(context.Context, *models.Grid) ([]Component, error) {
	return s.comps, s.err
}

func TestExtract_UsesLabeler(t *testing.T) {
	t.Parallel()

	src := canvas(t, 8, 8)
	fillRect(src, image.Rect(1, 1, 7, 7), 200)

	blobs, err := Extract(src, Options{Labeler: stubLabeler{comps: []Component{
		{Label: 1, Bounds: image.Rect(1, 1, 7, 7), Pixels: 36},
		{Label: 2, Bounds: image.Rect(2, 2, 3, 3), Pixels: 1},
	}}})
	require.NoError(t, err)
	require.Len(t, blobs, 2)
	assert.Equal(t, int32(2), blobs[0].Label)
	assert.Equal(t, 1, blobs[0].Pixels)

	boom := errors.New("boom")
	_, err = Extract(src, Options{Labeler: stubLabeler{err: boom}})
	assert.ErrorIs(t, err, boom)
}

func TestFloodFillLabeler(t *testing.T) {
	t.Parallel()

	mask := canvas(t, 8, 6)
	fillRect(mask, image.Rect(0, 0, 3, 1), 255)
	fillRect(mask, image.Rect(5, 1, 7, 4), 255)
	fillRect(mask, image.Rect(1, 3, 3, 5), 255)

	comps, err := FloodFillLabeler{}.Components(context.Background(), mask)
	require.NoError(t, err)
	want := []Component{
		{Label: 1, Bounds: image.Rect(5, 1, 7, 4), Pixels: 6},
		{Label: 2, Bounds: image.Rect(1, 3, 3, 5), Pixels: 4},
	}
	if diff := cmp.Diff(want, comps); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = FloodFillLabeler{}.Components(ctx, mask)
	assert.ErrorIs(t, err, context.Canceled)
}

package catalog

import (
	"context"
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texture-extractor/internal/logger"
	"texture-extractor/internal/models"
)

func openCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleImage(t *testing.T) *models.ImageData {
	t.Helper()
	gray, err := models.GridFromPix(2, 2, []uint8{0, 10, 10, 255})
	require.NoError(t, err)
	return models.NewImageData("tiles", "tiles.png", "png", gray.Image(), gray)
}

func TestOpen_MigratesToLatest(t *testing.T) {
	t.Parallel()

	c := openCatalog(t)
	version, dirty, err := c.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	require.NoError(t, c.MigrateUp())

	require.NoError(t, c.MigrateDown())
	version, _, err = c.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.db")
	img := sampleImage(t)

	c, err := Open(path, logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.RecordImage(context.Background(), img))
	require.NoError(t, c.RecordImage(context.Background(), img))
	require.NoError(t, c.Close())

	c, err = Open(path, logger.NewNop())
	require.NoError(t, err)
	defer c.Close()

	var count int
	require.NoError(t, c.db.QueryRow(`SELECT COUNT(*) FROM images`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRecordDescriptor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := openCatalog(t)
	img := sampleImage(t)
	require.NoError(t, c.RecordImage(ctx, img))

	res := &models.ProcessingResult{
		ImageID:     img.ID,
		Algorithm:   "lbp",
		Parameters:  map[string]interface{}{"max_window_size": 6},
		Output:      img.Gray,
		ProcessTime: 1500 * time.Microsecond,
	}
	id, err := c.RecordDescriptor(ctx, res)
	require.NoError(t, err)
	assert.Positive(t, id)

	records, err := c.Descriptors(ctx, img.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "lbp", r.Algorithm)
	assert.Equal(t, map[string]interface{}{"max_window_size": float64(6)}, r.Parameters)
	require.Len(t, r.Histogram, 256)
	assert.Equal(t, 2, r.Histogram[10])
	assert.InDelta(t, 68.75, r.Mean, 1e-9)
	assert.Equal(t, 1500*time.Microsecond, r.Duration)
}

func TestRecordDescriptor_UnknownImage(t *testing.T) {
	t.Parallel()

	c := openCatalog(t)
	img := sampleImage(t)

	_, err := c.RecordDescriptor(context.Background(), &models.ProcessingResult{
		ImageID: "missing", Algorithm: "lbp", Output: img.Gray,
	})
	assert.Error(t, err)

	_, err = c.RecordDescriptor(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrInvalidImage)
}

func TestRecordBlobs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := openCatalog(t)
	img := sampleImage(t)
	require.NoError(t, c.RecordImage(ctx, img))

	small := models.NewBlob(img.ID, img.Title, 2, image.Rect(0, 0, 1, 1), 1, nil)
	large := models.NewBlob(img.ID, img.Title, 1, image.Rect(0, 0, 2, 2), 3, nil)
	require.NoError(t, c.RecordBlobs(ctx, []models.Blob{small, large}))

	records, err := c.Blobs(ctx, img.ID)
	require.NoError(t, err)

	want := []BlobRecord{
		{ID: small.ID, ImageID: img.ID, Rank: 1, Label: 2, MaxX: 1, MaxY: 1, Pixels: 1, Source: "tiles (object)"},
		{ID: large.ID, ImageID: img.ID, Rank: 2, Label: 1, MaxX: 2, MaxY: 2, Pixels: 3, Source: "tiles (object)"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("blob records mismatch (-want +got):\n%s", diff)
	}

	err = c.RecordBlobs(ctx, []models.Blob{small})
	assert.Error(t, err)
	records, err = c.Blobs(ctx, img.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

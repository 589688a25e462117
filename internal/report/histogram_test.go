package report

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texture-extractor/internal/processing/histogram"
)

func sample() histogram.Histogram {
	var h histogram.Histogram
	h[0] = 40
	h[128] = 10
	h[255] = 25
	return h
}

func TestSaveHistogram(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "lbp-histogram.png")
	require.NoError(t, SaveHistogram(path, "lbp", sample()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Positive(t, cfg.Width)
	assert.Greater(t, cfg.Width, cfg.Height)
}

func TestWriteHistogram(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteHistogram(&buf, "PNG", "empty", histogram.Histogram{}))
	_, err := png.DecodeConfig(&buf)
	assert.NoError(t, err)

	assert.Error(t, WriteHistogram(&bytes.Buffer{}, "bogus", "x", sample()))
}

package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texture-extractor/internal/config"
	"texture-extractor/internal/processing/texture"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func gradientImage(size int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x*7 + y*3) % 256)})
		}
	}
	return img
}

func twoSquares() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 40, 40))
	for _, origin := range []image.Point{{5, 5}, {22, 22}} {
		for y := origin.Y; y < origin.Y+10; y++ {
			for x := origin.X; x < origin.X+10; x++ {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestParseArgs(t *testing.T) {
	var stderr bytes.Buffer

	opts, err := parseArgs([]string{"texture", "-mode", "tamura", "-out", "maps", "-histogram", "a.png", "b.png"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, commandTexture, opts.command)
	assert.Equal(t, "tamura", opts.mode)
	assert.Equal(t, "maps", opts.outDir)
	assert.True(t, opts.histogram)
	assert.Equal(t, []string{"a.png", "b.png"}, opts.images)
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"blur", "a.png"}},
		{"filter without images", []string{"filter", "-steps", "edge"}},
		{"no images", []string{"split", "-out", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args, &bytes.Buffer{})
			assert.ErrorIs(t, err, errUsage)
		})
	}
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mode":"invariant","backend":"go"}`), 0o644))

	cfg, err := loadConfig(options{configPath: path})
	require.NoError(t, err)
	assert.Equal(t, texture.ModeInvariant, cfg.GetMode())

	cfg, err = loadConfig(options{configPath: path, mode: "tamura"})
	require.NoError(t, err)
	assert.Equal(t, texture.ModeTamura, cfg.GetMode())
	assert.Equal(t, config.BackendGo, cfg.GetBackend())
}

func TestLoadConfigRejectsBadFlag(t *testing.T) {
	_, err := loadConfig(options{backend: "cuda"})
	assert.Error(t, err)
}

func TestRunTexture(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sample.png")
	writePNG(t, input, gradientImage(64))
	out := filepath.Join(dir, "out")

	var stderr bytes.Buffer
	err := run(context.Background(), []string{
		"texture", "-mode", "tamura", "-out", out, "-histogram",
		"-catalog", filepath.Join(dir, "catalog.db"), input,
	}, &stderr)
	require.NoError(t, err, stderr.String())

	for _, name := range []string{"sample-tamura.png", "sample-tamura-rgb.png", "sample-tamura-histogram.png"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
}

func TestParseArgsFilter(t *testing.T) {
	opts, err := parseArgs([]string{
		"filter", "-steps", "resize,edge", "-size", "x32", "-saturated", "1.5", "-equalize", "in.png",
	}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, commandFilter, opts.command)
	assert.Equal(t, "resize,edge", opts.steps)
	assert.Equal(t, "x32", opts.size)
	assert.True(t, opts.set["saturated"])
	assert.False(t, opts.set["interpolation"])

	cfg, err := loadConfig(opts)
	require.NoError(t, err)
	assert.Equal(t, "resize,edge", cfg.GetFilterSteps())
	assert.Equal(t, "x32", cfg.GetSize())
	assert.InDelta(t, 1.5, cfg.GetSaturated(), 1e-12)
	assert.True(t, cfg.GetEqualize())

	opts, err = parseArgs([]string{"filter", "in.png"}, &bytes.Buffer{})
	require.NoError(t, err)
	cfg, err = loadConfig(opts)
	require.NoError(t, err)
	assert.InDelta(t, 0.35, cfg.GetSaturated(), 1e-12)
	assert.False(t, cfg.GetEqualize())

	_, err = loadConfig(options{steps: "sharpen"})
	assert.Error(t, err)
}

func TestRunFilter(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sample.png")
	writePNG(t, input, gradientImage(64))
	out := filepath.Join(dir, "out")

	var stderr bytes.Buffer
	err := run(context.Background(), []string{
		"filter", "-steps", "resize,contrast,edge", "-size", "50%", "-out", out, "-histogram", input,
	}, &stderr)
	require.NoError(t, err, stderr.String())

	result := filepath.Join(out, "sample-filter.png")
	f, err := os.Open(result)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds())
	assert.FileExists(t, filepath.Join(out, "sample-filter-histogram.png"))

	err = run(context.Background(), []string{"filter", "-steps", "resize", "-size", "0x0", "-out", out, input}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid parameter")
}

func TestRunSplit(t *testing.T) {
	for _, backend := range []string{config.BackendGo, config.BackendOpenCV} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			input := filepath.Join(dir, "scene.png")
			writePNG(t, input, twoSquares())

			cfgPath := filepath.Join(dir, "config.json")
			require.NoError(t, os.WriteFile(cfgPath, []byte(`{"outlier_radius":1}`), 0o644))

			out := filepath.Join(dir, "objects")
			var stderr bytes.Buffer
			err := run(context.Background(), []string{
				"split", "-config", cfgPath, "-backend", backend, "-out", out, input,
			}, &stderr)
			require.NoError(t, err, stderr.String())

			matches, err := filepath.Glob(filepath.Join(out, "scene-object-*.png"))
			require.NoError(t, err)
			assert.Len(t, matches, 2)
		})
	}
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sample.png")
	writePNG(t, input, gradientImage(16))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, []string{"texture", "-out", dir, input}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

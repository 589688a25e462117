package pipeline

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

type Saver struct {
	logger        Logger
	timingTracker TimingTracker
}

func NewSaver(logger Logger, tracker TimingTracker) *Saver {
	return &Saver{logger: logger, timingTracker: tracker}
}

// FormatForPath maps a file extension to an encoder name, defaulting to png.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".tif", ".tiff":
		return "tiff"
	case ".bmp":
		return "bmp"
	default:
		return "png"
	}
}

// Extension returns the file extension written for format.
func Extension(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "tiff":
		return ".tif"
	case "bmp":
		return ".bmp"
	default:
		return ".png"
	}
}

func (s *Saver) SaveToWriter(writer io.Writer, img image.Image, format string) error {
	if img == nil {
		return fmt.Errorf("no image data to save")
	}

	ctx := s.timingTracker.StartTiming("save_to_writer")
	defer s.timingTracker.EndTiming(ctx)

	if format == "" {
		format = "png"
	}

	bounds := img.Bounds()
	s.logger.Debug("ImageSaver", "saving image", map[string]interface{}{
		"format": format,
		"width":  bounds.Dx(),
		"height": bounds.Dy(),
	})

	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(writer, img, &jpeg.Options{Quality: 95})
	case "tiff":
		err = tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Deflate})
	case "bmp":
		err = bmp.Encode(writer, img)
	case "png":
		err = png.Encode(writer, img)
	default:
		s.logger.Warning("ImageSaver", "format not supported, using PNG", map[string]interface{}{
			"requested_format": strings.ToUpper(format),
		})
		err = png.Encode(writer, img)
	}

	if err != nil {
		s.logger.Error("ImageSaver", err, map[string]interface{}{
			"format": format,
		})
		return err
	}

	return nil
}

// SaveToPath encodes img in the format implied by the path's extension.
func (s *Saver) SaveToPath(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := s.SaveToWriter(file, img, FormatForPath(path)); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	s.logger.Info("ImageSaver", "image saved", map[string]interface{}{
		"path": path,
	})
	return nil
}

package pipeline

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"texture-extractor/internal/models"
)

type Loader struct {
	logger        Logger
	timingTracker TimingTracker
	toGray        GrayConverter
}

// NewLoader decodes images and converts them with toGray, which defaults to
// models.GridFromImage.
func NewLoader(logger Logger, tracker TimingTracker, toGray GrayConverter) *Loader {
	if toGray == nil {
		toGray = models.GridFromImage
	}
	return &Loader{logger: logger, timingTracker: tracker, toGray: toGray}
}

func (l *Loader) LoadFromPath(path string) (*models.ImageData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	return l.LoadFromReader(file, path)
}

func (l *Loader) LoadFromReader(reader io.Reader, name string) (*models.ImageData, error) {
	ctx := l.timingTracker.StartTiming("load_from_reader")
	defer l.timingTracker.EndTiming(ctx)

	l.logger.Debug("ImageLoader", "loading image", map[string]interface{}{
		"path":      name,
		"extension": strings.ToLower(filepath.Ext(name)),
	})

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	l.logger.Debug("ImageLoader", "image data read", map[string]interface{}{
		"size_bytes": len(data),
	})

	return l.LoadFromBytes(data, name)
}

// LoadFromBytes decodes data; name supplies the title and the extension hint
// for the reported format.
func (l *Loader) LoadFromBytes(data []byte, name string) (*models.ImageData, error) {
	ctx := l.timingTracker.StartTiming("load_from_bytes")
	defer l.timingTracker.EndTiming(ctx)

	decodeCtx := l.timingTracker.StartTiming("decode")
	img, decodedFormat, err := image.Decode(bytes.NewReader(data))
	l.timingTracker.EndTiming(decodeCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	grayCtx := l.timingTracker.StartTiming("grayscale")
	gray, err := l.toGray(img)
	l.timingTracker.EndTiming(grayCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to grayscale: %w", err)
	}

	format := determineActualFormat(strings.ToLower(filepath.Ext(name)), decodedFormat)
	imageData := models.NewImageData(titleOf(name), name, format, img, gray)

	l.logger.Info("ImageLoader", "image loaded successfully", map[string]interface{}{
		"id":     imageData.ID,
		"width":  imageData.Width,
		"height": imageData.Height,
		"format": format,
	})

	return imageData, nil
}

func titleOf(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return "image"
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func determineActualFormat(extension, decodedFormat string) string {
	switch extension {
	case ".tiff", ".tif":
		return "tiff"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".bmp":
		return "bmp"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	default:
		if decodedFormat != "" {
			return decodedFormat
		}
		return "unknown"
	}
}

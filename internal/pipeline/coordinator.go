package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"texture-extractor/internal/algorithms"
	"texture-extractor/internal/debug/timing"
	"texture-extractor/internal/logger"
	"texture-extractor/internal/models"
)

// Coordinator drives one image at a time through loading, texture
// extraction or blob splitting, and saving.
type Coordinator struct {
	mu               sync.Mutex
	repository       *models.ImageRepository
	algorithmManager *algorithms.Manager
	blobProcessor    *algorithms.BlobProcessor
	loader           *Loader
	saver            *Saver
	logger           Logger
	timingTracker    TimingTracker
}

type CoordinatorOptions struct {
	// Logger defaults to a no-op logger.
	Logger Logger
	// TimingTracker defaults to a tracker without an observer.
	TimingTracker TimingTracker
	// ToGray defaults to models.GridFromImage.
	ToGray GrayConverter
	// BlobProcessor defaults to the pure Go denoiser.
	BlobProcessor *algorithms.BlobProcessor
}

func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	blobs := opts.BlobProcessor
	if blobs == nil {
		blobs = algorithms.NewBlobProcessor(nil)
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.TimingTracker == nil {
		opts.TimingTracker = timing.NewTracker(nil)
	}

	return &Coordinator{
		repository:       models.NewImageRepository(),
		algorithmManager: algorithms.NewManager(),
		blobProcessor:    blobs,
		loader:           NewLoader(opts.Logger, opts.TimingTracker, opts.ToGray),
		saver:            NewSaver(opts.Logger, opts.TimingTracker),
		logger:           opts.Logger,
		timingTracker:    opts.TimingTracker,
	}
}

func (c *Coordinator) Algorithms() *algorithms.Manager {
	return c.algorithmManager
}

// LoadImage decodes path and makes it the current original, discarding the
// results of the previous one.
func (c *Coordinator) LoadImage(path string) (*models.ImageData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	imageData, err := c.loader.LoadFromPath(path)
	if err != nil {
		return nil, err
	}

	c.repository.SetOriginalImage(imageData)
	return imageData, nil
}

// ProcessImage runs the named algorithm on the current original. Missing
// parameters are taken from the manager's stored values.
func (c *Coordinator) ProcessImage(ctx context.Context, algorithmName string, params map[string]interface{}) (*models.ProcessingResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	original := c.repository.GetOriginalImage()
	if original == nil {
		return nil, fmt.Errorf("no image loaded")
	}

	algorithm, err := c.algorithmManager.GetAlgorithm(algorithmName)
	if err != nil {
		return nil, err
	}

	merged := c.algorithmManager.GetParameters(algorithmName)
	for k, v := range params {
		merged[k] = v
	}

	c.logger.Debug("ImageProcessor", "processing started", map[string]interface{}{
		"algorithm": algorithmName,
		"width":     original.Width,
		"height":    original.Height,
	})

	timingCtx := c.timingTracker.StartTiming("process_" + algorithmName)
	start := time.Now()
	out, err := algorithm.Process(ctx, original.Gray, merged)
	c.timingTracker.EndTiming(timingCtx)
	if err != nil {
		c.logger.Error("ImageProcessor", err, map[string]interface{}{"algorithm": algorithmName})
		return nil, fmt.Errorf("algorithm processing failed: %w", err)
	}

	result := models.ProcessingResult{
		ImageID:     original.ID,
		Algorithm:   algorithmName,
		Parameters:  merged,
		Output:      out.Output,
		Composite:   out.Composite,
		ProcessTime: time.Since(start),
	}
	c.repository.AddResult(result)

	c.logger.Info("ImageProcessor", "processing completed", map[string]interface{}{
		"algorithm":  algorithmName,
		"duration":   result.ProcessTime.String(),
		"mean_value": out.Metrics["mean"],
	})

	return &result, nil
}

// ExtractBlobs splits the current original into ranked blobs.
func (c *Coordinator) ExtractBlobs(ctx context.Context, params map[string]interface{}) ([]models.Blob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	original := c.repository.GetOriginalImage()
	if original == nil {
		return nil, fmt.Errorf("no image loaded")
	}

	timingCtx := c.timingTracker.StartTiming("extract_blobs")
	blobs, err := c.blobProcessor.Process(ctx, original, params)
	c.timingTracker.EndTiming(timingCtx)
	if err != nil {
		c.logger.Error("BlobExtractor", err, map[string]interface{}{"image": original.Title})
		return nil, fmt.Errorf("blob extraction failed: %w", err)
	}

	c.logger.Info("BlobExtractor", "blobs extracted", map[string]interface{}{
		"image": original.Title,
		"count": len(blobs),
	})
	return blobs, nil
}

// SaveResult writes the gray map of result, and its composite when present
// next to it with a "-rgb" suffix.
func (c *Coordinator) SaveResult(path string, result *models.ProcessingResult) ([]string, error) {
	if result == nil || result.Output == nil {
		return nil, fmt.Errorf("no result to save")
	}

	if err := c.saver.SaveToPath(path, result.Output.Image()); err != nil {
		return nil, err
	}
	written := []string{path}

	if result.Composite != nil {
		ext := filepath.Ext(path)
		rgbPath := path[:len(path)-len(ext)] + "-rgb" + ext
		if err := c.saver.SaveToPath(rgbPath, result.Composite.Image()); err != nil {
			return written, err
		}
		written = append(written, rgbPath)
	}
	return written, nil
}

// SaveBlobs writes each blob into dir as <title>-object-<rank><ext>, rank
// starting at 1 for the smallest blob.
func (c *Coordinator) SaveBlobs(dir, title, format string, blobs []models.Blob) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(blobs))
	for i, blob := range blobs {
		path := filepath.Join(dir, fmt.Sprintf("%s-object-%d%s", title, i+1, Extension(format)))
		if err := c.saver.SaveToPath(path, blob.Image.Image()); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (c *Coordinator) GetOriginalImage() *models.ImageData {
	return c.repository.GetOriginalImage()
}

func (c *Coordinator) GetLatestResult() *models.ProcessingResult {
	return c.repository.GetLatestResult()
}

func (c *Coordinator) GetProcessingHistory() []models.ProcessingResult {
	return c.repository.GetProcessingHistory()
}

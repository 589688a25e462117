package models

import (
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ImageData represents a loaded image with its metadata.
type ImageData struct {
	ID       string
	Title    string
	Source   string
	Format   string
	Image    image.Image
	Gray     *Grid
	Width    int
	Height   int
	LoadTime time.Time
}

// NewImageData wraps a decoded image and its grayscale grid under a fresh id.
func NewImageData(title, source, format string, img image.Image, gray *Grid) *ImageData {
	data := &ImageData{
		ID:       uuid.NewString(),
		Title:    title,
		Source:   source,
		Format:   format,
		Image:    img,
		Gray:     gray,
		LoadTime: time.Now(),
	}
	if gray != nil {
		data.Width = gray.Width
		data.Height = gray.Height
	}
	return data
}

// ProcessingResult contains the output of one texture run.
type ProcessingResult struct {
	ImageID     string
	Algorithm   string
	Parameters  map[string]interface{}
	Output      *Grid
	Composite   *RGBGrid
	ProcessTime time.Duration
}

// ImageRepository keeps the current original image and a bounded history
// of results produced from it.
type ImageRepository struct {
	mu                sync.RWMutex
	originalImage     *ImageData
	processingHistory []ProcessingResult
	maxHistorySize    int
}

func NewImageRepository() *ImageRepository {
	return &ImageRepository{
		processingHistory: make([]ProcessingResult, 0),
		maxHistorySize:    10,
	}
}

// SetOriginalImage replaces the original image and drops the history
// computed from the previous one.
func (r *ImageRepository) SetOriginalImage(img *ImageData) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.originalImage = img
	r.processingHistory = r.processingHistory[:0]
}

func (r *ImageRepository) GetOriginalImage() *ImageData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.originalImage
}

func (r *ImageRepository) AddResult(result ProcessingResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.processingHistory = append(r.processingHistory, result)
	if len(r.processingHistory) > r.maxHistorySize {
		r.processingHistory = r.processingHistory[1:]
	}
}

// GetLatestResult returns the most recent result, or nil.
func (r *ImageRepository) GetLatestResult() *ProcessingResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.processingHistory) == 0 {
		return nil
	}
	latest := r.processingHistory[len(r.processingHistory)-1]
	return &latest
}

func (r *ImageRepository) GetProcessingHistory() []ProcessingResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := make([]ProcessingResult, len(r.processingHistory))
	copy(history, r.processingHistory)
	return history
}

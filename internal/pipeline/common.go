package pipeline

import (
	"context"
	"image"

	"texture-extractor/internal/models"
)

// Common interfaces used across pipeline components
type Logger interface {
	Debug(component string, message string, fields map[string]interface{})
	Info(component string, message string, fields map[string]interface{})
	Warning(component string, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}

type TimingTracker interface {
	StartTiming(operation string) context.Context
	EndTiming(ctx context.Context)
}

// GrayConverter turns a decoded image into the grid the algorithms consume.
type GrayConverter func(img image.Image) (*models.Grid, error)

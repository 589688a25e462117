package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"texture-extractor/internal/algorithms"
	"texture-extractor/internal/logger"
	"texture-extractor/internal/processing/filters"
	"texture-extractor/internal/processing/texture"
	"texture-extractor/internal/processing/threshold"
)

const maxFileSize = 1 * 1024 * 1024

const (
	BackendGo     = "go"
	BackendOpenCV = "opencv"
)

// Config holds every tunable of the extractor. Fields left out of a JSON
// file stay nil and the getters fall back to the defaults.
type Config struct {
	// Texture descriptors
	Mode           *string `json:"mode,omitempty"`
	MaxWindowSize  *int    `json:"max_window_size,omitempty"`
	ContrastMargin *int    `json:"contrast_margin,omitempty"`

	// Image filters
	FilterSteps   *string  `json:"filter_steps,omitempty"`
	Saturated     *float64 `json:"saturated,omitempty"`
	Equalize      *bool    `json:"equalize,omitempty"`
	Size          *string  `json:"size,omitempty"`
	Interpolation *string  `json:"interpolation,omitempty"`

	// Blob extraction
	OutlierRadius    *int    `json:"outlier_radius,omitempty"`
	OutlierThreshold *int    `json:"outlier_threshold,omitempty"`
	OutlierWhich     *string `json:"outlier_which,omitempty"`
	Backend          *string `json:"backend,omitempty"`

	// Output
	OutputFormat *string `json:"output_format,omitempty"`
	CatalogPath  *string `json:"catalog_path,omitempty"`

	// Logging
	LogLevel  *string `json:"log_level,omitempty"`
	LogFormat *string `json:"log_format,omitempty"`
}

func ptrInt(v int) *int           { return &v }
func ptrFloat(v float64) *float64 { return &v }
func ptrBool(v bool) *bool        { return &v }
func ptrString(v string) *string  { return &v }

// DefaultConfig returns a Config with every field set explicitly.
func DefaultConfig() *Config {
	return &Config{
		Mode:             ptrString(string(texture.ModeLBP)),
		MaxWindowSize:    ptrInt(filters.DefaultMaxWindowSize),
		ContrastMargin:   ptrInt(filters.DefaultContrastMargin),
		FilterSteps:      ptrString(algorithms.DefaultFilterSteps),
		Saturated:        ptrFloat(filters.DefaultSaturated),
		Equalize:         ptrBool(false),
		Size:             ptrString(""),
		Interpolation:    ptrString(string(filters.InterpolationBilinear)),
		OutlierRadius:    ptrInt(threshold.DefaultOutlierRadius),
		OutlierThreshold: ptrInt(threshold.DefaultOutlierThreshold),
		OutlierWhich:     ptrString(threshold.Bright.String()),
		Backend:          ptrString(BackendGo),
		OutputFormat:     ptrString("png"),
		CatalogPath:      ptrString(""),
		LogLevel:         ptrString("info"),
		LogFormat:        ptrString("console"),
	}
}

// Load reads a JSON config file. The path must end in .json and the file
// must be under 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the fields that are set.
func (c *Config) Validate() error {
	if c.Mode != nil {
		if _, err := texture.ParseMode(*c.Mode); err != nil {
			return err
		}
	}

	if c.MaxWindowSize != nil {
		if *c.MaxWindowSize < 1 || *c.MaxWindowSize > filters.MaxWindowSizeLimit {
			return fmt.Errorf("max_window_size must be between 1 and %d, got %d", filters.MaxWindowSizeLimit, *c.MaxWindowSize)
		}
	}

	if c.ContrastMargin != nil && *c.ContrastMargin < 0 {
		return fmt.Errorf("contrast_margin must be non-negative, got %d", *c.ContrastMargin)
	}

	if c.FilterSteps != nil {
		if _, err := filters.ParseSteps(*c.FilterSteps); err != nil {
			return err
		}
	}

	if c.Saturated != nil && (*c.Saturated < 0 || *c.Saturated >= 100) {
		return fmt.Errorf("saturated must be in [0, 100), got %v", *c.Saturated)
	}

	if c.Interpolation != nil {
		if _, err := filters.ParseInterpolation(*c.Interpolation); err != nil {
			return err
		}
	}

	outliers := threshold.OutlierOptions{Radius: c.GetOutlierRadius(), Threshold: c.GetOutlierThreshold()}
	if c.OutlierWhich != nil {
		which, err := threshold.ParseWhich(*c.OutlierWhich)
		if err != nil {
			return err
		}
		outliers.Which = which
	}
	if err := outliers.Validate(); err != nil {
		return err
	}

	if c.Backend != nil {
		switch *c.Backend {
		case BackendGo, BackendOpenCV:
		default:
			return fmt.Errorf("backend must be %q or %q, got %q", BackendGo, BackendOpenCV, *c.Backend)
		}
	}

	if c.OutputFormat != nil {
		switch *c.OutputFormat {
		case "png", "jpeg":
		default:
			return fmt.Errorf("output_format must be png or jpeg, got %q", *c.OutputFormat)
		}
	}

	if c.LogLevel != nil {
		if _, err := logger.ParseLevel(*c.LogLevel); err != nil {
			return err
		}
	}

	if c.LogFormat != nil {
		switch *c.LogFormat {
		case "console", "json":
		default:
			return fmt.Errorf("log_format must be console or json, got %q", *c.LogFormat)
		}
	}

	return nil
}

func (c *Config) GetMode() texture.Mode {
	if c.Mode == nil {
		return texture.ModeLBP
	}
	mode, err := texture.ParseMode(*c.Mode)
	if err != nil {
		return texture.ModeLBP
	}
	return mode
}

func (c *Config) GetMaxWindowSize() int {
	if c.MaxWindowSize == nil {
		return filters.DefaultMaxWindowSize
	}
	return *c.MaxWindowSize
}

func (c *Config) GetContrastMargin() int {
	if c.ContrastMargin == nil {
		return filters.DefaultContrastMargin
	}
	return *c.ContrastMargin
}

func (c *Config) GetFilterSteps() string {
	if c.FilterSteps == nil || *c.FilterSteps == "" {
		return algorithms.DefaultFilterSteps
	}
	return *c.FilterSteps
}

func (c *Config) GetSaturated() float64 {
	if c.Saturated == nil {
		return filters.DefaultSaturated
	}
	return *c.Saturated
}

func (c *Config) GetEqualize() bool {
	return c.Equalize != nil && *c.Equalize
}

// GetSize returns "" when images should keep their size.
func (c *Config) GetSize() string {
	if c.Size == nil {
		return ""
	}
	return *c.Size
}

func (c *Config) GetInterpolation() string {
	if c.Interpolation == nil || *c.Interpolation == "" {
		return string(filters.InterpolationBilinear)
	}
	return *c.Interpolation
}

func (c *Config) GetOutlierRadius() int {
	if c.OutlierRadius == nil {
		return threshold.DefaultOutlierRadius
	}
	return *c.OutlierRadius
}

func (c *Config) GetOutlierThreshold() int {
	if c.OutlierThreshold == nil {
		return threshold.DefaultOutlierThreshold
	}
	return *c.OutlierThreshold
}

func (c *Config) GetOutlierWhich() string {
	if c.OutlierWhich == nil || *c.OutlierWhich == "" {
		return threshold.Bright.String()
	}
	return *c.OutlierWhich
}

func (c *Config) GetBackend() string {
	if c.Backend == nil || *c.Backend == "" {
		return BackendGo
	}
	return *c.Backend
}

func (c *Config) GetOutputFormat() string {
	if c.OutputFormat == nil || *c.OutputFormat == "" {
		return "png"
	}
	return *c.OutputFormat
}

// GetCatalogPath returns "" when no catalog should be written.
func (c *Config) GetCatalogPath() string {
	if c.CatalogPath == nil {
		return ""
	}
	return *c.CatalogPath
}

func (c *Config) GetLogLevel() string {
	if c.LogLevel == nil || *c.LogLevel == "" {
		return "info"
	}
	return *c.LogLevel
}

func (c *Config) GetLogFormat() string {
	if c.LogFormat == nil || *c.LogFormat == "" {
		return "console"
	}
	return *c.LogFormat
}

// Params returns the parameter map for the named algorithm, or for blob
// extraction when name is "blobs". Unknown names get an empty map.
func (c *Config) Params(name string) map[string]interface{} {
	switch name {
	case "coarseness":
		return map[string]interface{}{algorithms.ParamMaxWindowSize: c.GetMaxWindowSize()}
	case "contrast":
		return map[string]interface{}{algorithms.ParamContrastMargin: c.GetContrastMargin()}
	case string(texture.ModeTamura):
		return map[string]interface{}{
			algorithms.ParamMaxWindowSize:  c.GetMaxWindowSize(),
			algorithms.ParamContrastMargin: c.GetContrastMargin(),
		}
	case algorithms.FilterName:
		return map[string]interface{}{
			algorithms.ParamSteps:         c.GetFilterSteps(),
			algorithms.ParamSaturated:     c.GetSaturated(),
			algorithms.ParamEqualize:      c.GetEqualize(),
			algorithms.ParamSize:          c.GetSize(),
			algorithms.ParamInterpolation: c.GetInterpolation(),
		}
	case "blobs":
		return map[string]interface{}{
			algorithms.ParamOutlierRadius:    c.GetOutlierRadius(),
			algorithms.ParamOutlierThreshold: c.GetOutlierThreshold(),
			algorithms.ParamOutlierWhich:     c.GetOutlierWhich(),
		}
	default:
		return map[string]interface{}{}
	}
}

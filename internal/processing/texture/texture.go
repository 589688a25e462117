// Package texture combines the per-pixel descriptors of the filters package
// into the outputs a caller asks for by mode.
package texture

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"texture-extractor/internal/models"
	"texture-extractor/internal/processing/filters"
	"texture-extractor/internal/processing/histogram"
)

type Mode string

const (
	ModeTamura    Mode = "tamura"
	ModeInvariant Mode = "invariant"
	ModeLBP       Mode = "lbp"
)

// Modes lists the supported modes in their historical numeric order.
var Modes = []Mode{ModeTamura, ModeInvariant, ModeLBP}

// ParseMode accepts a mode name or its index in Modes. An empty string
// selects ModeLBP.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeLBP, nil
	}
	for i, m := range Modes {
		if s == string(m) || s == fmt.Sprint(i) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown texture mode %q", models.ErrInvalidParameter, s)
}

type Options struct {
	MaxWindowSize  int
	ContrastMargin int
}

func DefaultOptions() Options {
	return Options{
		MaxWindowSize:  filters.DefaultMaxWindowSize,
		ContrastMargin: filters.DefaultContrastMargin,
	}
}

// Result holds the gray feature map of a mode and, for ModeTamura, the
// colour composite it was collapsed from.
type Result struct {
	Mode      Mode
	Gray      *models.Grid
	Composite *models.RGBGrid
}

// Tamura runs the three Tamura filters concurrently and composes
// directionality, coarseness and contrast into R, G and B.
func Tamura(src *models.Grid, opts Options) (*models.RGBGrid, error) {
	if err := src.Validate("tamura"); err != nil {
		return nil, err
	}

	var directionality, coarseness, contrast *models.Grid

	var g errgroup.Group
	g.Go(func() error {
		var err error
		directionality, err = filters.Directionality(src)
		return err
	})
	g.Go(func() error {
		var err error
		coarseness, err = filters.Coarseness(src, opts.MaxWindowSize)
		return err
	})
	g.Go(func() error {
		var err error
		contrast, err = filters.Contrast(src, opts.ContrastMargin)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Compose(directionality, coarseness, contrast)
}

// Apply computes the feature map for mode. Any mode other than tamura or
// invariant falls back to the local binary pattern.
func Apply(mode Mode, src *models.Grid, opts Options) (*Result, error) {
	if err := src.Validate(string(mode)); err != nil {
		return nil, err
	}

	switch mode {
	case ModeTamura:
		composite, err := Tamura(src, opts)
		if err != nil {
			return nil, err
		}
		return &Result{Mode: ModeTamura, Gray: Regrey(composite), Composite: composite}, nil

	case ModeInvariant:
		gray, err := filters.InvariantFeatureHistogram(src)
		if err != nil {
			return nil, err
		}
		return &Result{Mode: ModeInvariant, Gray: gray}, nil

	default:
		gray, err := filters.LocalBinaryPattern(src)
		if err != nil {
			return nil, err
		}
		return &Result{Mode: ModeLBP, Gray: gray}, nil
	}
}

// Histogram counts the values of a feature map.
func Histogram(g *models.Grid) [256]int {
	return histogram.Compute(g)
}

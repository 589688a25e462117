// Package report renders feature-map histograms as charts.
package report

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"texture-extractor/internal/processing/histogram"
)

const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 4 * vg.Inch
)

func newHistogramPlot(title string, h histogram.Histogram) (*plot.Plot, error) {
	values := make(plotter.Values, len(h))
	for i, n := range h {
		values[i] = float64(n)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(2))
	if err != nil {
		return nil, fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.LineStyle.Width = 0
	bars.Color = color.Gray{Y: 60}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Value"
	p.Y.Label.Text = "Pixels"
	p.X.Min = 0
	p.X.Max = float64(len(h) - 1)
	p.Add(bars)

	return p, nil
}

// SaveHistogram renders h as a bar chart. The image format follows the
// extension of path (png, svg, pdf, ...).
func SaveHistogram(path, title string, h histogram.Histogram) error {
	p, err := newHistogramPlot(title, h)
	if err != nil {
		return err
	}
	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return fmt.Errorf("failed to save histogram %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteHistogram renders h to w in the given format, e.g. "png".
func WriteHistogram(w io.Writer, format, title string, h histogram.Histogram) error {
	p, err := newHistogramPlot(title, h)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(chartWidth, chartHeight, strings.ToLower(format))
	if err != nil {
		return fmt.Errorf("unsupported chart format %q: %w", format, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

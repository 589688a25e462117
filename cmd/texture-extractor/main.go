// Command texture-extractor computes texture feature maps of images and
// splits images into their connected objects.
//
//	texture-extractor texture [flags] image...
//	texture-extractor filter [flags] image...
//	texture-extractor split [flags] image...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"texture-extractor/internal/algorithms"
	"texture-extractor/internal/catalog"
	"texture-extractor/internal/config"
	"texture-extractor/internal/debug/timing"
	"texture-extractor/internal/logger"
	"texture-extractor/internal/opencv"
	"texture-extractor/internal/opencv/conversion"
	"texture-extractor/internal/pipeline"
	"texture-extractor/internal/processing/histogram"
	"texture-extractor/internal/report"
)

const (
	commandTexture = "texture"
	commandFilter  = "filter"
	commandSplit   = "split"
)

var errUsage = errors.New("usage: texture-extractor texture|filter|split [flags] image...")

type options struct {
	command    string
	configPath string
	mode       string
	outDir     string
	catalog    string
	backend    string
	format     string
	logLevel   string
	histogram  bool
	images     []string

	steps         string
	saturated     float64
	equalize      bool
	size          string
	interpolation string
	// set holds the names of the flags given on the command line.
	set map[string]bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, stderr)
	if err != nil {
		return err
	}
	defer app.Close()

	switch opts.command {
	case commandTexture:
		return app.texture(ctx, opts)
	case commandFilter:
		return app.filter(ctx, opts)
	case commandSplit:
		return app.split(ctx, opts)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, opts.command)
	}
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options
	if len(args) == 0 {
		return opts, errUsage
	}
	opts.command = args[0]
	switch opts.command {
	case commandTexture, commandFilter, commandSplit:
	default:
		return opts, fmt.Errorf("%w: unknown command %q", errUsage, opts.command)
	}

	fs := flag.NewFlagSet(opts.command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to a JSON config file")
	fs.StringVar(&opts.mode, "mode", "", "texture mode: tamura, invariant or lbp")
	fs.StringVar(&opts.outDir, "out", ".", "output directory")
	fs.StringVar(&opts.catalog, "catalog", "", "SQLite catalog to record results in")
	fs.StringVar(&opts.backend, "backend", "", "segmentation backend: go or opencv")
	fs.StringVar(&opts.format, "format", "", "output image format: png or jpeg")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level")
	fs.BoolVar(&opts.histogram, "histogram", false, "also write a histogram chart of each output image")
	fs.StringVar(&opts.steps, "steps", "", "filter steps in order, comma separated: edge, contrast, resize")
	fs.Float64Var(&opts.saturated, "saturated", 0, "percentage of saturated pixels for contrast stretching")
	fs.BoolVar(&opts.equalize, "equalize", false, "equalize the histogram instead of stretching it")
	fs.StringVar(&opts.size, "size", "", "resize target: WxH, Wx, xH or P%")
	fs.StringVar(&opts.interpolation, "interpolation", "", "resize interpolation: none, bilinear or bicubic")

	if err := fs.Parse(args[1:]); err != nil {
		return opts, err
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	opts.images = fs.Args()
	if len(opts.images) == 0 {
		return opts, fmt.Errorf("%w: no input images", errUsage)
	}
	return opts, nil
}

// loadConfig reads the optional config file and lets non-empty flags
// override it.
func loadConfig(opts options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	override := func(dst **string, v string) {
		if v != "" {
			*dst = &v
		}
	}
	override(&cfg.Mode, opts.mode)
	override(&cfg.Backend, opts.backend)
	override(&cfg.OutputFormat, opts.format)
	override(&cfg.CatalogPath, opts.catalog)
	override(&cfg.LogLevel, opts.logLevel)
	override(&cfg.FilterSteps, opts.steps)
	override(&cfg.Size, opts.size)
	override(&cfg.Interpolation, opts.interpolation)
	if opts.set["saturated"] {
		cfg.Saturated = &opts.saturated
	}
	if opts.set["equalize"] {
		cfg.Equalize = &opts.equalize
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

type application struct {
	cfg         *config.Config
	logger      *logger.ZerologAdapter
	tracker     *timing.Tracker
	coordinator *pipeline.Coordinator
	catalog     *catalog.Catalog
}

func newApplication(cfg *config.Config, stderr io.Writer) (*application, error) {
	log, err := logger.New(stderr, cfg.GetLogFormat(), cfg.GetLogLevel())
	if err != nil {
		return nil, err
	}

	tracker := timing.NewTracker(func(operation string, d time.Duration) {
		log.Debug("Timing", "operation finished", map[string]interface{}{
			"operation": operation,
			"duration":  d.String(),
		})
	})

	coordinatorOpts := pipeline.CoordinatorOptions{
		Logger:        log,
		TimingTracker: tracker,
	}
	if cfg.GetBackend() == config.BackendOpenCV {
		coordinatorOpts.ToGray = conversion.ImageToGrid
		coordinatorOpts.BlobProcessor = algorithms.NewBlobProcessor(opencv.NewDenoiser()).WithLabeler(opencv.NewLabeler())
	}

	app := &application{
		cfg:         cfg,
		logger:      log,
		tracker:     tracker,
		coordinator: pipeline.NewCoordinator(coordinatorOpts),
	}

	if path := cfg.GetCatalogPath(); path != "" {
		cat, err := catalog.Open(path, log)
		if err != nil {
			return nil, err
		}
		app.catalog = cat
	}

	log.Debug("Application", "initialized", map[string]interface{}{
		"backend":    cfg.GetBackend(),
		"mode":       string(cfg.GetMode()),
		"catalog":    cfg.GetCatalogPath(),
		"algorithms": app.coordinator.Algorithms().GetAvailableAlgorithms(),
	})
	return app, nil
}

func (a *application) Close() {
	if a.catalog == nil {
		return
	}
	if err := a.catalog.Close(); err != nil {
		a.logger.Error("Application", err, map[string]interface{}{"stage": "close catalog"})
	}
}

func (a *application) texture(ctx context.Context, opts options) error {
	mode := string(a.cfg.GetMode())
	return a.process(ctx, opts, "Texture", mode, a.cfg.Params(mode))
}

func (a *application) filter(ctx context.Context, opts options) error {
	return a.process(ctx, opts, "Filter", algorithms.FilterName, a.cfg.Params(algorithms.FilterName))
}

// process runs the named algorithm on every input image and writes
// <title>-<name><ext> for each, plus a histogram chart when asked to.
func (a *application) process(ctx context.Context, opts options, component, name string, params map[string]interface{}) error {
	ext := pipeline.Extension(a.cfg.GetOutputFormat())

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, path := range opts.images {
		if err := ctx.Err(); err != nil {
			return err
		}

		img, err := a.coordinator.LoadImage(path)
		if err != nil {
			return err
		}
		if err := a.recordImage(ctx); err != nil {
			return err
		}

		result, err := a.coordinator.ProcessImage(ctx, name, params)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		outPath := filepath.Join(opts.outDir, fmt.Sprintf("%s-%s%s", img.Title, name, ext))
		written, err := a.coordinator.SaveResult(outPath, result)
		if err != nil {
			return err
		}

		h := histogram.Compute(result.Output)
		if opts.histogram {
			chartPath := filepath.Join(opts.outDir, fmt.Sprintf("%s-%s-histogram.png", img.Title, name))
			if err := report.SaveHistogram(chartPath, img.Title+" "+name, h); err != nil {
				return err
			}
			written = append(written, chartPath)
		}

		if a.catalog != nil {
			if _, err := a.catalog.RecordDescriptor(ctx, result); err != nil {
				return err
			}
		}

		a.logger.Info(component, "image written", map[string]interface{}{
			"image":     img.Title,
			"algorithm": name,
			"width":     result.Output.Width,
			"height":    result.Output.Height,
			"mean":      h.Mean(),
			"files":     written,
		})
	}
	return nil
}

func (a *application) split(ctx context.Context, opts options) error {
	params := a.cfg.Params("blobs")
	format := a.cfg.GetOutputFormat()

	for _, path := range opts.images {
		if err := ctx.Err(); err != nil {
			return err
		}

		img, err := a.coordinator.LoadImage(path)
		if err != nil {
			return err
		}
		if err := a.recordImage(ctx); err != nil {
			return err
		}

		blobs, err := a.coordinator.ExtractBlobs(ctx, params)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if len(blobs) == 0 {
			a.logger.Warning("Split", "no objects found", map[string]interface{}{"image": img.Title})
			continue
		}

		written, err := a.coordinator.SaveBlobs(opts.outDir, img.Title, format, blobs)
		if err != nil {
			return err
		}

		if a.catalog != nil {
			if err := a.catalog.RecordBlobs(ctx, blobs); err != nil {
				return err
			}
		}

		a.logger.Info("Split", "objects written", map[string]interface{}{
			"image": img.Title,
			"count": len(written),
		})
	}
	return nil
}

func (a *application) recordImage(ctx context.Context) error {
	if a.catalog == nil {
		return nil
	}
	return a.catalog.RecordImage(ctx, a.coordinator.GetOriginalImage())
}

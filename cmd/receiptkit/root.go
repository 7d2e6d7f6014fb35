package main

import (
	"github.com/spf13/cobra"

	"github.com/wudi/receiptkit/config"
	"github.com/wudi/receiptkit/normalize"
	"github.com/wudi/receiptkit/observability"
	"github.com/wudi/receiptkit/ocr"
	"github.com/wudi/receiptkit/ocr/tesseract"
	"github.com/wudi/receiptkit/receipt"
	"github.com/wudi/receiptkit/surface"
)

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	cfg     *config.Config
	logger  observability.Logger
	tracer  observability.Tracer
	metrics *observability.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		configPath string
		logLevel   string
		logJSON    bool
	)
	root := &cobra.Command{
		Use:           "receiptkit",
		Short:         "Normalize receipt photos for OCR and extract totals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if cmd.Flags().Changed("log-json") {
				cfg.Log.JSON = logJSON
			}
			a.cfg = cfg
			a.logger = observability.NewCharmLogger(observability.LogConfig{
				Level: cfg.Log.Level,
				JSON:  cfg.Log.JSON,
			})
			a.tracer = observability.NopTracer()
			a.metrics = observability.NewMetrics()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit JSON logs")

	root.AddCommand(newNormalizeCmd(a), newScanCmd(a), newServeCmd(a))
	return root
}

func (a *app) normalizer() *normalize.Normalizer {
	return normalize.New(
		normalize.WithBackend(surface.NewRaster(a.limits())),
		normalize.WithLogger(a.logger),
		normalize.WithTracer(a.tracer),
		normalize.WithMetrics(a.metrics),
	)
}

func (a *app) limits() surface.Limits {
	return surface.Limits{
		MaxDimension: a.cfg.Surface.MaxDimension,
		MaxPixels:    a.cfg.Surface.MaxPixels,
	}
}

// scanner wires a scan pipeline around norm with the configured engine.
func (a *app) scanner(norm *normalize.Normalizer) *receipt.Scanner {
	return receipt.NewScanner(receipt.NewStore(),
		receipt.WithNormalizer(norm),
		receipt.WithEngine(a.engine()),
		receipt.WithInputOptions(a.inputOptions()...),
		receipt.WithLogger(a.logger),
		receipt.WithTracer(a.tracer),
		receipt.WithMetrics(a.metrics),
	)
}

func (a *app) engine() ocr.Engine {
	if a.cfg.OCR.Engine == "noop" {
		return ocr.NoopEngine()
	}
	return tesseract.NewTesseractEngine(tesseract.WithDefaultLanguages(a.cfg.OCR.Languages...))
}

func (a *app) inputOptions() []ocr.InputOption {
	opts := []ocr.InputOption{
		ocr.WithDPI(a.cfg.OCR.DPI),
		ocr.WithTesseractPSM(a.cfg.OCR.PSM),
	}
	if len(a.cfg.OCR.Languages) > 0 {
		opts = append(opts, ocr.WithLanguages(a.cfg.OCR.Languages...))
	}
	return opts
}

// Parallel Image Converter
// Loads one image and converts it with a pool of workers, once per
// configured step, showing each result in its own window.

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"

	"parallel-image-converter/internal/algorithms"
	"parallel-image-converter/internal/bench"
	"parallel-image-converter/internal/config"
	"parallel-image-converter/internal/core"
	"parallel-image-converter/internal/engine"
	"parallel-image-converter/internal/gui"
	imgio "parallel-image-converter/internal/io"
	"parallel-image-converter/internal/io/cv"
	"parallel-image-converter/internal/pipeline"
)

const (
	AppName    = "Parallel Image Converter"
	AppID      = "com.example.parallel-image-converter"
	AppVersion = "1.0.0"
)

// loader is what both image backends provide.
type loader interface {
	imgio.ImageSource
	imgio.SnapshotWriter
}

func main() {
	configPath := flag.String("config", "", "TOML configuration file")
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	headless := flag.Bool("headless", false, "Convert without opening any windows")
	benchMode := flag.Bool("bench", false, "Compare every strategy at each bench worker count")
	workers := flag.Int("workers", 0, "Number of workers (overrides config)")
	strategy := flag.String("strategy", "", "Partition strategy: interleave, chunk or auto")
	pace := flag.Duration("pace", 0, "Pause after each converted row")
	loaderName := flag.String("loader", "", "Image backend: go or opencv")
	snapshots := flag.String("snapshots", "", "Directory for result snapshots")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	applyFlags(&cfg, *debugMode, *headless, *workers, *strategy, *pace, *loaderName, *snapshots)
	if flag.NArg() > 0 {
		cfg.Image = flag.Arg(0)
	}

	logger := initLogger(cfg.Debug)
	logger.WithFields(logrus.Fields{
		"version":  AppVersion,
		"image":    cfg.Image,
		"workers":  cfg.Workers,
		"strategy": cfg.Strategy,
		"steps":    cfg.Steps,
	}).Info("Starting " + AppName)

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	if err := run(cfg, *benchMode, logger); err != nil {
		logger.WithError(err).Fatal("Conversion failed")
	}

	logger.Info("ImageConverter terminated normally.")
}

// applyFlags lets explicitly set flags win over the file.
func applyFlags(cfg *config.Config, debug, headless bool, workers int, strategy string, pace time.Duration, loaderName, snapshots string) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			cfg.Debug = debug
		case "headless":
			cfg.Headless = headless
		case "workers":
			cfg.Workers = workers
		case "strategy":
			cfg.Strategy = strategy
		case "pace":
			cfg.Pace.Duration = pace
		case "loader":
			cfg.Loader = loaderName
		case "snapshots":
			cfg.SnapshotDir = snapshots
		}
	})
}

func run(cfg config.Config, benchMode bool, logger *logrus.Logger) error {
	src := newLoader(cfg, logger)

	surface, err := src.Load(cfg.Image)
	if err != nil {
		return err
	}

	if benchMode {
		return runBench(cfg, engine.New(engine.WithLogger(logger)), surface, logger)
	}

	data := core.NewImageData()
	if err := data.SetOriginal(surface, cfg.Image); err != nil {
		return err
	}

	eng := engine.New(engine.WithLogger(logger), engine.WithPace(cfg.Pace.Duration))
	p := pipeline.New(data, eng, logger)
	if cfg.SnapshotDir != "" {
		p.SetSnapshots(src, cfg.SnapshotDir)
	}
	if err := p.Configure(cfg.Steps, cfg.Strategy, cfg.Workers, cfg.DisabledSteps); err != nil {
		return err
	}

	if cfg.Headless {
		results, err := p.Run(pipeline.NopSink{})
		printResults(results)
		return err
	}

	myApp := app.NewWithID(AppID)
	display := gui.NewApplication(myApp, logger)
	display.ShowSource(surface, data.GetMetadata().Name)

	job := p.Start(display)
	go func() {
		<-job.Done()
		results, err := job.Wait()
		printResults(results)
		if err != nil {
			display.ShowError("Conversion failed", err)
		}
	}()

	display.WaitForClose()

	if !job.Finished() {
		logger.Warn("Window closed before the conversion finished")
		return nil
	}
	_, err = job.Wait()
	return err
}

func newLoader(cfg config.Config, logger logrus.FieldLogger) loader {
	if cfg.Loader == config.LoaderOpenCV {
		return cv.NewImageLoader(logger, cfg.Width, cfg.Height)
	}
	return imgio.NewImageLoader(logger, cfg.Width, cfg.Height)
}

func runBench(cfg config.Config, eng *engine.Engine, src *core.Surface, logger logrus.FieldLogger) error {
	runner := bench.NewRunner(eng, logger, cfg.BenchWorkers)
	for _, name := range cfg.Steps {
		t, err := algorithms.Lookup(name)
		if err != nil {
			return err
		}
		results, err := runner.Run(src, t)
		if err != nil {
			return err
		}
		if err := bench.WriteReport(os.Stdout, t, results); err != nil {
			return err
		}
		fmt.Println()
	}
	return nil
}

func printResults(results []pipeline.Result) {
	for _, res := range results {
		fmt.Println(res.Report.String())
	}
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

// Application configuration loaded from TOML
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"parallel-image-converter/internal/algorithms"
	"parallel-image-converter/internal/core"
	"parallel-image-converter/internal/partition"
)

// Loader names accepted by the "loader" key.
const (
	LoaderGo     = "go"
	LoaderOpenCV = "opencv"
)

// Duration is a time.Duration written as a string such as "5ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config describes one run of the converter.
type Config struct {
	// Image is the file loaded as the source surface.
	Image string `toml:"image"`
	// Width and Height size the source surface; the image is scaled to fit.
	Width  int `toml:"width"`
	Height int `toml:"height"`

	Workers  int      `toml:"workers"`
	Strategy string   `toml:"strategy"`
	Steps    []string `toml:"steps"`

	// DisabledSteps switches off the listed transforms without removing them
	// from Steps.
	DisabledSteps []string `toml:"disabled_steps"`

	// Pace is slept after each row so the pass can be watched.
	Pace Duration `toml:"pace"`

	// SnapshotDir receives a PNG of every result; empty disables snapshots.
	SnapshotDir string `toml:"snapshot_dir"`
	Headless    bool   `toml:"headless"`
	Loader      string `toml:"loader"`

	BenchWorkers []int `toml:"bench_workers"`
	Debug        bool  `toml:"debug"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Image:        "./pics/beads.jpg",
		Width:        800,
		Height:       800,
		Workers:      runtime.GOMAXPROCS(0),
		Strategy:     partition.NameRuntimeAuto,
		Steps:        []string{algorithms.NameFlipHorizontal},
		Loader:       LoaderGo,
		BenchWorkers: []int{1, 2, 4, 8},
	}
}

// Load reads path on top of Default. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config: unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Validate checks every field and joins all problems into one error.
func (c Config) Validate() error {
	var errs []error

	if c.Image == "" {
		errs = append(errs, errors.New("image path is empty"))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid size %dx%d", c.Width, c.Height))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("%w: workers = %d", core.ErrInvalidWorkerCount, c.Workers))
	}
	if _, err := partition.Lookup(c.Strategy); err != nil {
		errs = append(errs, err)
	}
	if len(c.Steps) == 0 {
		errs = append(errs, errors.New("no steps configured"))
	}
	for _, step := range c.Steps {
		if _, err := algorithms.Lookup(step); err != nil {
			errs = append(errs, err)
		}
	}
	for _, step := range c.DisabledSteps {
		if _, err := algorithms.Lookup(step); err != nil {
			errs = append(errs, fmt.Errorf("disabled_steps: %w", err))
		}
	}
	if c.Pace.Duration < 0 {
		errs = append(errs, fmt.Errorf("negative pace %s", c.Pace))
	}
	if c.Loader != LoaderGo && c.Loader != LoaderOpenCV {
		errs = append(errs, fmt.Errorf("unknown loader %q (want %q or %q)", c.Loader, LoaderGo, LoaderOpenCV))
	}
	for _, n := range c.BenchWorkers {
		if n < 1 {
			errs = append(errs, fmt.Errorf("bench_workers entries must be at least 1, got %d", n))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

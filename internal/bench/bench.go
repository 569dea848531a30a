// Package bench times every partition strategy against a sequential
// reference pass and checks that all of them produce the same image.
package bench

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"parallel-image-converter/internal/algorithms"
	"parallel-image-converter/internal/core"
	"parallel-image-converter/internal/engine"
	"parallel-image-converter/internal/metrics"
	"parallel-image-converter/internal/partition"
)

// Result is one strategy at one worker count.
type Result struct {
	Strategy  string
	Workers   int
	Report    engine.Report
	Speedup   float64
	Metrics   map[string]float64
	Identical bool
}

// Runner compares strategies. The zero value is not usable; see NewRunner.
type Runner struct {
	engine     *engine.Engine
	evaluator  *metrics.Evaluator
	logger     logrus.FieldLogger
	workers    []int
	strategies []string
}

// NewRunner benchmarks every registered strategy at each worker count.
// Duplicate and non-positive counts are dropped. Row hooks and pacing of eng
// are not used, so the timings measure only the conversion.
func NewRunner(eng *engine.Engine, logger logrus.FieldLogger, workers []int) *Runner {
	counts := lo.Uniq(lo.Filter(workers, func(n int, _ int) bool { return n >= 1 }))
	slices.Sort(counts)
	return &Runner{
		engine:     eng.With(engine.WithoutRowHooks()),
		evaluator:  metrics.NewEvaluator(),
		logger:     logger,
		workers:    counts,
		strategies: partition.Names(),
	}
}

// Run converts src with t once sequentially, then once per strategy and
// worker count, comparing each result with the sequential one.
func (r *Runner) Run(src *core.Surface, t algorithms.Transform) ([]Result, error) {
	if len(r.workers) == 0 {
		return nil, fmt.Errorf("%w: no worker counts to benchmark", core.ErrInvalidWorkerCount)
	}

	reference, baseline, err := r.engine.Convert(src, t, partition.EqualChunk{}, 1)
	if err != nil {
		return nil, fmt.Errorf("reference pass: %w", err)
	}
	r.logger.WithField("elapsed", baseline.Elapsed).Info("BENCH: Sequential reference complete")

	results := make([]Result, 0, len(r.strategies)*len(r.workers))
	for _, name := range r.strategies {
		strategy, err := partition.Lookup(name)
		if err != nil {
			return nil, err
		}
		for _, n := range r.workers {
			dst, report, err := r.engine.Convert(src, t, strategy, n)
			if err != nil {
				return nil, fmt.Errorf("%s with %d workers: %w", name, n, err)
			}

			m := r.evaluator.CalculateAll(reference, dst)
			res := Result{
				Strategy:  name,
				Workers:   n,
				Report:    report,
				Speedup:   speedup(baseline.Elapsed, report.Elapsed),
				Metrics:   m,
				Identical: reference.Equal(dst),
			}
			results = append(results, res)

			entry := r.logger.WithFields(logrus.Fields{
				"strategy": name,
				"workers":  n,
				"elapsed":  report.Elapsed,
				"speedup":  res.Speedup,
			})
			if !res.Identical {
				entry.WithField("mismatch", m["mismatch"]).Error("BENCH: Result differs from sequential reference")
			} else {
				entry.Debug("BENCH: Run complete")
			}
		}
	}
	return results, nil
}

func speedup(base, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(base) / float64(d)
}

// WriteReport renders results as an aligned table with one column per
// metric. Metric headers are marked ↑ when higher is better and ↓ otherwise.
func WriteReport(w io.Writer, t algorithms.Transform, results []Result) error {
	evaluator := metrics.NewEvaluator()
	names := evaluator.Names()
	info := evaluator.GetMetricInfo()

	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	p.Fprintf(tw, "%s\n", t.GetActivity())
	p.Fprintf(tw, "STRATEGY\tWORKERS\tROWS\tROWS/WORKER\tSECONDS\tSPEEDUP")
	for _, name := range names {
		arrow := "↓"
		if info[name].HigherBetter {
			arrow = "↑"
		}
		p.Fprintf(tw, "\t%s%s", strings.ToUpper(info[name].Name), arrow)
	}
	p.Fprintf(tw, "\tIDENTICAL\n")

	for _, res := range results {
		perWorker := res.Report.RowsPerWorker
		fewest, most := 0, 0
		if len(perWorker) > 0 {
			fewest, most = slices.Min(perWorker), slices.Max(perWorker)
		}
		p.Fprintf(tw, "%s\t%d\t%d\t%d-%d\t%.4f\t%.2fx",
			res.Strategy, res.Workers, res.Report.Rows(), fewest, most,
			res.Report.Elapsed.Seconds(), res.Speedup)
		for _, name := range names {
			if v, ok := res.Metrics[name]; ok {
				p.Fprintf(tw, "\t%.4g", v)
			} else {
				p.Fprintf(tw, "\t-")
			}
		}
		p.Fprintf(tw, "\t%t\n", res.Identical)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, name := range names {
		mi := info[name]
		if _, err := p.Fprintf(w, "%s: %s, %v to %v\n", strings.ToUpper(mi.Name), mi.Description, mi.Range[0], mi.Range[1]); err != nil {
			return err
		}
	}
	return nil
}

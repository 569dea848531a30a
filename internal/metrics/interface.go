// Surface comparison metrics used to check strategy outputs
package metrics

import (
	"slices"

	"github.com/samber/lo"

	"parallel-image-converter/internal/core"
)

// Metric compares a reference surface with a candidate of equal size
type Metric interface {
	Calculate(reference, candidate *core.Surface) (float64, error)
	GetName() string
	GetDescription() string
	GetRange() (float64, float64)
	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}
	e.RegisterDefaultMetrics()
	return e
}

func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("psnr", NewPSNR())
	e.Register("mse", NewMSE())
	e.Register("mismatch", NewMismatch())
}

func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names returns the registered metric names in sorted order
func (e *Evaluator) Names() []string {
	names := lo.Keys(e.metrics)
	slices.Sort(names)
	return names
}

// CalculateAll calculates all registered metrics. Metrics that fail are
// left out of the result.
func (e *Evaluator) CalculateAll(reference, candidate *core.Surface) map[string]float64 {
	results := make(map[string]float64)
	for name, metric := range e.metrics {
		if value, err := metric.Calculate(reference, candidate); err == nil {
			results[name] = value
		}
	}
	return results
}

// MetricInfo provides metadata about a metric
type MetricInfo struct {
	Name         string
	Description  string
	Range        [2]float64 // [min, max]
	HigherBetter bool
}

// GetMetricInfo returns information about all metrics
func (e *Evaluator) GetMetricInfo() map[string]MetricInfo {
	info := make(map[string]MetricInfo)
	for name, metric := range e.metrics {
		low, high := metric.GetRange()
		info[name] = MetricInfo{
			Name:         metric.GetName(),
			Description:  metric.GetDescription(),
			Range:        [2]float64{low, high},
			HigherBetter: metric.IsHigherBetter(),
		}
	}
	return info
}

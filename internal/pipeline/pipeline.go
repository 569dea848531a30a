// Sequence of conversions run against one long-lived source image
package pipeline

import (
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"parallel-image-converter/internal/algorithms"
	"parallel-image-converter/internal/core"
	"parallel-image-converter/internal/engine"
	imgio "parallel-image-converter/internal/io"
	"parallel-image-converter/internal/partition"
)

// ProcessingStep is one conversion of the source image
type ProcessingStep struct {
	Algorithm string
	Strategy  string
	Workers   int
	Enabled   bool
}

// Sink receives each result. Begin is called with the blank destination
// before the pass starts and may return a hook to follow its progress;
// Present is called once the pass is complete.
type Sink interface {
	Begin(dst *core.Surface, title string) engine.RowHook
	Present(dst *core.Surface, title string) error
}

// NopSink discards results.
type NopSink struct{}

func (NopSink) Begin(*core.Surface, string) engine.RowHook { return nil }
func (NopSink) Present(*core.Surface, string) error        { return nil }

// Result records what a step produced
type Result struct {
	Step     ProcessingStep
	Title    string
	Report   engine.Report
	Snapshot string
}

// Pipeline runs its steps in order. Every step reads the same source and
// writes a fresh destination, which becomes the processed image.
type Pipeline struct {
	mu        sync.RWMutex
	imageData *core.ImageData
	engine    *engine.Engine
	logger    logrus.FieldLogger

	steps []ProcessingStep

	snapshots   imgio.SnapshotWriter
	snapshotDir string
}

func New(imageData *core.ImageData, eng *engine.Engine, logger logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		imageData: imageData,
		engine:    eng,
		logger:    logger,
		steps:     make([]ProcessingStep, 0),
	}
}

// SetSnapshots saves every result into dir through w. A nil w disables it.
func (p *Pipeline) SetSnapshots(w imgio.SnapshotWriter, dir string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = w
	p.snapshotDir = dir
}

// AddStep validates and appends a step
func (p *Pipeline) AddStep(step ProcessingStep) error {
	if !algorithms.IsValidAlgorithm(step.Algorithm) {
		return fmt.Errorf("%w: %s", algorithms.ErrUnknownTransform, step.Algorithm)
	}
	if _, err := partition.Lookup(step.Strategy); err != nil {
		return err
	}
	if step.Workers < 1 {
		return fmt.Errorf("%w: %d", core.ErrInvalidWorkerCount, step.Workers)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, step)

	p.logger.WithFields(logrus.Fields{
		"algorithm": step.Algorithm,
		"strategy":  step.Strategy,
		"workers":   step.Workers,
		"index":     len(p.steps) - 1,
	}).Debug("PIPELINE: Step added")
	return nil
}

// Steps returns a copy of the configured steps
func (p *Pipeline) Steps() []ProcessingStep {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]ProcessingStep, len(p.steps))
	copy(out, p.steps)
	return out
}

// SetStepEnabled toggles the step at index
func (p *Pipeline) SetStepEnabled(index int, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.steps) {
		return fmt.Errorf("invalid step index: %d", index)
	}
	p.steps[index].Enabled = enabled
	return nil
}

// ClearAll removes every step
func (p *Pipeline) ClearAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = p.steps[:0]
}

// Configure replaces the steps with one step per transform name, all split
// by strategy over workers. Steps whose transform is listed in disabled are
// kept but switched off.
func (p *Pipeline) Configure(names []string, strategy string, workers int, disabled []string) error {
	p.ClearAll()
	for _, name := range names {
		step := ProcessingStep{Algorithm: name, Strategy: strategy, Workers: workers, Enabled: true}
		if err := p.AddStep(step); err != nil {
			p.ClearAll()
			return err
		}
	}
	for i, name := range names {
		if slices.Contains(disabled, name) {
			if err := p.SetStepEnabled(i, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run executes the enabled steps in order and stops at the first error.
func (p *Pipeline) Run(sink Sink) ([]Result, error) {
	if !p.imageData.HasImage() {
		return nil, fmt.Errorf("no original image loaded")
	}
	if sink == nil {
		sink = NopSink{}
	}

	p.mu.RLock()
	steps := make([]ProcessingStep, len(p.steps))
	copy(steps, p.steps)
	snapshots, dir := p.snapshots, p.snapshotDir
	p.mu.RUnlock()

	src := p.imageData.GetOriginal()
	name := p.imageData.GetMetadata().Name

	p.logger.WithFields(logrus.Fields{
		"source": p.imageData.GetFilepath(),
		"steps":  len(steps),
	}).Info("PIPELINE: Starting run")

	results := make([]Result, 0, len(steps))
	for i, step := range steps {
		if !step.Enabled {
			p.logger.WithField("index", i).Debug("PIPELINE: Skipping disabled step")
			continue
		}

		res, err := p.runStep(src, name, step, sink, snapshots, dir)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i, step.Algorithm, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (p *Pipeline) runStep(src *core.Surface, name string, step ProcessingStep, sink Sink, snapshots imgio.SnapshotWriter, dir string) (Result, error) {
	t, err := algorithms.Lookup(step.Algorithm)
	if err != nil {
		return Result{}, err
	}
	s, err := partition.Lookup(step.Strategy)
	if err != nil {
		return Result{}, err
	}

	dst, err := core.NewSurfaceLike(src)
	if err != nil {
		return Result{}, err
	}

	title := Title(name, t, s)
	eng := p.engine.With(engine.WithRowHook(sink.Begin(dst, title)))

	report, err := eng.Apply(src, dst, t, s, step.Workers)
	if err != nil {
		return Result{}, err
	}
	if err := p.imageData.SetProcessed(dst); err != nil {
		return Result{}, err
	}

	res := Result{Step: step, Title: title, Report: report}

	if snapshots != nil {
		path := imgio.SnapshotName(dir, title)
		if err := snapshots.SaveSnapshot(dst, path); err != nil {
			return Result{}, fmt.Errorf("snapshot: %w", err)
		}
		res.Snapshot = path
	}

	if err := sink.Present(dst, title); err != nil {
		return Result{}, fmt.Errorf("present: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"title":   title,
		"elapsed": report.Elapsed,
	}).Info("PIPELINE: Step completed")

	return res, nil
}

// Title names a result window after the image, the transform and, for the
// explicit partition strategies, how rows were split.
func Title(imageName string, t algorithms.Transform, s partition.Strategy) string {
	title := t.GetTitle()
	if imageName != "" {
		title = imageName + " " + title
	}
	switch s.(type) {
	case partition.RowInterleave:
		title += ", Chunk-Size 1"
	case partition.EqualChunk:
		title += ", Equal-Sized Chunks"
	}
	return title
}

// Job is a run started in the background with Start.
type Job struct {
	done    chan struct{}
	results []Result
	err     error
}

// Start runs the pipeline on a new goroutine.
func (p *Pipeline) Start(sink Sink) *Job {
	j := &Job{done: make(chan struct{})}
	go func() {
		defer close(j.done)
		j.results, j.err = p.Run(sink)
	}()
	return j
}

// Done is closed once the run has returned.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Finished reports whether the run has returned, without blocking.
func (j *Job) Finished() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the run returns and reports its outcome.
func (j *Job) Wait() ([]Result, error) {
	<-j.done
	return j.results, j.err
}

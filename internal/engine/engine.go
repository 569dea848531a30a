// Package engine runs a per-pixel transform across worker goroutines.
//
// Each pass forks numWorkers goroutines, hands each one the Schedule its
// partition strategy computed, and joins them before returning. Workers
// read the source concurrently and write disjoint destination cells, so no
// locking is needed as long as the strategy covers each row exactly once.
// A strategy that leaves gaps or overlaps is a programming error; the
// engine neither detects nor repairs it.
package engine

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"parallel-image-converter/internal/algorithms"
	"parallel-image-converter/internal/core"
	"parallel-image-converter/internal/partition"
)

// Clock is the monotonic time source used for timing a pass.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// RowHook runs on the worker goroutine after a source row is finished.
// dstRow is the destination row the row's first pixel was written to; for
// the flips and inversion the whole row lands there. The hook may read
// that destination row but nothing another worker could be writing.
type RowHook func(worker, srcRow, dstRow int)

// Engine applies transforms. It holds no per-pass state and may run
// several passes at once.
type Engine struct {
	logger logrus.FieldLogger
	clock  Clock
	hooks  []RowHook

	// pace is slept after the hooks of every row.
	pace  time.Duration
	sleep func(time.Duration)
}

type Option func(*Engine)

// WithLogger sets the logger. nil discards output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithRowHook adds a hook run after every row. Hooks run in the order
// they were added. nil hooks are ignored.
func WithRowHook(h RowHook) Option {
	return func(e *Engine) {
		if h != nil {
			e.hooks = append(e.hooks, h)
		}
	}
}

// WithPace pauses the worker for d after every row, to make a pass visible
// on screen. The pause follows all row hooks, so a hook sees the row as soon
// as it is written. A non-positive d disables pacing.
func WithPace(d time.Duration) Option {
	return func(e *Engine) {
		e.pace = max(d, 0)
	}
}

// WithoutRowHooks drops every row hook and the pace.
func WithoutRowHooks() Option {
	return func(e *Engine) {
		e.hooks = nil
		e.pace = 0
	}
}

func New(opts ...Option) *Engine {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Engine{
		logger: discard,
		clock:  systemClock{},
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// With returns a copy of e with opts applied on top of its settings.
func (e *Engine) With(opts ...Option) *Engine {
	c := *e
	c.hooks = slices.Clone(e.hooks)
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Report describes a finished pass.
type Report struct {
	Transform string
	Activity  string
	Strategy  string
	Workers   int
	// RowsPerWorker is indexed by worker id.
	RowsPerWorker []int
	Elapsed       time.Duration
}

// String formats the timing message, e.g.
// "Image inversion took 0.25 seconds."
func (r Report) String() string {
	return fmt.Sprintf("%s took %g seconds.", r.Activity, r.Elapsed.Seconds())
}

// Rows returns the total number of rows processed.
func (r Report) Rows() int {
	total := 0
	for _, n := range r.RowsPerWorker {
		total += n
	}
	return total
}

func validate(src, dst core.PixelSurface, t algorithms.Transform, s partition.Strategy, numWorkers int) error {
	if numWorkers < 1 {
		return fmt.Errorf("%w: %d", core.ErrInvalidWorkerCount, numWorkers)
	}
	if isNil(src) || isNil(dst) {
		return errors.New("engine: nil surface")
	}
	if t == nil {
		return errors.New("engine: nil transform")
	}
	if s == nil {
		return errors.New("engine: nil partition strategy")
	}
	return core.SameDimensions(src, dst)
}

// isNil also catches a nil *core.Surface stored in the interface.
func isNil(s core.PixelSurface) bool {
	if s == nil {
		return true
	}
	if cs, ok := s.(*core.Surface); ok {
		return cs == nil
	}
	return false
}

// Apply reads every pixel of src, transforms it and writes the result into
// dst using numWorkers goroutines split by s. It returns once every worker
// has finished. Invalid arguments are reported before any worker starts.
func (e *Engine) Apply(src, dst core.PixelSurface, t algorithms.Transform, s partition.Strategy, numWorkers int) (Report, error) {
	if err := validate(src, dst, t, s, numWorkers); err != nil {
		return Report{}, err
	}

	grid := core.GridFor(src.Width(), src.Height())
	log := e.logger.WithFields(logrus.Fields{
		"transform": t.GetName(),
		"strategy":  s.GetName(),
		"workers":   numWorkers,
	})

	report := Report{
		Transform:     t.GetName(),
		Activity:      t.GetActivity(),
		Strategy:      s.GetName(),
		Workers:       numWorkers,
		RowsPerWorker: make([]int, numWorkers),
	}

	start := e.clock.Now()

	var wg sync.WaitGroup
	for id, sched := range s.Schedule(numWorkers, grid.StartY, grid.StopY) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report.RowsPerWorker[id] = e.work(log, sched, src, dst, t, grid)
		}()
	}
	wg.Wait()

	report.Elapsed = e.clock.Now().Sub(start)

	log.WithFields(logrus.Fields{
		"rows":    report.Rows(),
		"elapsed": report.Elapsed,
	}).Info(report.String())

	return report, nil
}

// work processes one schedule and returns the number of rows it handled.
func (e *Engine) work(log logrus.FieldLogger, sched partition.Schedule, src, dst core.PixelSurface, t algorithms.Transform, grid core.Bounds) int {
	id := sched.Worker()
	log.WithField("worker", id).Debug("worker started")

	rows := 0
	for y := range sched.Rows() {
		dstRow := y
		for x := grid.StartX; x < grid.StopX; x++ {
			p, c := t.Apply(core.Point{X: x, Y: y}, src.GetPixel(x, y), grid)
			dst.SetPixel(p.X, p.Y, c)
			if x == grid.StartX {
				dstRow = p.Y
			}
		}
		rows++

		for _, h := range e.hooks {
			h(id, y, dstRow)
		}
		if e.pace > 0 {
			e.sleep(e.pace)
		}
	}

	log.WithFields(logrus.Fields{"worker": id, "rows": rows}).Debug("worker finished")
	return rows
}

// Convert runs a pass into a freshly allocated destination the size of src.
func (e *Engine) Convert(src *core.Surface, t algorithms.Transform, s partition.Strategy, numWorkers int) (*core.Surface, Report, error) {
	if src == nil {
		return nil, Report{}, errors.New("engine: nil surface")
	}
	dst, err := core.NewSurfaceLike(src)
	if err != nil {
		return nil, Report{}, err
	}
	report, err := e.Apply(src, dst, t, s, numWorkers)
	if err != nil {
		return nil, Report{}, err
	}
	return dst, report, nil
}

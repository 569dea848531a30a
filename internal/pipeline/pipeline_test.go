package pipeline

import (
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parallel-image-converter/internal/algorithms"
	"parallel-image-converter/internal/core"
	"parallel-image-converter/internal/engine"
	"parallel-image-converter/internal/partition"
)

type recordingSink struct {
	mu        sync.Mutex
	begun     []string
	presented []string
	rows      map[string]int
	surfaces  []*core.Surface
	err       error
}

func (r *recordingSink) Begin(dst *core.Surface, title string) engine.RowHook {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.begun = append(r.begun, title)
	if r.rows == nil {
		r.rows = make(map[string]int)
	}
	return func(worker, srcRow, dstRow int) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.rows[title]++
	}
}

func (r *recordingSink) Present(dst *core.Surface, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presented = append(r.presented, title)
	r.surfaces = append(r.surfaces, dst)
	return r.err
}

type memorySnapshots struct {
	saved map[string]*core.Surface
}

func (m *memorySnapshots) SaveSnapshot(s *core.Surface, path string) error {
	if m.saved == nil {
		m.saved = make(map[string]*core.Surface)
	}
	m.saved[path] = s
	return nil
}

func newLoadedPipeline(t *testing.T) (*Pipeline, *core.ImageData, *core.Surface) {
	t.Helper()
	logger, _ := logtest.NewNullLogger()

	src, err := core.NewSurface(6, 4)
	require.NoError(t, err)
	src.SetPixel(-3, -2, core.RGB(10, 20, 30))

	data := core.NewImageData()
	require.NoError(t, data.SetOriginal(src, "pics/beads.jpg"))
	return New(data, engine.New(), logger), data, src
}

func TestRunSteps(t *testing.T) {
	p, data, src := newLoadedPipeline(t)
	snaps := &memorySnapshots{}
	p.SetSnapshots(snaps, "shots")

	require.NoError(t, p.AddStep(ProcessingStep{Algorithm: algorithms.NameInvert, Strategy: partition.NameRowInterleave, Workers: 2, Enabled: true}))
	require.NoError(t, p.AddStep(ProcessingStep{Algorithm: algorithms.NameFlipVertical, Strategy: partition.NameRuntimeAuto, Workers: 3, Enabled: false}))
	require.NoError(t, p.AddStep(ProcessingStep{Algorithm: algorithms.NameFlipHorizontal, Strategy: partition.NameEqualChunk, Workers: 4, Enabled: true}))

	sink := &recordingSink{}
	results, err := p.Run(sink)
	require.NoError(t, err)
	require.Len(t, results, 2)

	wantTitles := []string{
		"beads.jpg Inverted, Chunk-Size 1",
		"beads.jpg Flipped Horizontally, Equal-Sized Chunks",
	}
	assert.Equal(t, wantTitles, sink.begun)
	assert.Equal(t, wantTitles, sink.presented)
	assert.Equal(t, map[string]int{wantTitles[0]: 4, wantTitles[1]: 4}, sink.rows)

	assert.Equal(t, "Image inversion", results[0].Report.Activity)
	assert.Equal(t, 2, results[0].Report.Workers)
	assert.Equal(t, "shots/beads_jpg_Inverted_Chunk-Size_1.png", results[0].Snapshot)
	assert.Len(t, snaps.saved, 2)

	// Each step reads the untouched source.
	assert.Equal(t, core.RGB(245, 235, 225), sink.surfaces[0].GetPixel(-3, -2))
	assert.Equal(t, core.RGB(10, 20, 30), sink.surfaces[1].GetPixel(2, -2))
	assert.Equal(t, core.RGB(10, 20, 30), src.GetPixel(-3, -2))

	assert.Same(t, sink.surfaces[1], data.GetProcessed())
}

func TestRunStopsOnPresentError(t *testing.T) {
	p, _, _ := newLoadedPipeline(t)
	require.NoError(t, p.AddStep(ProcessingStep{Algorithm: algorithms.NameInvert, Strategy: partition.NameRuntimeAuto, Workers: 1, Enabled: true}))
	require.NoError(t, p.AddStep(ProcessingStep{Algorithm: algorithms.NameInvert, Strategy: partition.NameRuntimeAuto, Workers: 1, Enabled: true}))

	boom := errors.New("window closed")
	sink := &recordingSink{err: boom}
	results, err := p.Run(sink)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, results)
	assert.Len(t, sink.presented, 1)
}

func TestRunWithoutImage(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	p := New(core.NewImageData(), engine.New(), logger)
	_, err := p.Run(nil)
	assert.Error(t, err)
}

func TestAddStepValidation(t *testing.T) {
	p, _, _ := newLoadedPipeline(t)

	err := p.AddStep(ProcessingStep{Algorithm: "sepia", Strategy: partition.NameEqualChunk, Workers: 1})
	assert.ErrorIs(t, err, algorithms.ErrUnknownTransform)

	err = p.AddStep(ProcessingStep{Algorithm: algorithms.NameInvert, Strategy: "diagonal", Workers: 1})
	assert.ErrorIs(t, err, partition.ErrUnknownStrategy)

	err = p.AddStep(ProcessingStep{Algorithm: algorithms.NameInvert, Strategy: partition.NameEqualChunk, Workers: 0})
	assert.ErrorIs(t, err, core.ErrInvalidWorkerCount)

	assert.Empty(t, p.Steps())
}

func TestStepManagement(t *testing.T) {
	p, _, _ := newLoadedPipeline(t)
	step := ProcessingStep{Algorithm: algorithms.NameInvert, Strategy: partition.NameEqualChunk, Workers: 1, Enabled: true}
	require.NoError(t, p.AddStep(step))

	require.NoError(t, p.SetStepEnabled(0, false))
	assert.False(t, p.Steps()[0].Enabled)
	assert.Error(t, p.SetStepEnabled(3, true))

	results, err := p.Run(NopSink{})
	require.NoError(t, err)
	assert.Empty(t, results)

	p.ClearAll()
	assert.Empty(t, p.Steps())
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "beads.jpg Inverted", Title("beads.jpg", algorithms.Invert{}, partition.RuntimeAuto{}))
	assert.Equal(t, "beads.jpg Inverted, Equal-Sized Chunks", Title("beads.jpg", algorithms.Invert{}, partition.EqualChunk{}))
	assert.Equal(t, "Flipped Vertically", Title("", algorithms.FlipVertical{}, partition.RuntimeAuto{}))
}

func TestConfigure(t *testing.T) {
	p, _, _ := newLoadedPipeline(t)
	require.NoError(t, p.AddStep(ProcessingStep{Algorithm: algorithms.NameInvert, Strategy: partition.NameEqualChunk, Workers: 1, Enabled: true}))

	names := []string{algorithms.NameInvert, algorithms.NameFlipVertical, algorithms.NameFlipHorizontal}
	require.NoError(t, p.Configure(names, partition.NameRowInterleave, 3, []string{algorithms.NameFlipVertical}))

	steps := p.Steps()
	require.Len(t, steps, 3)
	for i, step := range steps {
		assert.Equal(t, names[i], step.Algorithm)
		assert.Equal(t, partition.NameRowInterleave, step.Strategy)
		assert.Equal(t, 3, step.Workers)
	}
	assert.Equal(t, []bool{true, false, true}, []bool{steps[0].Enabled, steps[1].Enabled, steps[2].Enabled})

	results, err := p.Run(NopSink{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, algorithms.NameFlipHorizontal, results[1].Step.Algorithm)

	err = p.Configure([]string{algorithms.NameInvert, "sepia"}, partition.NameEqualChunk, 1, nil)
	assert.ErrorIs(t, err, algorithms.ErrUnknownTransform)
	assert.Empty(t, p.Steps())
}

func TestRunLogsSource(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	src, err := core.NewSurface(2, 2)
	require.NoError(t, err)
	data := core.NewImageData()
	require.NoError(t, data.SetOriginal(src, "pics/beads.jpg"))

	p := New(data, engine.New(), logger)
	require.NoError(t, p.Configure([]string{algorithms.NameInvert}, partition.NameRuntimeAuto, 1, nil))
	_, err = p.Run(nil)
	require.NoError(t, err)

	var started *logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Message == "PIPELINE: Starting run" {
			started = entry
		}
	}
	require.NotNil(t, started)
	assert.Equal(t, "pics/beads.jpg", started.Data["source"])
	assert.Equal(t, 1, started.Data["steps"])
}

// gatedSink holds every step in Present until release is closed.
type gatedSink struct {
	NopSink
	release chan struct{}
}

func (g gatedSink) Present(*core.Surface, string) error {
	<-g.release
	return nil
}

func TestStartReportsOutcome(t *testing.T) {
	p, _, _ := newLoadedPipeline(t)
	require.NoError(t, p.Configure([]string{algorithms.NameFlipVertical}, partition.NameEqualChunk, 2, nil))

	sink := gatedSink{release: make(chan struct{})}
	job := p.Start(sink)
	assert.False(t, job.Finished())

	close(sink.release)
	<-job.Done()
	assert.True(t, job.Finished())

	results, err := job.Wait()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "beads.jpg Flipped Vertically, Equal-Sized Chunks", results[0].Title)
}

func TestStartReportsFailure(t *testing.T) {
	p, _, _ := newLoadedPipeline(t)
	require.NoError(t, p.Configure([]string{algorithms.NameInvert}, partition.NameRuntimeAuto, 1, nil))

	boom := errors.New("window closed")
	job := p.Start(&recordingSink{err: boom})
	_, err := job.Wait()
	assert.ErrorIs(t, err, boom)
	assert.True(t, job.Finished())
}

package partition

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var workerCounts = []int{1, 2, 3, 5, 17}

var rowRanges = []struct {
	name        string
	start, stop int
}{
	{"centered", -400, 400},
	{"odd", -3, 4},
	{"small", 0, 3},
	{"single", 7, 8},
	{"empty", 5, 5},
}

// drain runs every schedule on its own goroutine, the way the engine does,
// and returns the row counts observed.
func drain(t *testing.T, schedules []Schedule) map[int]int {
	t.Helper()

	var (
		mu   sync.Mutex
		seen = make(map[int]int)
		wg   sync.WaitGroup
	)
	for _, s := range schedules {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var local []int
			for y := range s.Rows() {
				local = append(local, y)
			}
			mu.Lock()
			for _, y := range local {
				seen[y]++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	return seen
}

func TestStrategiesCoverEveryRowOnce(t *testing.T) {
	for _, name := range Names() {
		strategy, err := Lookup(name)
		require.NoError(t, err)

		for _, rr := range rowRanges {
			for _, n := range workerCounts {
				schedules := strategy.Schedule(n, rr.start, rr.stop)
				require.Len(t, schedules, n, "%s/%s/%d", name, rr.name, n)
				for id, s := range schedules {
					assert.Equal(t, id, s.Worker())
				}

				seen := drain(t, schedules)
				assert.Len(t, seen, rr.stop-rr.start, "%s/%s/%d: gap", name, rr.name, n)
				for y, count := range seen {
					assert.True(t, y >= rr.start && y < rr.stop, "%s/%s/%d: row %d out of range", name, rr.name, n, y)
					assert.Equal(t, 1, count, "%s/%s/%d: row %d overlap", name, rr.name, n, y)
				}
			}
		}
	}
}

func TestScheduleRejectsNoWorkers(t *testing.T) {
	for _, name := range Names() {
		strategy, err := Lookup(name)
		require.NoError(t, err)
		assert.Nil(t, strategy.Schedule(0, 0, 10), name)
	}
}

func TestEqualChunkRemainderGoesToLastWorker(t *testing.T) {
	tests := []struct {
		rows, workers int
		wantLens      []int
	}{
		{10, 3, []int{4, 4, 2}},
		{10, 4, []int{3, 3, 3, 1}},
		{7, 2, []int{4, 3}},
		{800, 3, []int{267, 267, 266}},
		{12, 4, []int{3, 3, 3, 3}},
		{3, 5, []int{1, 1, 1, 0, 0}},
	}

	for _, tt := range tests {
		start := -tt.rows / 2
		stop := start + tt.rows
		chunk := ChunkSize(tt.workers, start, stop)

		var lens []int
		next := start
		for id := range tt.workers {
			a := EqualChunk{}.Assign(id, tt.workers, start, stop)
			assert.Equal(t, 1, a.Stride)
			assert.Equal(t, next, a.Start, "rows=%d workers=%d id=%d", tt.rows, tt.workers, id)
			next = a.Stop
			lens = append(lens, a.Len())
		}
		assert.Equal(t, stop, next)
		assert.Equal(t, tt.wantLens, lens, "rows=%d workers=%d", tt.rows, tt.workers)

		for _, l := range lens[:len(lens)-1] {
			if l > 0 {
				assert.Equal(t, chunk, l)
			}
		}
	}
}

func TestEqualChunkSingleWorkerIsSequential(t *testing.T) {
	a := EqualChunk{}.Assign(0, 1, -5, 5)
	assert.Equal(t, WorkAssignment{WorkerID: 0, Start: -5, Stop: 5, Stride: 1}, a)
	assert.Equal(t, 10, a.Len())
}

func TestRowInterleaveStride(t *testing.T) {
	a := RowInterleave{}.Assign(1, 3, -4, 4)
	assert.Equal(t, []int{-3, 0, 3}, slices.Collect(a.Rows()))
	assert.Equal(t, 3, a.Len())

	a = RowInterleave{}.Assign(4, 5, 0, 3)
	assert.True(t, a.Empty())
	assert.Empty(t, slices.Collect(a.Rows()))
}

func TestWorkAssignmentLen(t *testing.T) {
	tests := []struct {
		a    WorkAssignment
		want int
	}{
		{WorkAssignment{Start: 0, Stop: 10, Stride: 1}, 10},
		{WorkAssignment{Start: 0, Stop: 10, Stride: 3}, 4},
		{WorkAssignment{Start: 2, Stop: 10, Stride: 4}, 2},
		{WorkAssignment{Start: 5, Stop: 5, Stride: 1}, 0},
		{WorkAssignment{Start: 6, Stop: 5, Stride: 1}, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.a.Len(), "%+v", tt.a)
		assert.Len(t, slices.Collect(tt.a.Rows()), tt.want, "%+v", tt.a)
	}
}

func TestRuntimeAutoSequentialDrain(t *testing.T) {
	schedules := RuntimeAuto{}.Schedule(3, 0, 5)

	// The first worker to ask takes everything.
	assert.Equal(t, []int{0, 1, 2, 3, 4}, slices.Collect(schedules[0].Rows()))
	assert.Empty(t, slices.Collect(schedules[1].Rows()))
	assert.Empty(t, slices.Collect(schedules[2].Rows()))
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{NameRuntimeAuto, NameEqualChunk, NameRowInterleave}, Names())

	s, err := Lookup(NameEqualChunk)
	require.NoError(t, err)
	assert.IsType(t, EqualChunk{}, s)
	_, static := s.(Static)
	assert.True(t, static)

	_, err = Lookup("diagonal")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

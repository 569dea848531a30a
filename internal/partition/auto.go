package partition

import (
	"iter"
	"sync/atomic"
)

// RuntimeAuto has no fixed split. Workers claim the next unprocessed row
// from a shared cursor until none remain, so faster workers take more rows.
type RuntimeAuto struct{}

func (RuntimeAuto) GetName() string { return "Runtime Auto" }

func (RuntimeAuto) GetDescription() string {
	return "Rows claimed on demand from a shared counter"
}

func (RuntimeAuto) Schedule(numWorkers, startRow, stopRow int) []Schedule {
	if numWorkers < 1 {
		return nil
	}
	c := &cursor{stop: int64(stopRow)}
	c.next.Store(int64(startRow))

	out := make([]Schedule, numWorkers)
	for id := range numWorkers {
		out[id] = dynamicSchedule{worker: id, cursor: c}
	}
	return out
}

type cursor struct {
	next atomic.Int64
	stop int64
}

// claim returns the next row, or false once the range is exhausted.
func (c *cursor) claim() (int, bool) {
	y := c.next.Add(1) - 1
	if y >= c.stop {
		return 0, false
	}
	return int(y), true
}

type dynamicSchedule struct {
	worker int
	cursor *cursor
}

func (d dynamicSchedule) Worker() int { return d.worker }

// Rows claims rows as the caller consumes them. Rows yielded to one worker
// are never yielded to another.
func (d dynamicSchedule) Rows() iter.Seq[int] {
	return func(yield func(int) bool) {
		for {
			y, ok := d.cursor.claim()
			if !ok || !yield(y) {
				return
			}
		}
	}
}

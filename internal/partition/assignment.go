package partition

import "iter"

// Schedule yields the rows a single worker must process.
type Schedule interface {
	Worker() int
	Rows() iter.Seq[int]
}

// WorkAssignment is a static schedule: rows Start, Start+Stride, ... below
// Stop. A contiguous range has Stride 1.
type WorkAssignment struct {
	WorkerID int
	Start    int
	Stop     int
	Stride   int
}

func (a WorkAssignment) Worker() int { return a.WorkerID }

// Rows iterates the assigned rows in increasing order.
func (a WorkAssignment) Rows() iter.Seq[int] {
	return func(yield func(int) bool) {
		step := max(a.Stride, 1)
		for y := a.Start; y < a.Stop; y += step {
			if !yield(y) {
				return
			}
		}
	}
}

// Len returns the number of rows in the assignment.
func (a WorkAssignment) Len() int {
	if a.Stop <= a.Start {
		return 0
	}
	step := max(a.Stride, 1)
	return (a.Stop - a.Start + step - 1) / step
}

// Empty reports whether the assignment has no rows.
func (a WorkAssignment) Empty() bool {
	return a.Len() == 0
}

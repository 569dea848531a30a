package partition

// RowInterleave deals rows out round-robin: worker id takes rows
// startRow+id, startRow+id+numWorkers, and so on. Load stays even when rows
// cost the same, at the price of locality.
type RowInterleave struct{}

func (RowInterleave) GetName() string { return "Row Interleave" }

func (RowInterleave) GetDescription() string {
	return "Strided rows, chunk size 1"
}

func (RowInterleave) Assign(workerID, numWorkers, startRow, stopRow int) WorkAssignment {
	return WorkAssignment{
		WorkerID: workerID,
		Start:    min(startRow+workerID, stopRow),
		Stop:     stopRow,
		Stride:   max(numWorkers, 1),
	}
}

func (r RowInterleave) Schedule(numWorkers, startRow, stopRow int) []Schedule {
	return scheduleStatic(r, numWorkers, startRow, stopRow)
}

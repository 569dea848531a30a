package partition

// EqualChunk gives each worker a contiguous block of ceil(rows/numWorkers)
// rows. The last worker's block ends at stopRow, so it takes whatever is
// left over. Workers whose block would start past stopRow get nothing.
type EqualChunk struct{}

func (EqualChunk) GetName() string { return "Equal Chunk" }

func (EqualChunk) GetDescription() string {
	return "Equal-sized contiguous chunks, remainder to the last worker"
}

// ChunkSize returns ceil((stopRow-startRow)/numWorkers).
func ChunkSize(numWorkers, startRow, stopRow int) int {
	rows := stopRow - startRow
	if rows <= 0 || numWorkers < 1 {
		return 0
	}
	return (rows + numWorkers - 1) / numWorkers
}

func (EqualChunk) Assign(workerID, numWorkers, startRow, stopRow int) WorkAssignment {
	chunk := ChunkSize(numWorkers, startRow, stopRow)
	start := min(startRow+workerID*chunk, stopRow)
	stop := stopRow
	if workerID < numWorkers-1 {
		stop = min(start+chunk, stopRow)
	}
	return WorkAssignment{
		WorkerID: workerID,
		Start:    start,
		Stop:     stop,
		Stride:   1,
	}
}

func (e EqualChunk) Schedule(numWorkers, startRow, stopRow int) []Schedule {
	return scheduleStatic(e, numWorkers, startRow, stopRow)
}

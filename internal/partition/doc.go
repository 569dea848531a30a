// Package partition assigns image rows to workers.
//
// A Strategy turns (numWorkers, startRow, stopRow) into one Schedule per
// worker. Whatever the strategy and worker count, the schedules together
// visit every row in [startRow, stopRow) exactly once. Workers beyond the
// number of rows receive empty schedules.
//
// Three strategies are provided:
//
//   - RowInterleave: worker id takes rows id, id+n, id+2n, ...
//   - EqualChunk: contiguous chunks of ceil(rows/n); the last worker takes
//     whatever remains.
//   - RuntimeAuto: rows are handed out on demand from a shared cursor, so
//     the split is decided while the pass runs.
package partition

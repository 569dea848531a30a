package partition

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// ErrUnknownStrategy is returned by Lookup for an unregistered name.
var ErrUnknownStrategy = errors.New("unknown partition strategy")

// Strategy splits a row range across workers.
type Strategy interface {
	// Schedule returns numWorkers schedules, indexed by worker id, that
	// together cover [startRow, stopRow) once. It returns nil when
	// numWorkers < 1.
	Schedule(numWorkers, startRow, stopRow int) []Schedule
	GetName() string
	GetDescription() string
}

// Static is a Strategy whose split is known before the pass starts.
type Static interface {
	Strategy
	Assign(workerID, numWorkers, startRow, stopRow int) WorkAssignment
}

// Registered strategy names.
const (
	NameRowInterleave = "interleave"
	NameEqualChunk    = "chunk"
	NameRuntimeAuto   = "auto"
)

var strategies = make(map[string]Strategy)

func Register(name string, s Strategy) {
	strategies[name] = s
}

func Lookup(name string) (Strategy, error) {
	s, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownStrategy, name, Names())
	}
	return s, nil
}

// Names returns the registered strategy names in sorted order.
func Names() []string {
	names := lo.Keys(strategies)
	slices.Sort(names)
	return names
}

func init() {
	Register(NameRowInterleave, RowInterleave{})
	Register(NameEqualChunk, EqualChunk{})
	Register(NameRuntimeAuto, RuntimeAuto{})
}

// scheduleStatic expands a Static strategy into per-worker schedules.
func scheduleStatic(s Static, numWorkers, startRow, stopRow int) []Schedule {
	if numWorkers < 1 {
		return nil
	}
	out := make([]Schedule, numWorkers)
	for id := range numWorkers {
		out[id] = s.Assign(id, numWorkers, startRow, stopRow)
	}
	return out
}

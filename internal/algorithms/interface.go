// Per-pixel transforms applied by the engine
package algorithms

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"parallel-image-converter/internal/core"
)

// ErrUnknownTransform is returned by Lookup for an unregistered name.
var ErrUnknownTransform = errors.New("unknown transform")

// Transform maps a source pixel to the destination cell it lands on and the
// color written there. Every Transform is a bijection over the grid.
type Transform interface {
	Apply(p core.Point, c core.Color, grid core.Bounds) (core.Point, core.Color)
	GetName() string
	GetDescription() string
	// GetTitle is appended to the image name for the result window,
	// e.g. "Inverted".
	GetTitle() string
	// GetActivity names the pass in timing messages, e.g. "Image inversion".
	GetActivity() string
}

// Registered transform names.
const (
	NameInvert         = "invert"
	NameFlipVertical   = "flip-vertical"
	NameFlipHorizontal = "flip-horizontal"
)

var algorithms = make(map[string]Transform)

func Register(name string, t Transform) {
	algorithms[name] = t
}

func Lookup(name string) (Transform, error) {
	t, ok := algorithms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownTransform, name, Names())
	}
	return t, nil
}

func IsValidAlgorithm(name string) bool {
	_, exists := algorithms[name]
	return exists
}

// Names returns the registered transform names in sorted order.
func Names() []string {
	names := lo.Keys(algorithms)
	slices.Sort(names)
	return names
}

func init() {
	Register(NameInvert, Invert{})
	Register(NameFlipVertical, FlipVertical{})
	Register(NameFlipHorizontal, FlipHorizontal{})
}

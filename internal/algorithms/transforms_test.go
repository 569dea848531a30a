package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parallel-image-converter/internal/core"
)

func TestTransformsAreBijections(t *testing.T) {
	grids := []core.Bounds{
		core.GridFor(4, 4),
		core.GridFor(5, 3),
		core.GridFor(1, 7),
	}

	for _, name := range Names() {
		tr, err := Lookup(name)
		require.NoError(t, err)

		for _, grid := range grids {
			hit := make(map[core.Point]int)
			for y := grid.StartY; y < grid.StopY; y++ {
				for x := grid.StartX; x < grid.StopX; x++ {
					dst, _ := tr.Apply(core.Point{X: x, Y: y}, core.Color{}, grid)
					require.True(t, grid.Contains(dst), "%s: %v -> %v outside %+v", name, core.Point{X: x, Y: y}, dst, grid)
					hit[dst]++
				}
			}
			assert.Len(t, hit, grid.Width()*grid.Height(), name)
			for p, n := range hit {
				assert.Equal(t, 1, n, "%s: %v written %d times", name, p, n)
			}
		}
	}
}

func TestFlipsAreSelfInverse(t *testing.T) {
	grid := core.GridFor(6, 5)
	c := core.RGB(1, 2, 3)

	for _, tr := range []Transform{FlipVertical{}, FlipHorizontal{}} {
		for y := grid.StartY; y < grid.StopY; y++ {
			for x := grid.StartX; x < grid.StopX; x++ {
				p := core.Point{X: x, Y: y}
				once, c1 := tr.Apply(p, c, grid)
				twice, c2 := tr.Apply(once, c1, grid)
				assert.Equal(t, p, twice, tr.GetName())
				assert.Equal(t, c, c2, tr.GetName())
			}
		}
	}
}

func TestInvert(t *testing.T) {
	grid := core.GridFor(4, 4)
	p := core.Point{X: 0, Y: 0}

	dst, c := Invert{}.Apply(p, core.RGB(10, 20, 30), grid)
	assert.Equal(t, p, dst)
	assert.Equal(t, core.RGB(245, 235, 225), c)

	_, back := Invert{}.Apply(dst, c, grid)
	assert.Equal(t, core.RGB(10, 20, 30), back)
}

func TestFlipCoordinates(t *testing.T) {
	grid := core.GridFor(4, 2) // x in [-2, 2), y in [-1, 1)

	dst, _ := FlipVertical{}.Apply(core.Point{X: -2, Y: -1}, core.Color{}, grid)
	assert.Equal(t, core.Point{X: -2, Y: 0}, dst)

	dst, _ = FlipHorizontal{}.Apply(core.Point{X: -2, Y: -1}, core.Color{}, grid)
	assert.Equal(t, core.Point{X: 1, Y: -1}, dst)

	dst, _ = FlipHorizontal{}.Apply(core.Point{X: 0, Y: 0}, core.Color{}, grid)
	assert.Equal(t, core.Point{X: -1, Y: 0}, dst)
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{NameFlipHorizontal, NameFlipVertical, NameInvert}, Names())
	assert.True(t, IsValidAlgorithm(NameInvert))
	assert.False(t, IsValidAlgorithm("sepia"))

	tr, err := Lookup(NameFlipVertical)
	require.NoError(t, err)
	assert.Equal(t, "Flipped Vertically", tr.GetTitle())
	assert.Equal(t, "Vertical image flipping", tr.GetActivity())

	_, err = Lookup("sepia")
	assert.ErrorIs(t, err, ErrUnknownTransform)
}

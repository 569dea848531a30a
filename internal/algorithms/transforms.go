package algorithms

import "parallel-image-converter/internal/core"

// Invert replaces each channel c with 255-c and leaves the pixel in place.
type Invert struct{}

func (Invert) Apply(p core.Point, c core.Color, _ core.Bounds) (core.Point, core.Color) {
	return p, c.Inverse()
}

func (Invert) GetName() string        { return "Invert" }
func (Invert) GetDescription() string { return "Color inversion (255 - channel)" }
func (Invert) GetTitle() string       { return "Inverted" }
func (Invert) GetActivity() string    { return "Image inversion" }

// FlipVertical mirrors rows: y maps to StopY-1-(y-StartY).
type FlipVertical struct{}

func (FlipVertical) Apply(p core.Point, c core.Color, grid core.Bounds) (core.Point, core.Color) {
	return core.Point{X: p.X, Y: grid.StopY - 1 - (p.Y - grid.StartY)}, c
}

func (FlipVertical) GetName() string        { return "Flip Vertical" }
func (FlipVertical) GetDescription() string { return "Mirror the image top to bottom" }
func (FlipVertical) GetTitle() string       { return "Flipped Vertically" }
func (FlipVertical) GetActivity() string    { return "Vertical image flipping" }

// FlipHorizontal mirrors columns: x maps to StopX-1-(x-StartX).
type FlipHorizontal struct{}

func (FlipHorizontal) Apply(p core.Point, c core.Color, grid core.Bounds) (core.Point, core.Color) {
	return core.Point{X: grid.StopX - 1 - (p.X - grid.StartX), Y: p.Y}, c
}

func (FlipHorizontal) GetName() string        { return "Flip Horizontal" }
func (FlipHorizontal) GetDescription() string { return "Mirror the image left to right" }
func (FlipHorizontal) GetTitle() string       { return "Flipped Horizontally" }
func (FlipHorizontal) GetActivity() string    { return "Horizontal image flipping" }

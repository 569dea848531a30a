// Pixel surface addressed in a coordinate system centered at the origin
package core

import (
	"fmt"
	"image"
	"image/color"
)

// PixelSurface is the read/write pixel accessor the engine works against.
// Columns run over [Grid().StartX, Grid().StopX) and rows over
// [Grid().StartY, Grid().StopY).
type PixelSurface interface {
	Width() int
	Height() int
	GetPixel(x, y int) Color
	SetPixel(x, y int, c Color)
}

// Point is a coordinate in the centered system.
type Point struct {
	X, Y int
}

// Bounds describes the centered W x H grid. Start values are inclusive,
// Stop values exclusive.
type Bounds struct {
	StartX, StopX int
	StartY, StopY int
}

// GridFor returns the centered grid for a width x height surface.
// For even sizes this is [-W/2, W/2) x [-H/2, H/2); odd sizes keep every
// column and row by extending the stop value.
func GridFor(width, height int) Bounds {
	startX := -(width / 2)
	startY := -(height / 2)
	return Bounds{
		StartX: startX,
		StopX:  startX + width,
		StartY: startY,
		StopY:  startY + height,
	}
}

// Width returns the number of columns.
func (b Bounds) Width() int { return b.StopX - b.StartX }

// Height returns the number of rows.
func (b Bounds) Height() int { return b.StopY - b.StartY }

// Contains reports whether p lies inside the grid.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.StartX && p.X < b.StopX && p.Y >= b.StartY && p.Y < b.StopY
}

// Surface is an in-memory PixelSurface. Width and height are fixed at
// creation. Row StartY is the bottom row; it is stored first.
//
// Distinct cells may be written concurrently; a cell must not be read and
// written at the same time.
type Surface struct {
	width  int
	height int
	grid   Bounds
	pix    []Color
}

// NewSurface creates a black width x height surface.
func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Surface{
		width:  width,
		height: height,
		grid:   GridFor(width, height),
		pix:    make([]Color, width*height),
	}, nil
}

// NewSurfaceLike creates a black surface with the dimensions of s.
func NewSurfaceLike(s PixelSurface) (*Surface, error) {
	return NewSurface(s.Width(), s.Height())
}

// SurfaceFromImage copies img into a new surface. The top row of img
// becomes row StopY-1.
func SurfaceFromImage(img image.Image) (*Surface, error) {
	r := img.Bounds()
	s, err := NewSurface(r.Dx(), r.Dy())
	if err != nil {
		return nil, err
	}
	for iy := 0; iy < s.height; iy++ {
		for ix := 0; ix < s.width; ix++ {
			s.Set(ix, iy, img.At(r.Min.X+ix, r.Min.Y+iy))
		}
	}
	return s, nil
}

func (s *Surface) Width() int   { return s.width }
func (s *Surface) Height() int  { return s.height }
func (s *Surface) Grid() Bounds { return s.grid }

// GetPixel reads the color at (x, y). Coordinates outside the grid are a
// caller error.
func (s *Surface) GetPixel(x, y int) Color {
	return s.pix[s.index(x, y)]
}

// SetPixel writes c at (x, y).
func (s *Surface) SetPixel(x, y int, c Color) {
	s.pix[s.index(x, y)] = c
}

// Row returns the backing slice for row y, left to right.
func (s *Surface) Row(y int) []Color {
	i := s.index(s.grid.StartX, y)
	return s.pix[i : i+s.width : i+s.width]
}

func (s *Surface) index(x, y int) int {
	return (y-s.grid.StartY)*s.width + (x - s.grid.StartX)
}

// Clone returns a deep copy.
func (s *Surface) Clone() *Surface {
	c := *s
	c.pix = make([]Color, len(s.pix))
	copy(c.pix, s.pix)
	return &c
}

// Equal reports whether both surfaces have the same size and pixels.
func (s *Surface) Equal(o *Surface) bool {
	if s.width != o.width || s.height != o.height {
		return false
	}
	for i := range s.pix {
		if s.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}

// The methods below make Surface a draw.Image in image space, where (0, 0)
// is the top-left pixel.

func (s *Surface) ColorModel() color.Model { return ColorModel }

func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

func (s *Surface) At(ix, iy int) color.Color {
	if !(image.Point{ix, iy}.In(s.Bounds())) {
		return Color{}
	}
	return s.GetPixel(s.grid.StartX+ix, s.grid.StopY-1-iy)
}

func (s *Surface) Set(ix, iy int, c color.Color) {
	if !(image.Point{ix, iy}.In(s.Bounds())) {
		return
	}
	s.SetPixel(s.grid.StartX+ix, s.grid.StopY-1-iy, ColorModel.Convert(c).(Color))
}

// RGBA copies the surface into a new *image.RGBA.
func (s *Surface) RGBA() *image.RGBA {
	dst := image.NewRGBA(s.Bounds())
	for iy := 0; iy < s.height; iy++ {
		row := s.Row(s.grid.StopY - 1 - iy)
		off := dst.PixOffset(0, iy)
		for ix, c := range row {
			p := dst.Pix[off+ix*4 : off+ix*4+4 : off+ix*4+4]
			p[0], p[1], p[2], p[3] = c.R, c.G, c.B, 0xff
		}
	}
	return dst
}

package core

import "image/color"

// Color is an RGB triple with 8 bits per channel.
type Color struct {
	R, G, B uint8
}

// RGB builds a Color from three channel values.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Inverse returns (255-R, 255-G, 255-B).
func (c Color) Inverse() Color {
	return Color{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B}
}

// RGBA implements color.Color. Surfaces are always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// ColorModel converts any color.Color to Color, dropping alpha after
// compositing onto black.
var ColorModel = color.ModelFunc(func(c color.Color) color.Color {
	if rgb, ok := c.(Color); ok {
		return rgb
	}
	r, g, b, _ := c.RGBA()
	return Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
})

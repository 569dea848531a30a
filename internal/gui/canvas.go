// Result window that follows a conversion row by row
package gui

import (
	"image"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"parallel-image-converter/internal/core"
)

// ImageCanvas mirrors a destination surface into a buffer owned by the UI.
// Workers copy finished rows in with CopyRow; the raster reads a snapshot
// of the buffer on the UI goroutine.
type ImageCanvas struct {
	mu     sync.Mutex
	buffer *image.RGBA
	grid   core.Bounds

	raster  *canvas.Raster
	pending atomic.Bool
}

func NewImageCanvas(dst *core.Surface) *ImageCanvas {
	ic := &ImageCanvas{
		buffer: image.NewRGBA(dst.Bounds()),
		grid:   dst.Grid(),
	}
	ic.raster = canvas.NewRaster(ic.generate)
	ic.raster.ScaleMode = canvas.ImageScalePixels
	ic.raster.SetMinSize(fyne.NewSize(float32(dst.Width()), float32(dst.Height())))
	return ic
}

func (ic *ImageCanvas) GetContainer() fyne.CanvasObject {
	return ic.raster
}

// CopyRow copies row y of src into the buffer and schedules a redraw. It
// must be called from the goroutine that wrote the row.
func (ic *ImageCanvas) CopyRow(src *core.Surface, y int) {
	row := src.Row(y)
	iy := ic.grid.StopY - 1 - y

	ic.mu.Lock()
	off := ic.buffer.PixOffset(0, iy)
	for ix, c := range row {
		p := ic.buffer.Pix[off+ix*4 : off+ix*4+4 : off+ix*4+4]
		p[0], p[1], p[2], p[3] = c.R, c.G, c.B, 0xff
	}
	ic.mu.Unlock()

	ic.scheduleRefresh()
}

// CopyAll replaces the buffer with the full surface. src must no longer be
// written to.
func (ic *ImageCanvas) CopyAll(src *core.Surface) {
	img := src.RGBA()

	ic.mu.Lock()
	ic.buffer = img
	ic.mu.Unlock()

	ic.scheduleRefresh()
}

// scheduleRefresh keeps at most one redraw queued on the UI goroutine.
func (ic *ImageCanvas) scheduleRefresh() {
	if !ic.pending.CompareAndSwap(false, true) {
		return
	}
	fyne.Do(func() {
		ic.pending.Store(false)
		ic.raster.Refresh()
	})
}

func (ic *ImageCanvas) generate(w, h int) image.Image {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	frame := image.NewRGBA(ic.buffer.Rect)
	copy(frame.Pix, ic.buffer.Pix)
	return frame
}

// Windows for the source image and every conversion result
package gui

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/dialog"
	"github.com/sirupsen/logrus"

	"parallel-image-converter/internal/core"
	"parallel-image-converter/internal/engine"
)

// Application shows the source image in the main window and opens one
// window per result. It implements pipeline.Sink.
type Application struct {
	app    fyne.App
	window fyne.Window
	logger logrus.FieldLogger

	mu      sync.Mutex
	results map[string]*ImageCanvas
}

func NewApplication(app fyne.App, logger logrus.FieldLogger) *Application {
	return &Application{
		app:     app,
		logger:  logger,
		results: make(map[string]*ImageCanvas),
	}
}

// ShowSource opens the main window. Closing it ends the application.
// Call it before WaitForClose.
func (a *Application) ShowSource(src *core.Surface, title string) {
	a.window = a.app.NewWindow(title)
	a.window.SetMaster()

	img := canvas.NewImageFromImage(src.RGBA())
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScalePixels
	img.SetMinSize(fyne.NewSize(float32(src.Width()), float32(src.Height())))

	a.window.SetContent(img)
	a.window.Resize(fyne.NewSize(float32(src.Width()), float32(src.Height())))
	a.window.Show()

	a.logger.WithFields(logrus.Fields{
		"title":  title,
		"width":  src.Width(),
		"height": src.Height(),
	}).Info("Showing source window")
}

// Begin opens an empty result window and returns a hook that copies each
// finished row into it.
func (a *Application) Begin(dst *core.Surface, title string) engine.RowHook {
	ic := NewImageCanvas(dst)

	a.mu.Lock()
	a.results[title] = ic
	a.mu.Unlock()

	fyne.DoAndWait(func() {
		w := a.app.NewWindow(title)
		w.SetContent(ic.GetContainer())
		w.Resize(fyne.NewSize(float32(dst.Width()), float32(dst.Height())))
		w.Show()
	})

	return func(_, _, dstRow int) {
		ic.CopyRow(dst, dstRow)
	}
}

// Present shows the finished surface in the window Begin opened, or in a new
// one if Begin was not called for this title.
func (a *Application) Present(dst *core.Surface, title string) error {
	a.mu.Lock()
	ic, ok := a.results[title]
	a.mu.Unlock()

	if !ok {
		a.Begin(dst, title)
		a.mu.Lock()
		ic = a.results[title]
		a.mu.Unlock()
	}
	ic.CopyAll(dst)

	a.logger.WithField("title", title).Debug("Result presented")
	return nil
}

// ShowError reports err in a dialog on the main window.
func (a *Application) ShowError(title string, err error) {
	a.logger.WithError(err).Error(title)
	fyne.Do(func() {
		if a.window != nil {
			dialog.ShowError(fmt.Errorf("%s: %w", title, err), a.window)
		}
	})
}

// WaitForClose runs the UI until the main window is closed.
func (a *Application) WaitForClose() {
	a.app.Run()
}

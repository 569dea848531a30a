// Package cv loads and saves surfaces through OpenCV.
package cv

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"parallel-image-converter/internal/core"
	imgio "parallel-image-converter/internal/io"
)

// ImageLoader handles image file operations with gocv
type ImageLoader struct {
	logger logrus.FieldLogger
	width  int
	height int
}

var (
	_ imgio.ImageSource    = (*ImageLoader)(nil)
	_ imgio.SnapshotWriter = (*ImageLoader)(nil)
)

func NewImageLoader(logger logrus.FieldLogger, width, height int) *ImageLoader {
	return &ImageLoader{
		logger: logger,
		width:  width,
		height: height,
	}
}

func (il *ImageLoader) Dimensions() (int, int) {
	return il.width, il.height
}

func (il *ImageLoader) Load(path string) (*core.Surface, error) {
	il.logger.WithField("filepath", path).Debug("Loading image")

	if !isSupportedImageFormat(path) {
		return nil, fmt.Errorf("%w: %s", imgio.ErrUnsupportedFormat, path)
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("failed to load image: %s", path)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Info("Image loaded successfully")

	if mat.Cols() != il.width || mat.Rows() != il.height {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(mat, &resized, image.Pt(il.width, il.height), 0, 0, gocv.InterpolationCubic)
		return matToSurface(resized)
	}
	return matToSurface(mat)
}

func matToSurface(mat gocv.Mat) (*core.Surface, error) {
	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert Mat to image: %w", err)
	}
	return core.SurfaceFromImage(img)
}

func (il *ImageLoader) SaveSnapshot(s *core.Surface, path string) error {
	il.logger.WithField("filepath", path).Debug("Saving image")

	if s == nil {
		return fmt.Errorf("cannot save empty image")
	}
	if !isSupportedImageFormat(path) {
		return fmt.Errorf("%w: %s", imgio.ErrUnsupportedFormat, path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to save image: %w", err)
		}
	}

	mat, err := gocv.ImageToMatRGB(s.RGBA())
	if err != nil {
		return fmt.Errorf("failed to convert image to Mat: %w", err)
	}
	defer mat.Close()

	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("failed to save image: %s", path)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
	}).Info("Image saved successfully")

	return nil
}

func isSupportedImageFormat(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp":
		return true
	}
	return false
}

// Image loading and snapshot saving on pure Go codecs
package io

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register WebP decoder

	"parallel-image-converter/internal/core"
)

// ErrUnsupportedFormat is returned for file extensions no codec handles.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ImageSource produces source surfaces of a fixed size.
type ImageSource interface {
	Load(path string) (*core.Surface, error)
	Dimensions() (width, height int)
}

// SnapshotWriter persists a finished surface.
type SnapshotWriter interface {
	SaveSnapshot(s *core.Surface, path string) error
}

// ImageLoader handles image file operations with the standard library and
// golang.org/x/image codecs.
type ImageLoader struct {
	logger logrus.FieldLogger
	width  int
	height int
}

var (
	_ ImageSource    = (*ImageLoader)(nil)
	_ SnapshotWriter = (*ImageLoader)(nil)
)

// NewImageLoader returns a loader that scales every image to width x height.
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

	if !IsSupportedImageFormat(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	s, err := Fit(img, il.width, il.height)
	if err != nil {
		return nil, err
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"format":   format,
		"source":   img.Bounds().Size(),
		"width":    s.Width(),
		"height":   s.Height(),
	}).Info("Image loaded successfully")

	return s, nil
}

// Fit copies img into a width x height surface, scaling with Catmull-Rom
// when the sizes differ.
func Fit(img image.Image, width, height int) (*core.Surface, error) {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return core.SurfaceFromImage(img)
	}

	s, err := core.NewSurface(width, height)
	if err != nil {
		return nil, err
	}
	xdraw.CatmullRom.Scale(s, s.Bounds(), img, b, xdraw.Src, nil)
	return s, nil
}

// SaveSnapshot writes s to path in the format named by its extension,
// creating parent directories as needed.
func (il *ImageLoader) SaveSnapshot(s *core.Surface, path string) error {
	il.logger.WithField("filepath", path).Debug("Saving image")

	if s == nil {
		return fmt.Errorf("cannot save empty image")
	}
	if !IsSupportedOutputFormat(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to save image: %w", err)
		}
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}

	img := s.RGBA()
	switch getFileExtension(path) {
	case ".png":
		err = png.Encode(f, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	case ".bmp":
		err = bmp.Encode(f, img)
	case ".tif", ".tiff":
		err = tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    s.Width(),
		"height":   s.Height(),
	}).Info("Image saved successfully")

	return nil
}

var (
	inputFormats  = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}
	outputFormats = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff"}
)

func IsSupportedImageFormat(path string) bool {
	return contains(inputFormats, getFileExtension(path))
}

func IsSupportedOutputFormat(path string) bool {
	return contains(outputFormats, getFileExtension(path))
}

func contains(list []string, ext string) bool {
	for _, format := range list {
		if ext == format {
			return true
		}
	}
	return false
}

func getFileExtension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// SnapshotName turns a window title into a PNG file name inside dir,
// e.g. "beads.jpg Flipped Vertically" -> dir/beads_jpg_Flipped_Vertically.png.
func SnapshotName(dir, title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(title))
	name = strings.Trim(name, "_")
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	if name == "" {
		name = "snapshot"
	}
	return filepath.Join(dir, name+".png")
}

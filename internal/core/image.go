// Core image data structure with thread-safe operations
package core

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// ImageData holds the long-lived source surface and the most recent
// conversion result.
type ImageData struct {
	mu        sync.RWMutex
	original  *Surface
	processed *Surface
	hasImage  bool
	filepath  string
	metadata  ImageMetadata
}

// ImageMetadata contains image information
type ImageMetadata struct {
	Width  int
	Height int
	Format string
	Name   string
}

// NewImageData creates a new thread-safe image data container
func NewImageData() *ImageData {
	return &ImageData{}
}

// SetOriginal sets the source surface after validation
func (img *ImageData) SetOriginal(s *Surface, path string) error {
	if s == nil {
		return fmt.Errorf("cannot set empty image")
	}
	if err := ValidateSurface(s); err != nil {
		return err
	}

	img.mu.Lock()
	defer img.mu.Unlock()

	img.original = s
	img.processed = nil
	img.hasImage = true
	img.filepath = path
	img.metadata = ImageMetadata{
		Width:  s.Width(),
		Height: s.Height(),
		Format: getFormatFromPath(path),
		Name:   filepath.Base(path),
	}
	return nil
}

// SetProcessed records the result of a conversion
func (img *ImageData) SetProcessed(s *Surface) error {
	img.mu.Lock()
	defer img.mu.Unlock()

	if !img.hasImage {
		return fmt.Errorf("no original image loaded")
	}
	if s == nil {
		return fmt.Errorf("cannot set empty processed image")
	}
	if s.Width() != img.original.Width() || s.Height() != img.original.Height() {
		return fmt.Errorf("%w: processed %dx%d, original %dx%d", ErrInvalidDimensions,
			s.Width(), s.Height(), img.original.Width(), img.original.Height())
	}

	img.processed = s
	return nil
}

// GetOriginal returns the source surface. It must be treated as read-only.
func (img *ImageData) GetOriginal() *Surface {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.original
}

// GetProcessed returns the latest result, or nil before the first conversion.
func (img *ImageData) GetProcessed() *Surface {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.processed
}

// HasImage returns true if an image is loaded
func (img *ImageData) HasImage() bool {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.hasImage
}

// GetMetadata returns image metadata
func (img *ImageData) GetMetadata() ImageMetadata {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.metadata
}

// GetFilepath returns the current file path
func (img *ImageData) GetFilepath() string {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.filepath
}

// getFormatFromPath extracts image format from file path
func getFormatFromPath(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "unknown"
	}
	return strings.ToLower(ext)
}

// ValidateSurface validates a surface for basic requirements
func ValidateSurface(s PixelSurface) error {
	if s.Width() <= 0 || s.Height() <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, s.Width(), s.Height())
	}

	// Check for reasonable size limits (prevent memory issues)
	const maxDimension = 16384
	if s.Width() > maxDimension || s.Height() > maxDimension {
		return fmt.Errorf("image too large: %dx%d (max: %d)", s.Width(), s.Height(), maxDimension)
	}

	return nil
}

// SameDimensions returns ErrInvalidDimensions unless a and b match.
func SameDimensions(a, b PixelSurface) error {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return fmt.Errorf("%w: source %dx%d, destination %dx%d", ErrInvalidDimensions,
			a.Width(), a.Height(), b.Width(), b.Height())
	}
	return nil
}

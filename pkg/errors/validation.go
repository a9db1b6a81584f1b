package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// MinDimension is the smallest canvas side accepted for rendering.
// Below this the 5% margins and gridline spacing collapse to sub-pixel sizes.
const MinDimension = 40

// MaxDimension bounds canvas sides so a single render stays cheap.
const MaxDimension = 8192

// ValidateDimensions checks that a canvas size is renderable.
func ValidateDimensions(width, height int) error {
	if width < MinDimension || height < MinDimension {
		return New(ErrCodeInvalidInput, "canvas %dx%d too small (min %d per side)", width, height, MinDimension)
	}
	if width > MaxDimension || height > MaxDimension {
		return New(ErrCodeInvalidInput, "canvas %dx%d too large (max %d per side)", width, height, MaxDimension)
	}
	return nil
}

// ValidateOutputPath validates a file path that rendered images are written to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Must end in .png
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}
	if len(path) > 500 {
		return New(ErrCodeInvalidPath, "output path too long (max 500 characters)")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid control characters")
		}
	}
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		return New(ErrCodeInvalidFormat, "output must be a .png file, got %q", filepath.Ext(path))
	}
	return nil
}

// ValidateFontSizes checks a font ladder definition.
// Sizes must be positive; order is normalized by the font loader.
func ValidateFontSizes(sizes []float64) error {
	if len(sizes) == 0 {
		return New(ErrCodeInvalidConfig, "font ladder needs at least one size")
	}
	for _, s := range sizes {
		if s <= 0 {
			return New(ErrCodeInvalidConfig, "font size must be positive, got %v", s)
		}
	}
	return nil
}

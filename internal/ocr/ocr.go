// Package ocr turns book cover and spine photographs into raw text.
package ocr

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrEngineUnavailable is returned when an engine cannot run in this
	// environment (binary missing, not compiled in).
	ErrEngineUnavailable = errors.New("ocr engine unavailable")

	// ErrNoText marks a recognition that succeeded but produced only whitespace.
	ErrNoText = errors.New("no text recognized")
)

// Engine recognizes text in an image file. An empty Text with a nil error
// means the image was read but carried no recognizable text.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, imagePath string) (Result, error)
}

// Result is the outcome of a single recognition.
type Result struct {
	Text     string
	Engine   string
	Duration time.Duration
}

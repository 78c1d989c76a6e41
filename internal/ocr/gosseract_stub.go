//go:build !ocr

package ocr

import (
	"context"
	"fmt"
)

// GosseractCompiled reports whether the libtesseract binding is built in.
// Rebuild with -tags ocr to enable it.
const GosseractCompiled = false

// GosseractEngine is the stand-in used when the binding is not compiled in.
type GosseractEngine struct{}

func NewGosseractEngine(language string, pageSegMode int, preprocess bool) *GosseractEngine {
	return &GosseractEngine{}
}

func (g *GosseractEngine) Name() string { return "gosseract" }

func (g *GosseractEngine) Recognize(ctx context.Context, imagePath string) (Result, error) {
	return Result{}, fmt.Errorf("%w: rebuild with -tags ocr", ErrEngineUnavailable)
}

//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"time"

	"github.com/otiai10/gosseract/v2"
)

// GosseractCompiled reports whether the libtesseract binding is built in.
const GosseractCompiled = true

// GosseractEngine runs tesseract in-process through libtesseract.
type GosseractEngine struct {
	language    string
	pageSegMode int
	preprocess  bool
}

func NewGosseractEngine(language string, pageSegMode int, preprocess bool) *GosseractEngine {
	if language == "" {
		language = "eng"
	}
	return &GosseractEngine{language: language, pageSegMode: pageSegMode, preprocess: preprocess}
}

func (g *GosseractEngine) Name() string { return "gosseract" }

func (g *GosseractEngine) Recognize(ctx context.Context, imagePath string) (Result, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	input := imagePath
	if g.preprocess {
		prepared, cleanup, err := preprocessToTemp(imagePath)
		if err != nil {
			return Result{}, fmt.Errorf("gosseract: %w", err)
		}
		defer cleanup()
		input = prepared
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(g.language); err != nil {
		return Result{}, fmt.Errorf("gosseract: set language %q: %w", g.language, err)
	}
	if g.pageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(g.pageSegMode)); err != nil {
			return Result{}, fmt.Errorf("gosseract: set page segmentation mode: %w", err)
		}
	}
	if err := client.SetImage(input); err != nil {
		return Result{}, fmt.Errorf("gosseract: set image %s: %w", imagePath, err)
	}

	text, err := client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("gosseract %s: %w", imagePath, err)
	}

	return Result{
		Text:     normalizeText(text),
		Engine:   g.Name(),
		Duration: time.Since(start),
	}, nil
}

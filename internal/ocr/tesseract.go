package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// TesseractEngine shells out to the tesseract binary.
type TesseractEngine struct {
	binary      string
	language    string
	pageSegMode int
	preprocess  bool
}

func NewTesseractEngine(binary, language string, pageSegMode int, preprocess bool) *TesseractEngine {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{
		binary:      binary,
		language:    language,
		pageSegMode: pageSegMode,
		preprocess:  preprocess,
	}
}

func (t *TesseractEngine) Name() string { return "tesseract" }

// Available reports whether the binary is on PATH.
func (t *TesseractEngine) Available() bool {
	_, err := exec.LookPath(t.binary)
	return err == nil
}

func (t *TesseractEngine) Recognize(ctx context.Context, imagePath string) (Result, error) {
	start := time.Now()
	if !t.Available() {
		return Result{}, fmt.Errorf("%w: %s not found in PATH", ErrEngineUnavailable, t.binary)
	}

	input := imagePath
	if t.preprocess {
		prepared, cleanup, err := preprocessToTemp(imagePath)
		if err != nil {
			return Result{}, fmt.Errorf("tesseract: %w", err)
		}
		defer cleanup()
		input = prepared
	}

	args := []string{input, "stdout", "-l", t.language}
	if t.pageSegMode > 0 {
		args = append(args, "--psm", strconv.Itoa(t.pageSegMode))
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.binary, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return Result{}, fmt.Errorf("tesseract %s: %w: %s", imagePath, err, strings.TrimSpace(stderr.String()))
	}

	return Result{
		Text:     normalizeText(string(out)),
		Engine:   t.Name(),
		Duration: time.Since(start),
	}, nil
}

func preprocessToTemp(imagePath string) (string, func(), error) {
	tmp, err := os.CreateTemp("", "bookscan-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	cleanup := func() { os.Remove(tmpPath) }
	if err := Preprocess(imagePath, tmpPath); err != nil {
		cleanup()
		return "", nil, err
	}
	return tmpPath, cleanup, nil
}

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\f", "")
	return strings.TrimSpace(text)
}

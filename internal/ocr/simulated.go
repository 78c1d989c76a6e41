package ocr

import (
	"context"
	"hash/fnv"
	"path/filepath"
)

var sampleTexts = []string{
	"The Great Gatsby\nBy F. Scott Fitzgerald\nCopyright 1925\nISBN 978-0-7432-7356-5\nScribner Publishing",
	"To Kill a Mockingbird\nBy Harper Lee\nCopyright 1960\nISBN 978-0-06-112008-4\nHarper & Row Publishers",
	"1984\nBy George Orwell\nCopyright 1949\nISBN 978-0-452-28423-4\nSecker & Warburg",
	"Pride and Prejudice\nBy Jane Austen\nCopyright 1813\nISBN 978-0-14-143951-8\nT. Egerton Publishers",
}

// SimulatedEngine returns canned cover text for environments without
// tesseract. The sample is picked from the file's base name, so the same
// name always yields the same text.
type SimulatedEngine struct{}

func NewSimulatedEngine() *SimulatedEngine { return &SimulatedEngine{} }

func (s *SimulatedEngine) Name() string { return "simulated" }

func (s *SimulatedEngine) Recognize(ctx context.Context, imagePath string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	h := fnv.New32a()
	h.Write([]byte(filepath.Base(imagePath)))
	return Result{
		Text:   sampleTexts[h.Sum32()%uint32(len(sampleTexts))],
		Engine: s.Name(),
	}, nil
}

// SampleCount is the number of canned texts the simulated engine rotates through.
func SampleCount() int { return len(sampleTexts) }

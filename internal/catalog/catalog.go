// Package catalog stores processed book scans and answers queries over them.
package catalog

import (
	"context"
	"errors"
	"time"

	"bookscanner/internal/metadata"
)

var ErrNotFound = errors.New("book not found")

// Book is one row of the catalog: the extracted (or enriched) metadata of a
// single photographed book plus the raw OCR text it came from.
type Book struct {
	ID               int64     `json:"id"`
	Filename         string    `json:"filename"`
	Title            string    `json:"title"`
	Author           string    `json:"author"`
	Year             *int      `json:"year"`
	ISBN             *string   `json:"isbn"`
	Publisher        string    `json:"publisher"`
	Keywords         string    `json:"keywords"`
	OCRText          string    `json:"ocr_text"`
	OCREngine        string    `json:"ocr_engine"`
	Enriched         bool      `json:"api_enriched"`
	EnrichmentSource string    `json:"enrichment_source,omitempty"`
	ProcessedAt      time.Time `json:"processing_date"`
}

// NewBook builds an unsaved row. A non-empty source marks the record as
// enriched by that lookup service.
func NewBook(filename string, rec metadata.Record, ocrText, engine, source string) Book {
	return Book{
		Filename:         filename,
		Title:            rec.Title,
		Author:           rec.Author,
		Year:             rec.Year,
		ISBN:             rec.ISBN,
		Publisher:        rec.Publisher,
		Keywords:         rec.Keywords.String(),
		OCRText:          ocrText,
		OCREngine:        engine,
		Enriched:         source != "",
		EnrichmentSource: source,
		ProcessedAt:      time.Now().UTC(),
	}
}

// Query filters List. Zero values mean "no filter". ISBN matches exactly,
// digits only.
type Query struct {
	Q        string
	Author   string
	YearFrom *int
	YearTo   *int
	Enriched *bool
	ISBN     string
	Limit    int
	Offset   int
}

type Stats struct {
	TotalBooks    int      `json:"total_books"`
	EnrichedBooks int      `json:"enriched_books"`
	UniqueAuthors int      `json:"unique_authors"`
	AverageYear   *float64 `json:"average_year"`
}

type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

type Repository interface {
	Save(ctx context.Context, b *Book) (int64, error)
	GetByID(ctx context.Context, id int64) (Book, error)
	List(ctx context.Context, q Query) ([]Book, int, error)
	All(ctx context.Context) ([]Book, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (Stats, error)
	YearCounts(ctx context.Context) ([]YearCount, error)
	KeywordRows(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

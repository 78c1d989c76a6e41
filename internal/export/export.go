// Package export writes the catalog as downloadable CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"bookscanner/internal/catalog"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Filename is catalog_export_YYYYMMDD_HHMMSS.<ext> for the given instant.
func Filename(f Format, at time.Time) string {
	return fmt.Sprintf("catalog_export_%s.%s", at.Format("20060102_150405"), f)
}

var csvHeader = []string{
	"id", "filename", "title", "author", "year", "isbn", "publisher", "keywords",
	"ocr_text", "processing_date", "api_enriched",
}

func WriteCSV(w io.Writer, books []catalog.Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range books {
		year := ""
		if b.Year != nil {
			year = strconv.Itoa(*b.Year)
		}
		isbn := ""
		if b.ISBN != nil {
			isbn = *b.ISBN
		}
		record := []string{
			strconv.FormatInt(b.ID, 10),
			b.Filename,
			b.Title,
			b.Author,
			year,
			isbn,
			b.Publisher,
			b.Keywords,
			b.OCRText,
			b.ProcessedAt.UTC().Format(time.RFC3339),
			strconv.FormatBool(b.Enriched),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteJSON(w io.Writer, books []catalog.Book) error {
	if books == nil {
		books = []catalog.Book{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(books)
}

func Write(w io.Writer, f Format, books []catalog.Book) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, books)
	case FormatJSON:
		return WriteJSON(w, books)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// Package enrich supplements extracted metadata with an external ISBN lookup.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bookscanner/internal/metadata"
	"bookscanner/internal/platform/openlibrary"

	"go.uber.org/zap"
)

const (
	// MinISBNLength is the shortest extracted ISBN worth looking up.
	MinISBNLength = 10

	DefaultTimeout = 10 * time.Second

	SourceOpenLibrary = "openlibrary"
)

// ErrLookupFailed wraps network, decoding and timeout failures.
var ErrLookupFailed = errors.New("isbn lookup failed")

type Lookuper interface {
	LookupISBN(ctx context.Context, isbn string) (*openlibrary.BookDetails, bool, error)
}

type Cache interface {
	Get(isbn string) (Result, bool, error)
	Put(isbn string, r Result) error
}

// Result is what a lookup learned. Found=false with a nil error means the
// service answered but has no record for the ISBN.
type Result struct {
	Found     bool      `json:"found"`
	Title     string    `json:"title,omitempty"`
	Author    string    `json:"author,omitempty"`
	Year      *int      `json:"year,omitempty"`
	Publisher string    `json:"publisher,omitempty"`
	Source    string    `json:"source,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

type Service struct {
	client  Lookuper
	cache   Cache
	timeout time.Duration
	logger  *zap.Logger
}

// NewService builds a lookup service. cache may be nil.
func NewService(client Lookuper, cache Cache, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{client: client, cache: cache, timeout: timeout, logger: logger}
}

func (s *Service) Lookup(ctx context.Context, isbn string) (Result, error) {
	if len(isbn) < MinISBNLength {
		return Result{}, nil
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(isbn)
		if err != nil {
			s.logger.Warn("lookup cache read failed", zap.String("isbn", isbn), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	details, found, err := s.client.LookupISBN(ctx, isbn)
	if err != nil {
		return Result{}, fmt.Errorf("%w: isbn %s: %w", ErrLookupFailed, isbn, err)
	}

	res := Result{Found: found, Source: SourceOpenLibrary, FetchedAt: time.Now().UTC()}
	if found {
		fillFromDetails(&res, details)
	}

	if s.cache != nil {
		if err := s.cache.Put(isbn, res); err != nil {
			s.logger.Warn("lookup cache write failed", zap.String("isbn", isbn), zap.Error(err))
		}
	}
	return res, nil
}

func fillFromDetails(res *Result, d *openlibrary.BookDetails) {
	res.Title = d.Title
	if len(d.Authors) > 0 {
		res.Author = d.Authors[0].Name
	}
	if len(d.Publishers) > 0 {
		res.Publisher = d.Publishers[0].Name
	}
	res.Year = yearFromPublishDate(d.PublishDate)
}

// yearFromPublishDate reads the trailing four characters, which is where
// Open Library puts the year in "May 1, 2004" and "2004" alike.
func yearFromPublishDate(date string) *int {
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[len(date)-4:])
	if err != nil {
		return nil
	}
	return &year
}

// Apply returns a copy of rec with every field the lookup found replacing
// the extracted one. Keywords are never replaced.
func Apply(rec metadata.Record, res Result) metadata.Record {
	out := rec
	out.Keywords = append(metadata.Keywords{}, rec.Keywords...)
	if !res.Found {
		return out
	}
	if res.Title != "" {
		out.Title = res.Title
	}
	if res.Author != "" {
		out.Author = res.Author
	}
	if res.Year != nil {
		year := *res.Year
		out.Year = &year
	}
	if res.Publisher != "" {
		out.Publisher = res.Publisher
	}
	return out
}

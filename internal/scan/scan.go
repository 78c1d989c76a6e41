// Package scan runs the cataloging pipeline: store upload, recognize text,
// extract metadata, optionally enrich it, and persist the result.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookscanner/internal/catalog"
	"bookscanner/internal/enrich"
	"bookscanner/internal/metadata"
	"bookscanner/internal/ocr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var ErrUnsupportedFile = errors.New("unsupported file type")

type Store interface {
	Save(ctx context.Context, b *catalog.Book) (int64, error)
}

type Lookup interface {
	Lookup(ctx context.Context, isbn string) (enrich.Result, error)
}

type Config struct {
	UploadDir string
	Enrich    bool
}

// Upload is one client supplied image.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Outcome reports what happened to one image. Collaborator failures are
// kept apart so a caller can tell "no ISBN data" from "lookup timed out"
// from "could not persist". Status is StatusError only when the image
// itself could not be accepted or stored.
type Outcome struct {
	Filename   string          `json:"filename"`
	StoredPath string          `json:"stored_path,omitempty"`
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	BookID     int64           `json:"book_id,omitempty"`
	Record     metadata.Record `json:"record"`
	OCREngine  string          `json:"ocr_engine,omitempty"`
	Enriched   bool            `json:"enriched"`
	Warnings   []string        `json:"warnings,omitempty"`
	Duration   time.Duration   `json:"duration_ns"`

	OCRErr    error `json:"-"`
	LookupErr error `json:"-"`
	SaveErr   error `json:"-"`
}

func (o *Outcome) warn(err error) {
	o.Warnings = append(o.Warnings, err.Error())
}

type Service struct {
	engine ocr.Engine
	lookup Lookup
	store  Store
	cfg    Config
	logger *zap.Logger
}

// NewService wires the pipeline. lookup may be nil, which disables enrichment.
func NewService(engine ocr.Engine, lookup Lookup, store Store, cfg Config, logger *zap.Logger) *Service {
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	return &Service{engine: engine, lookup: lookup, store: store, cfg: cfg, logger: logger}
}

func (s *Service) EngineName() string {
	return s.engine.Name()
}

func (s *Service) EnrichEnabled() bool {
	return s.cfg.Enrich && s.lookup != nil
}

// Process stores the upload under a collision-free name and runs the
// pipeline on it.
func (s *Service) Process(ctx context.Context, up Upload) Outcome {
	out := Outcome{Filename: up.Filename, Record: metadata.Empty()}

	if !AllowedExtension(up.Filename) {
		out.Status = StatusError
		out.Error = fmt.Sprintf("%s: %s", ErrUnsupportedFile, up.Filename)
		return out
	}

	path, err := s.saveUpload(up)
	if err != nil {
		s.logger.Error("store upload failed", zap.String("filename", up.Filename), zap.Error(err))
		out.Status = StatusError
		out.Error = err.Error()
		return out
	}

	res := s.ProcessFile(ctx, path)
	res.Filename = up.Filename
	return res
}

func (s *Service) saveUpload(up Upload) (string, error) {
	name := SanitizeFilename(up.Filename)
	if name == "" || strings.HasPrefix(name, ".") {
		name = "upload" + strings.ToLower(filepath.Ext(up.Filename))
	}
	if err := os.MkdirAll(s.cfg.UploadDir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(s.cfg.UploadDir, uuid.NewString()+"_"+name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, up.Body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// ProcessFile runs the pipeline on an image already on disk. It never
// fails as a whole: OCR, lookup and save errors are logged and recorded
// on the outcome.
func (s *Service) ProcessFile(ctx context.Context, path string) Outcome {
	start := time.Now()
	out := Outcome{
		Filename:   filepath.Base(path),
		StoredPath: path,
		Status:     StatusSuccess,
		OCREngine:  s.engine.Name(),
	}
	log := s.logger.With(zap.String("file", path))

	text := ""
	res, err := s.engine.Recognize(ctx, path)
	switch {
	case err != nil:
		log.Warn("ocr failed, continuing with empty text", zap.Error(err))
		out.OCRErr = err
		out.warn(err)
	case strings.TrimSpace(res.Text) == "":
		out.warn(ocr.ErrNoText)
	default:
		text = res.Text
	}
	if res.Engine != "" {
		out.OCREngine = res.Engine
	}

	rec := metadata.Extract(text, filepath.Base(path))

	source := ""
	if s.EnrichEnabled() && rec.ISBN != nil {
		lr, err := s.lookup.Lookup(ctx, *rec.ISBN)
		switch {
		case err != nil:
			log.Warn("isbn lookup failed", zap.String("isbn", *rec.ISBN), zap.Error(err))
			out.LookupErr = err
			out.warn(err)
		case lr.Found:
			rec = enrich.Apply(rec, lr)
			source = lr.Source
			out.Enriched = true
		default:
			log.Debug("isbn not known to lookup service", zap.String("isbn", *rec.ISBN))
		}
	}
	out.Record = rec

	book := catalog.NewBook(filepath.Base(path), rec, text, out.OCREngine, source)
	id, err := s.store.Save(ctx, &book)
	if err != nil {
		log.Error("save book failed", zap.Error(err))
		out.SaveErr = err
		out.warn(err)
	} else {
		out.BookID = id
	}

	out.Duration = time.Since(start)
	log.Info("scan processed",
		zap.Int64("book_id", out.BookID),
		zap.String("title", rec.Title),
		zap.Bool("enriched", out.Enriched),
		zap.Int("warnings", len(out.Warnings)),
		zap.Duration("duration", out.Duration),
	)
	return out
}

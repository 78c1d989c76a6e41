package scan

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Batch summarizes one ProcessBatch call.
type Batch struct {
	Outcomes   []Outcome `json:"outcomes"`
	Processed  int       `json:"processed"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Enriched   int       `json:"enriched"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// ProcessBatch handles uploads one after another, in order. Once ctx is
// done the remaining uploads are reported as failed without being read.
func (s *Service) ProcessBatch(ctx context.Context, uploads []Upload) (b Batch) {
	b = Batch{
		Outcomes:  make([]Outcome, 0, len(uploads)),
		StartedAt: time.Now().UTC(),
	}

	defer func() {
		b.FinishedAt = time.Now().UTC()
		s.logger.Info("scan batch finished",
			zap.Int("processed", b.Processed),
			zap.Int("succeeded", b.Succeeded),
			zap.Int("failed", b.Failed),
			zap.Int("enriched", b.Enriched),
			zap.Duration("duration", b.FinishedAt.Sub(b.StartedAt)),
		)
	}()

	for _, up := range uploads {
		var out Outcome
		if err := ctx.Err(); err != nil {
			out = Outcome{Filename: up.Filename, Status: StatusError, Error: err.Error()}
		} else {
			out = s.Process(ctx, up)
		}
		b.add(out)
	}
	return b
}

// ProcessPaths is ProcessBatch for images that are already on disk.
func (s *Service) ProcessPaths(ctx context.Context, paths []string) Batch {
	b := Batch{
		Outcomes:  make([]Outcome, 0, len(paths)),
		StartedAt: time.Now().UTC(),
	}
	for _, p := range paths {
		var out Outcome
		switch {
		case ctx.Err() != nil:
			out = Outcome{Filename: p, Status: StatusError, Error: ctx.Err().Error()}
		case !AllowedExtension(p):
			out = Outcome{Filename: p, Status: StatusError, Error: ErrUnsupportedFile.Error() + ": " + p}
		default:
			out = s.ProcessFile(ctx, p)
		}
		b.add(out)
	}
	b.FinishedAt = time.Now().UTC()
	return b
}

func (b *Batch) add(out Outcome) {
	b.Outcomes = append(b.Outcomes, out)
	b.Processed++
	if out.Status == StatusSuccess {
		b.Succeeded++
	} else {
		b.Failed++
	}
	if out.Enriched {
		b.Enriched++
	}
}

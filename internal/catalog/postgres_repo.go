package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Save(ctx context.Context, b *Book) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const q = `
		INSERT INTO books (filename, title, author, year, isbn, publisher, keywords, ocr_text,
			ocr_engine, api_enriched, enrichment_source, processing_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, q,
		b.Filename, b.Title, b.Author, b.Year, b.ISBN, b.Publisher, b.Keywords, b.OCRText,
		b.OCREngine, b.Enriched, b.EnrichmentSource, b.ProcessedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}
	b.ID = id
	return id, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(r.db.QueryRow(ctx, "SELECT "+bookColumns+" FROM books WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	where, args, argn := postgresDialect.where(q)

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM books "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`
		SELECT %s
		FROM books
		%s
		ORDER BY processing_date DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		bookColumns, where, argn, argn+1)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, q.Limit, q.Offset)
	rows, err := r.db.Query(ctx, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectBooks(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresRepo) All(ctx context.Context) ([]Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, "SELECT "+bookColumns+" FROM books ORDER BY processing_date DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBooks(rows)
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, "DELETE FROM books WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

func (r *PostgresRepo) Stats(ctx context.Context) (Stats, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const q = `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE api_enriched),
			COUNT(DISTINCT author),
			AVG(year)::float8
		FROM books`

	var s Stats
	if err := r.db.QueryRow(ctx, q).Scan(&s.TotalBooks, &s.EnrichedBooks, &s.UniqueAuthors, &s.AverageYear); err != nil {
		return Stats{}, fmt.Errorf("catalog stats: %w", err)
	}
	return s, nil
}

func (r *PostgresRepo) YearCounts(ctx context.Context) ([]YearCount, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, "SELECT year, COUNT(*) FROM books WHERE year IS NOT NULL GROUP BY year ORDER BY year")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []YearCount
	for rows.Next() {
		var yc YearCount
		if err := rows.Scan(&yc.Year, &yc.Count); err != nil {
			return nil, err
		}
		out = append(out, yc)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) KeywordRows(ctx context.Context) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, "SELECT keywords FROM books WHERE keywords <> ''")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, err
		}
		out = append(out, kw)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *PostgresRepo) Close() error {
	r.db.Close()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.Filename, &b.Title, &b.Author, &b.Year, &b.ISBN, &b.Publisher, &b.Keywords,
		&b.OCRText, &b.OCREngine, &b.Enriched, &b.EnrichmentSource, &b.ProcessedAt,
	)
	return b, err
}

func collectBooks(rows pgx.Rows) ([]Book, error) {
	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

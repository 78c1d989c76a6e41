package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS books (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	filename          TEXT NOT NULL,
	title             TEXT NOT NULL,
	author            TEXT NOT NULL,
	year              INTEGER,
	isbn              TEXT,
	publisher         TEXT NOT NULL,
	keywords          TEXT NOT NULL DEFAULT '',
	ocr_text          TEXT NOT NULL DEFAULT '',
	ocr_engine        TEXT NOT NULL DEFAULT '',
	api_enriched      INTEGER NOT NULL DEFAULT 0,
	enrichment_source TEXT NOT NULL DEFAULT '',
	processing_date   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_books_author ON books(author);
CREATE INDEX IF NOT EXISTS idx_books_year ON books(year);
CREATE INDEX IF NOT EXISTS idx_books_isbn ON books(isbn);
`

// Fixed-width so that text order matches time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteRepo is the single-file backend used for local runs and the CLI.
type SQLiteRepo struct {
	db      *sql.DB
	timeout time.Duration
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema.
func OpenSQLite(ctx context.Context, path string, timeout time.Duration) (*SQLiteRepo, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteRepo{db: db, timeout: timeout}, nil
}

func (r *SQLiteRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *SQLiteRepo) Save(ctx context.Context, b *Book) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const q = `
		INSERT INTO books (filename, title, author, year, isbn, publisher, keywords, ocr_text,
			ocr_engine, api_enriched, enrichment_source, processing_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, q,
		b.Filename, b.Title, b.Author, b.Year, b.ISBN, b.Publisher, b.Keywords, b.OCRText,
		b.OCREngine, b.Enriched, b.EnrichmentSource, b.ProcessedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}
	b.ID = id
	return id, nil
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	b, err := scanSQLiteBook(r.db.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM books WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return Book{}, err
	}
	return b, nil
}

func (r *SQLiteRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	where, args, _ := sqliteDialect.where(q)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`
		SELECT %s
		FROM books
		%s
		ORDER BY processing_date DESC, id DESC
		LIMIT ? OFFSET ?`,
		bookColumns, where)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, q.Limit, q.Offset)
	rows, err := r.db.QueryContext(ctx, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectSQLiteBooks(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *SQLiteRepo) All(ctx context.Context) ([]Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, "SELECT "+bookColumns+" FROM books ORDER BY processing_date DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSQLiteBooks(rows)
}

func (r *SQLiteRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

func (r *SQLiteRepo) Stats(ctx context.Context) (Stats, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const q = `
		SELECT COUNT(*),
			COALESCE(SUM(api_enriched), 0),
			COUNT(DISTINCT author),
			AVG(year)
		FROM books`

	var s Stats
	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, q).Scan(&s.TotalBooks, &s.EnrichedBooks, &s.UniqueAuthors, &avg); err != nil {
		return Stats{}, fmt.Errorf("catalog stats: %w", err)
	}
	if avg.Valid {
		s.AverageYear = &avg.Float64
	}
	return s, nil
}

func (r *SQLiteRepo) YearCounts(ctx context.Context) ([]YearCount, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, "SELECT year, COUNT(*) FROM books WHERE year IS NOT NULL GROUP BY year ORDER BY year")
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

func (r *SQLiteRepo) KeywordRows(ctx context.Context) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, "SELECT keywords FROM books WHERE keywords <> ''")
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

func (r *SQLiteRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func scanSQLiteBook(row rowScanner) (Book, error) {
	var (
		b         Book
		year      sql.NullInt64
		isbn      sql.NullString
		processed string
	)
	err := row.Scan(
		&b.ID, &b.Filename, &b.Title, &b.Author, &year, &isbn, &b.Publisher, &b.Keywords,
		&b.OCRText, &b.OCREngine, &b.Enriched, &b.EnrichmentSource, &processed,
	)
	if err != nil {
		return Book{}, err
	}
	if year.Valid {
		y := int(year.Int64)
		b.Year = &y
	}
	if isbn.Valid {
		s := isbn.String
		b.ISBN = &s
	}
	b.ProcessedAt, err = time.Parse(sqliteTimeLayout, processed)
	if err != nil {
		return Book{}, fmt.Errorf("parse processing_date %q: %w", processed, err)
	}
	return b, nil
}

func collectSQLiteBooks(rows *sql.Rows) ([]Book, error) {
	out := []Book{}
	for rows.Next() {
		b, err := scanSQLiteBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

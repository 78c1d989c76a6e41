package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the configured backend and verifies the connection.
func Open(ctx context.Context, driver, dsn string, timeout time.Duration) (Repository, error) {
	switch driver {
	case DriverPostgres:
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("create db pool: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database (%s): %w", RedactDSN(dsn), err)
		}
		return NewPostgresRepo(pool, timeout), nil
	case DriverSQLite:
		return OpenSQLite(ctx, dsn, timeout)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// RedactDSN hides the credentials of a URL-style DSN for logging.
func RedactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}

// Package app assembles the catalog, OCR engine, lookup service and
// pipeline from a Config. Both the HTTP server and the CLI start here.
package app

import (
	"context"
	"errors"
	"fmt"

	"bookscanner/internal/catalog"
	"bookscanner/internal/config"
	"bookscanner/internal/enrich"
	"bookscanner/internal/ocr"
	"bookscanner/internal/platform/openlibrary"
	"bookscanner/internal/scan"

	"go.uber.org/zap"
)

type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Repo    catalog.Repository
	Engine  ocr.Engine
	Lookup  *enrich.Service
	Scanner *scan.Service

	cache *enrich.BoltCache
}

func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	engine, err := ocr.Detect(ocr.Config{
		Engine:      cfg.OCR.Engine,
		Binary:      cfg.OCR.Binary,
		Language:    cfg.OCR.Language,
		PageSegMode: cfg.OCR.PageSegMode,
		Preprocess:  cfg.OCR.Preprocess,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("select ocr engine: %w", err)
	}

	repo, err := catalog.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, cfg.Database.QueryTimeout)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog opened",
		zap.String("driver", cfg.Database.Driver),
		zap.String("dsn", catalog.RedactDSN(cfg.Database.DSN)),
	)

	a := &App{
		Config: cfg,
		Logger: logger,
		Repo:   repo,
		Engine: engine,
	}

	var lookup scan.Lookup
	if cfg.Enrich.Enabled {
		if cfg.Enrich.CachePath != "" {
			a.cache, err = enrich.OpenBoltCache(cfg.Enrich.CachePath, cfg.Enrich.CacheTTL)
			if err != nil {
				repo.Close()
				return nil, err
			}
		}
		client := openlibrary.NewClient(cfg.Enrich.UserAgent, cfg.Enrich.RPS, cfg.Enrich.MaxRetries,
			openlibrary.WithBaseURL(cfg.Enrich.BaseURL),
			openlibrary.WithTimeout(cfg.Enrich.Timeout),
		)
		a.Lookup = enrich.NewService(client, a.cacheOrNil(), cfg.Enrich.Timeout, logger)
		lookup = a.Lookup
	}

	a.Scanner = scan.NewService(engine, lookup, repo, scan.Config{
		UploadDir: cfg.Upload.Dir,
		Enrich:    cfg.Enrich.Enabled,
	}, logger)

	return a, nil
}

// cacheOrNil keeps a nil *BoltCache from becoming a non-nil enrich.Cache.
func (a *App) cacheOrNil() enrich.Cache {
	if a.cache == nil {
		return nil
	}
	return a.cache
}

func (a *App) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	errs = append(errs, a.Repo.Close())
	return errors.Join(errs...)
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bookscanner/internal/app"
	"bookscanner/internal/config"
	"bookscanner/internal/httpx"
	"bookscanner/internal/logging"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	rateLimiter := httpx.NewRateLimitMiddleware(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	defer rateLimiter.Stop()

	handler := httpx.Chain(newRouter(a),
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		httpx.SecurityHeadersMiddleware(cfg.Server.EnableHSTS),
		httpx.CORSMiddleware(cfg.Server.CORSAllowedOrigins),
		rateLimiter.Middleware,
	)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server",
			zap.String("addr", cfg.Server.Addr),
			zap.String("ocr_engine", a.Engine.Name()),
			zap.Bool("enrichment", a.Scanner.EnrichEnabled()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

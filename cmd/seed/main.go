package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"bookscanner/internal/app"
	"bookscanner/internal/config"
	"bookscanner/internal/logging"

	"go.uber.org/zap"
)

// seed fills the catalog by pushing placeholder covers through the
// pipeline with the simulated OCR engine.
func main() {
	var (
		count      = flag.Int("count", 20, "number of covers to generate")
		configPath = flag.String("config", "", "path to a YAML config file")
		enrich     = flag.Bool("enrich", false, "look up extracted ISBNs")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.OCR.Engine = "simulated"
	cfg.Enrich.Enabled = *enrich

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("build app", zap.Error(err))
	}
	defer a.Close()

	paths, err := placeholderCovers(cfg.Upload.Dir, *count)
	if err != nil {
		logger.Fatal("write placeholder covers", zap.Error(err))
	}

	batch := a.Scanner.ProcessPaths(ctx, paths)
	logger.Info("seed complete",
		zap.Int("processed", batch.Processed),
		zap.Int("succeeded", batch.Succeeded),
		zap.Int("enriched", batch.Enriched),
		zap.Duration("took", batch.FinishedAt.Sub(batch.StartedAt)),
	)
}

func placeholderCovers(dir string, n int) ([]string, error) {
	seedDir := filepath.Join(dir, "seed")
	if err := os.MkdirAll(seedDir, 0755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		p := filepath.Join(seedDir, fmt.Sprintf("cover_%04d.jpg", i+1))
		if err := os.WriteFile(p, nil, 0644); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

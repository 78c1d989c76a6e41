package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bookscanner/internal/config"
	"bookscanner/internal/scan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) config.Config {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Database.DSN = filepath.Join(dir, "catalog.db")
	cfg.Upload.Dir = filepath.Join(dir, "uploads")
	cfg.Enrich.CachePath = filepath.Join(dir, "lookups.db")
	cfg.OCR.Engine = "simulated"
	return cfg
}

func TestBuild_SimulatedPipeline(t *testing.T) {
	cfg := testConfig(t)
	cfg.Enrich.Enabled = false

	a, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "simulated", a.Engine.Name())
	assert.Nil(t, a.Lookup)
	assert.False(t, a.Scanner.EnrichEnabled())

	img := filepath.Join(t.TempDir(), "cover.jpg")
	require.NoError(t, os.WriteFile(img, []byte("not really an image"), 0644))

	out := a.Scanner.ProcessFile(context.Background(), img)
	assert.Equal(t, scan.StatusSuccess, out.Status)
	assert.NotZero(t, out.BookID)

	got, err := a.Repo.GetByID(context.Background(), out.BookID)
	require.NoError(t, err)
	assert.Equal(t, out.Record.Title, got.Title)
	assert.Equal(t, "simulated", got.OCREngine)
}

func TestBuild_WithEnrichment(t *testing.T) {
	a, err := Build(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, a.Lookup)
	assert.True(t, a.Scanner.EnrichEnabled())
	assert.NoError(t, a.Close())
}

func TestBuild_BadEngine(t *testing.T) {
	cfg := testConfig(t)
	cfg.OCR.Engine = "gosseract-but-missing"

	_, err := Build(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

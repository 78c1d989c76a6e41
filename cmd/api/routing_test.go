package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"bookscanner/internal/app"
	"bookscanner/internal/config"
	"bookscanner/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Database.DSN = filepath.Join(dir, "catalog.db")
	cfg.Upload.Dir = filepath.Join(dir, "uploads")
	cfg.OCR.Engine = "simulated"
	cfg.Enrich.Enabled = false

	a, err := app.Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestV1Routing(t *testing.T) {
	router := newRouter(newTestApp(t))

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"health", http.MethodGet, "/healthz", http.StatusOK},
		{"ready", http.MethodGet, "/readyz", http.StatusOK},
		{"list books", http.MethodGet, "/v1/books", http.StatusOK},
		{"missing book", http.MethodGet, "/v1/books/42", http.StatusNotFound},
		{"bad book id", http.MethodGet, "/v1/books/abc", http.StatusBadRequest},
		{"delete missing", http.MethodDelete, "/v1/books/42", http.StatusNotFound},
		{"analytics", http.MethodGet, "/v1/analytics", http.StatusOK},
		{"export csv", http.MethodGet, "/v1/export/csv", http.StatusOK},
		{"export xml", http.MethodGet, "/v1/export/xml", http.StatusBadRequest},
		{"unversioned", http.MethodGet, "/books", http.StatusNotFound},
		{"wrong method", http.MethodPut, "/v1/books", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestScanThenList(t *testing.T) {
	router := newRouter(newTestApp(t))

	req := testutil.NewMultipartRequest("/v1/scans", "files", map[string][]byte{
		"cover.jpg": bytes.Repeat([]byte{0xff}, 64),
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	scanned := testutil.RecordHTTPResponse(w)
	assert.EqualValues(t, 1, scanned.Meta()["succeeded"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/books", nil))
	require.Equal(t, http.StatusOK, w.Code)

	listed := testutil.RecordHTTPResponse(w)
	assert.Len(t, listed.Data(), 1)
}

package export

import (
	"context"
	"net/http"
	"time"

	"bookscanner/internal/catalog"
	"bookscanner/internal/httpx"

	"go.uber.org/zap"
)

type Source interface {
	All(ctx context.Context) ([]catalog.Book, error)
}

type HTTPHandler struct {
	src    Source
	logger *zap.Logger
	now    func() time.Time
}

func NewHTTPHandler(src Source, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{src: src, logger: logger, now: time.Now}
}

// Download handles GET /v1/export/{format}
// @Summary Download the catalog
// @Tags export
// @Produce text/csv,application/json
// @Param format path string true "csv or json"
// @Success 200 {file} file
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/export/{format} [get]
func (h *HTTPHandler) Download(w http.ResponseWriter, r *http.Request) {
	format, err := ParseFormat(r.PathValue("format"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "Format must be csv or json", nil)
		return
	}

	books, err := h.src.All(r.Context())
	if err != nil {
		h.logger.Error("export query failed", zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+Filename(format, h.now()))
	if err := Write(w, format, books); err != nil {
		h.logger.Error("export write failed", zap.String("format", string(format)), zap.Error(err))
	}
}

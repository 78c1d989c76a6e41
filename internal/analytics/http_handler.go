package analytics

import (
	"net/http"
	"strconv"

	"bookscanner/internal/httpx"
)

const maxTopWords = 200

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Get handles GET /v1/analytics
// @Summary Catalog analytics
// @Description Summary figures, year histogram, enrichment split and keyword cloud
// @Tags analytics
// @Produce json
// @Param top query int false "Words in the keyword cloud" default(50)
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/analytics [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	top := DefaultTopWords
	if raw := r.URL.Query().Get("top"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxTopWords {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", []httpx.ErrorDetail{
				{Field: "top", Message: "top must be an integer between 1 and 200"},
			})
			return
		}
		top = v
	}

	report, err := h.svc.Report(r.Context(), top)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, report, nil)
}

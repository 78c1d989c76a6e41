package scan

import (
	"errors"
	"net/http"

	"bookscanner/internal/httpx"
)

// DefaultMaxUploadBytes matches the 16 MiB request cap of the web form.
const DefaultMaxUploadBytes = 16 << 20

const formField = "files"

type HTTPHandler struct {
	svc      *Service
	maxBytes int64
}

func NewHTTPHandler(svc *Service, maxBytes int64) *HTTPHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &HTTPHandler{svc: svc, maxBytes: maxBytes}
}

// Upload handles POST /v1/scans
// @Summary Catalog book photographs
// @Description Runs OCR, metadata extraction and optional ISBN enrichment on each uploaded image
// @Tags scans
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "One or more images"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 413 {object} httpx.ErrorResponse
// @Router /v1/scans [post]
func (h *HTTPHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Upload exceeds the size limit", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Expected a multipart form", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[formField]
	if len(headers) == 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "NO_FILES", "No files selected", []httpx.ErrorDetail{
			{Field: formField, Message: "at least one image is required"},
		})
		return
	}

	uploads := make([]Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Could not read uploaded file "+fh.Filename, nil)
			return
		}
		defer f.Close()
		uploads = append(uploads, Upload{Filename: fh.Filename, Body: f})
	}

	batch := h.svc.ProcessBatch(r.Context(), uploads)

	httpx.JSONSuccess(w, r, batch.Outcomes, map[string]interface{}{
		"processed":  batch.Processed,
		"succeeded":  batch.Succeeded,
		"failed":     batch.Failed,
		"enriched":   batch.Enriched,
		"ocr_engine": h.svc.EngineName(),
	})
}

package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bookscanner/internal/httpx"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var isbnSeparators = strings.NewReplacer("-", "", " ", "")

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

type listParams struct {
	Q        string `query:"q" validate:"max=200"`
	Author   string `query:"author" validate:"max=200"`
	YearFrom *int   `query:"year_from" validate:"omitempty,gte=1000,lte=2999"`
	YearTo   *int   `query:"year_to" validate:"omitempty,gte=1000,lte=2999"`
	Enriched *bool  `query:"enriched"`
	ISBN     string `query:"isbn" validate:"omitempty,isbn"`
	Page     int    `query:"page" validate:"gte=1"`
	PageSize int    `query:"page_size" validate:"gte=1,lte=100"`
}

func parseListParams(values url.Values) (listParams, []httpx.ErrorDetail) {
	p := listParams{
		Q:        values.Get("q"),
		Author:   values.Get("author"),
		ISBN:     values.Get("isbn"),
		Page:     1,
		PageSize: defaultPageSize,
	}
	var details []httpx.ErrorDetail

	intParam := func(name string) *int {
		raw := values.Get(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: name, Message: name + " must be an integer"})
			return nil
		}
		return &v
	}

	p.YearFrom = intParam("year_from")
	p.YearTo = intParam("year_to")
	if v := intParam("page"); v != nil {
		p.Page = *v
	}
	if v := intParam("page_size"); v != nil {
		p.PageSize = *v
	}

	if raw := values.Get("enriched"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: "enriched", Message: "enriched must be true or false"})
		} else {
			p.Enriched = &v
		}
	}

	if len(details) > 0 {
		return p, details
	}
	if details = httpx.ValidateStruct(p); len(details) > 0 {
		return p, details
	}
	if p.YearFrom != nil && p.YearTo != nil && *p.YearTo < *p.YearFrom {
		return p, []httpx.ErrorDetail{{Field: "year_to", Message: "year_to must not be before year_from"}}
	}
	return p, nil
}

// List handles GET /v1/books
// @Summary List cataloged books
// @Tags books
// @Produce json
// @Param q query string false "Matches title, author or keywords"
// @Param author query string false "Filter by author"
// @Param year_from query int false "Earliest publication year"
// @Param year_to query int false "Latest publication year"
// @Param enriched query bool false "Only enriched (or only non-enriched) records"
// @Param isbn query string false "Exact ISBN-10 or ISBN-13, hyphens allowed"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(20)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	p, details := parseListParams(r.URL.Query())
	if len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", details)
		return
	}

	q := Query{
		Q:        p.Q,
		Author:   p.Author,
		YearFrom: p.YearFrom,
		YearTo:   p.YearTo,
		Enriched: p.Enriched,
		ISBN:     isbnSeparators.Replace(p.ISBN),
		Limit:    p.PageSize,
		Offset:   (p.Page - 1) * p.PageSize,
	}

	books, total, err := h.svc.Search(r.Context(), q)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, books, map[string]interface{}{
		"page":        p.Page,
		"page_size":   p.PageSize,
		"total":       total,
		"total_pages": (total + p.PageSize - 1) / p.PageSize,
	})
}

// Get handles GET /v1/books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	book, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeLookupError(w, r, err, id)
		return
	}

	httpx.JSONSuccess(w, r, book, nil)
}

// Delete handles DELETE /v1/books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeLookupError(w, r, err, id)
		return
	}

	httpx.JSONNoContent(w)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

func writeLookupError(w http.ResponseWriter, r *http.Request, err error, id int64) {
	if errors.Is(err, ErrNotFound) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Book %d not found", id), nil)
		return
	}
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}

package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestHTTPHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo))

	t.Run("success", func(t *testing.T) {
		year := 1925
		enriched := true
		want := Query{Q: "gatsby", YearFrom: &year, Enriched: &enriched, Limit: 10, Offset: 10}
		mockRepo.EXPECT().List(gomock.Any(), want).Return([]Book{{ID: 1, Title: "The Great Gatsby"}}, 11, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books?q=gatsby&year_from=1925&enriched=true&page=2&page_size=10", nil)

		handler.List(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total_pages":2`)
		assert.Contains(t, w.Body.String(), "The Great Gatsby")
	})

	t.Run("defaults", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), Query{Limit: defaultPageSize}).Return([]Book{}, 0, nil)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/v1/books", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("error", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, 0, errors.New("db error"))

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/v1/books", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("isbn filter is normalized", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), Query{ISBN: "0306406152", Limit: defaultPageSize}).Return([]Book{}, 0, nil)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/v1/books?isbn=0-306-40615-2", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	invalid := []string{
		"isbn=12345",
		"isbn=978074327",
		"page_size=500",
		"page=0",
		"year_from=abc",
		"year_from=99",
		"enriched=maybe",
		"year_from=2000&year_to=1990",
	}
	for _, qs := range invalid {
		t.Run("invalid "+qs, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.List(w, httptest.NewRequest(http.MethodGet, "/v1/books?"+qs, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
		})
	}
}

func TestHTTPHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo))

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), int64(7)).Return(Book{ID: 7, Title: "Test Book"}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books/7", nil)
		r.SetPathValue("id", "7")

		handler.Get(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Test Book")
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), int64(7)).Return(Book{}, fmt.Errorf("%w: 7", ErrNotFound))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books/7", nil)
		r.SetPathValue("id", "7")

		handler.Get(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books/abc", nil)
		r.SetPathValue("id", "abc")

		handler.Get(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo))

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), int64(3)).Return(nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/v1/books/3", nil)
		r.SetPathValue("id", "3")

		handler.Delete(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), int64(3)).Return(fmt.Errorf("%w: 3", ErrNotFound))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/v1/books/3", nil)
		r.SetPathValue("id", "3")

		handler.Delete(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

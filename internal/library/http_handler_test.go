package library

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shelfapi/internal/platform/openlibrary"
	"shelfapi/internal/testutil"
)

func newTestMux(h *HTTPHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /books", h.List)
	mux.HandleFunc("POST /books", h.Add)
	mux.HandleFunc("GET /books/{id}", h.Get)
	mux.HandleFunc("DELETE /books/{id}", h.Remove)
	mux.HandleFunc("POST /books/batch-delete", h.BatchDelete)
	mux.HandleFunc("POST /books/bulk-add", h.BulkAdd)
	mux.HandleFunc("POST /books/lookup", h.Lookup)
	return mux
}

func serve(mux http.Handler, r *http.Request) testutil.RecordResponse {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return testutil.RecordHTTPResponse(w)
}

func TestHTTPHandler_Books(t *testing.T) {
	f := newFixture()
	f.catalog.On("Lookup", mock.Anything, testISBN).Return(effectiveJava(), nil)
	f.catalog.On("Lookup", mock.Anything, "9780262033848").
		Return(nil, fmt.Errorf("%w: isbn 9780262033848", openlibrary.ErrNotFound))
	f.catalog.On("Lookup", mock.Anything, "9781491950357").
		Return(nil, fmt.Errorf("%w: status 503", openlibrary.ErrUpstream))
	f.covers.On("Fetch", mock.Anything, mock.Anything, "L").Return(nil)
	mux := newTestMux(NewHTTPHandler(f.svc))

	asUser := func(r *http.Request) *http.Request { return testutil.WithUser(r, testutil.TestUserID) }

	var ownershipID string

	t.Run("add", func(t *testing.T) {
		res := serve(mux, asUser(testutil.NewRequest(http.MethodPost, "/books", map[string]string{"isbn": "978-0-13-468599-1"})))
		require.Equal(t, http.StatusCreated, res.Code)
		assert.Equal(t, true, res.Body["success"])
		assert.Equal(t, "Effective Java", res.Data()["title"])
		assert.Nil(t, res.Data()["coverUrl"])
		ownershipID, _ = res.Data()["id"].(string)
		require.NotEmpty(t, ownershipID)
	})

	t.Run("add again conflicts", func(t *testing.T) {
		res := serve(mux, asUser(testutil.NewRequest(http.MethodPost, "/books", map[string]string{"isbn": testISBN})))
		assert.Equal(t, http.StatusConflict, res.Code)
		assert.Equal(t, "ALREADY_OWNED", res.ErrorCode())
	})

	t.Run("add unknown isbn", func(t *testing.T) {
		res := serve(mux, asUser(testutil.NewRequest(http.MethodPost, "/books", map[string]string{"isbn": "9780262033848"})))
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Equal(t, "NOT_FOUND_IN_CATALOG", res.ErrorCode())
	})

	t.Run("add with catalog down", func(t *testing.T) {
		res := serve(mux, asUser(testutil.NewRequest(http.MethodPost, "/books", map[string]string{"isbn": "9781491950357"})))
		assert.Equal(t, http.StatusBadGateway, res.Code)
		assert.Equal(t, "UPSTREAM_UNAVAILABLE", res.ErrorCode())
	})

	t.Run("add validates input", func(t *testing.T) {
		res := serve(mux, asUser(testutil.NewRequest(http.MethodPost, "/books", map[string]string{"isbn": "123"})))
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "VALIDATION_ERROR", res.ErrorCode())

		res = serve(mux, asUser(testutil.NewRequest(http.MethodPost, "/books", "{not json")))
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "BAD_REQUEST", res.ErrorCode())
	})

	t.Run("add without user", func(t *testing.T) {
		res := serve(mux, testutil.NewRequest(http.MethodPost, "/books", map[string]string{"isbn": testISBN}))
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("list", func(t *testing.T) {
		res := serve(mux, asUser(testutil.NewRequest(http.MethodGet, "/books?page=1&page_size=500", nil)))
		require.Equal(t, http.StatusOK, res.Code)
		items, ok := res.Body["data"].([]any)
		require.True(t, ok)
		assert.Len(t, items, 1)
		meta := res.Meta()
		assert.Equal(t, float64(100), meta["page_size"])
		assert.Equal(t, float64(1), meta["total"])
		assert.Equal(t, float64(1), meta["total_pages"])
		assert.Equal(t, false, meta["has_more"])
	})

	t.Run("list defaults", func(t *testing.T) {
		res := serve(mux, asUser(testutil.NewRequest(http.MethodGet, "/books", nil)))
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, float64(1), res.Meta()["page"])
		assert.Equal(t, float64(DefaultPageSize), res.Meta()["page_size"])
	})

	t.Run("details", func(t *testing.T) {
		res := serve(mux, asUser(testutil.NewRequest(http.MethodGet, "/books/"+ownershipID, nil)))
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "The definitive guide to Java.", res.Data()["description"])
		assert.Equal(t, "/books/OL26888396M", res.Data()["catalogKey"])

		res = serve(mux, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/books/"+ownershipID, nil), testutil.OtherUserID))
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Equal(t, "NOT_FOUND", res.ErrorCode())
	})

	t.Run("lookup", func(t *testing.T) {
		res := serve(mux, asUser(testutil.NewRequest(http.MethodPost, "/books/lookup", map[string]string{"isbn": testISBN})))
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, true, res.Data()["found"])
		assert.Equal(t, true, res.Data()["existsLocally"])

		res = serve(mux, asUser(testutil.NewRequest(http.MethodPost, "/books/lookup", map[string]string{"isbn": "9780262033848"})))
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, false, res.Data()["found"])
		assert.Equal(t, "9780262033848", res.Data()["isbn"])
		assert.NotEmpty(t, res.Data()["message"])

		res = serve(mux, asUser(testutil.NewRequest(http.MethodPost, "/books/lookup", map[string]string{"isbn": "9781491950357"})))
		assert.Equal(t, http.StatusBadGateway, res.Code)
	})

	t.Run("bulk add", func(t *testing.T) {
		body := map[string][]string{"isbns": {testISBN, "9780262033848"}}
		res := serve(mux, asUser(testutil.NewRequest(http.MethodPost, "/books/bulk-add", body)))
		require.Equal(t, http.StatusOK, res.Code)
		assert.Empty(t, res.Data()["added"])
		failed, ok := res.Data()["failed"].([]any)
		require.True(t, ok)
		require.Len(t, failed, 2)
		assert.Equal(t, map[string]any{"isbn": testISBN, "error": "AlreadyOwned"}, failed[0])
		assert.Equal(t, map[string]any{"isbn": "9780262033848", "error": "NotFoundInCatalog"}, failed[1])

		tooMany := make([]string, MaxBulkAdd+1)
		for i := range tooMany {
			tooMany[i] = testISBN
		}
		res = serve(mux, asUser(testutil.NewRequest(http.MethodPost, "/books/bulk-add", map[string][]string{"isbns": tooMany})))
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("batch delete", func(t *testing.T) {
		body := map[string][]string{"ids": {"missing", ownershipID}}
		res := serve(mux, asUser(testutil.NewRequest(http.MethodPost, "/books/batch-delete", body)))
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, []any{ownershipID}, res.Data()["removedIds"])
		assert.Equal(t, []any{"missing"}, res.Data()["failedIds"])

		res = serve(mux, asUser(testutil.NewRequest(http.MethodPost, "/books/batch-delete", map[string][]string{"ids": {}})))
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("delete", func(t *testing.T) {
		item, err := f.svc.AddByISBN(context.Background(), testutil.TestUserID, testISBN)
		require.NoError(t, err)

		res := serve(mux, asUser(testutil.NewRequest(http.MethodDelete, "/books/"+item.ID, nil)))
		assert.Equal(t, http.StatusNoContent, res.Code)

		res = serve(mux, asUser(testutil.NewRequest(http.MethodDelete, "/books/"+item.ID, nil)))
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}

func TestHTTPHandler_CatalogCallsAreBudgeted(t *testing.T) {
	f := newFixture()
	blockUntilDone := func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}
	f.catalog.On("Lookup", mock.Anything, mock.Anything).Run(blockUntilDone).Return(nil, context.DeadlineExceeded)
	h := NewHTTPHandler(f.svc)
	h.budget = 20 * time.Millisecond
	mux := newTestMux(h)
	asUser := func(r *http.Request) *http.Request { return testutil.WithUser(r, testutil.TestUserID) }

	t.Run("add", func(t *testing.T) {
		res := serve(mux, asUser(testutil.NewRequest(http.MethodPost, "/books", map[string]string{"isbn": testISBN})))
		assert.Equal(t, http.StatusBadGateway, res.Code)
		assert.Equal(t, "UPSTREAM_UNAVAILABLE", res.ErrorCode())
	})

	t.Run("bulk add reports every item", func(t *testing.T) {
		body := map[string][]string{"isbns": {testISBN, "9780262033848"}}
		res := serve(mux, asUser(testutil.NewRequest(http.MethodPost, "/books/bulk-add", body)))
		require.Equal(t, http.StatusOK, res.Code)
		failed, ok := res.Data()["failed"].([]any)
		require.True(t, ok)
		assert.Len(t, failed, 2)
	})

	t.Run("lookup", func(t *testing.T) {
		res := serve(mux, asUser(testutil.NewRequest(http.MethodPost, "/books/lookup", map[string]string{"isbn": testISBN})))
		assert.Equal(t, http.StatusBadGateway, res.Code)
	})

	assert.Zero(t, f.store.bookCount())
}

func TestHTTPHandler_ListHugePage(t *testing.T) {
	mux := newTestMux(NewHTTPHandler(newFixture().svc))

	res := serve(mux, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/books?page=9223372036854775807", nil), testutil.TestUserID))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, float64(MaxPage), res.Meta()["page"])
	assert.Equal(t, []any{}, res.Body["data"])
}

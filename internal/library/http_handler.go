package library

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shelfapi/internal/httpx"
)

// RequestBudget bounds the handlers that reach the catalog so they answer
// before the server's write deadline. Items still running when it expires
// fail as UpstreamUnavailable.
const RequestBudget = 25 * time.Second

type HTTPHandler struct {
	service *Service
	budget  time.Duration
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service, budget: RequestBudget}
}

func (h *HTTPHandler) budgeted(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.budget)
}

type ISBNReq struct {
	ISBN string `json:"isbn" validate:"required,min=10,max=17,isbn"`
}

type BatchDeleteReq struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100,dive,required"`
}

type BulkAddReq struct {
	ISBNs []string `json:"isbns" validate:"required,min=1,max=20,dive,required,min=10,max=17"`
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch KindOf(err) {
	case KindUnauthorized:
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	case KindAlreadyOwned:
		httpx.JSONError(w, r, http.StatusConflict, "ALREADY_OWNED", "Book is already in your library", nil)
	case KindNotFoundInCatalog:
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND_IN_CATALOG", "Book not found on OpenLibrary", nil)
	case KindUpstreamUnavailable:
		httpx.JSONError(w, r, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Book catalog is unavailable", nil)
	case KindNotFoundLocal:
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found in your library", nil)
	case KindInvalidISBN:
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
			{Field: "isbn", Message: "must be a valid ISBN-10 or ISBN-13"},
		})
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return false
	}
	if details := httpx.ValidateStruct(dst); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return false
	}
	return true
}

// List handles GET /books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := strconv.Atoi(query.Get("page"))
	if err != nil {
		page = 1
	}
	pageSize, err := strconv.Atoi(query.Get("page_size"))
	if err != nil {
		pageSize = DefaultPageSize
	}

	p, err := h.service.List(r.Context(), httpx.UserIDFrom(r), page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, p.Items, map[string]any{
		"page":        p.Page,
		"page_size":   p.PageSize,
		"total":       p.Total,
		"total_pages": p.TotalPages(),
		"has_more":    p.HasMore(),
	})
}

// Add handles POST /books
func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req ISBNReq
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ctx, cancel := h.budgeted(r)
	defer cancel()
	item, err := h.service.AddByISBN(ctx, httpx.UserIDFrom(r), req.ISBN)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, item)
}

// Get handles GET /books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, r, newError(KindNotFoundLocal, "", id, nil))
		return
	}
	d, err := h.service.Details(r.Context(), id, httpx.UserIDFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, d, nil)
}

// Remove handles DELETE /books/{id}
func (h *HTTPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := h.service.Remove(r.Context(), id, httpx.UserIDFrom(r)); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// BatchDelete handles POST /books/batch-delete
func (h *HTTPHandler) BatchDelete(w http.ResponseWriter, r *http.Request) {
	var req BatchDeleteReq
	if !decodeAndValidate(w, r, &req) {
		return
	}
	res := h.service.BatchRemove(r.Context(), req.IDs, httpx.UserIDFrom(r))
	httpx.JSONSuccess(w, r, res, nil)
}

// BulkAdd handles POST /books/bulk-add
func (h *HTTPHandler) BulkAdd(w http.ResponseWriter, r *http.Request) {
	var req BulkAddReq
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ctx, cancel := h.budgeted(r)
	defer cancel()
	res, err := h.service.BulkAdd(ctx, httpx.UserIDFrom(r), req.ISBNs)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

// Lookup handles POST /books/lookup
func (h *HTTPHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req ISBNReq
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ctx, cancel := h.budgeted(r)
	defer cancel()
	res, err := h.service.Lookup(ctx, req.ISBN)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

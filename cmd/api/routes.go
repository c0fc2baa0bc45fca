package main

import (
	"context"
	"net/http"
	"time"

	"shelfapi/internal/auth"
	"shelfapi/internal/blob"
	"shelfapi/internal/library"
	"shelfapi/internal/session"
	"shelfapi/internal/user"
)

type handlers struct {
	library *library.HTTPHandler
	users   *user.HTTPHandler
	auth    *auth.HTTPHandler
	session *session.HTTPHandler
	blob    *blob.HTTPHandler
}

// readinessCheck reports whether a backing service is reachable.
type readinessCheck func(ctx context.Context) error

func newRouter(h handlers, requireAuth func(http.Handler) http.Handler, checks ...readinessCheck) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		for _, check := range checks {
			if err := check(ctx); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("POST /users/register", h.users.RegisterUser)
	router.HandleFunc("POST /users/login", h.auth.Login)
	router.HandleFunc("POST /auth/refresh", h.auth.RefreshToken)

	protected := func(pattern string, fn http.HandlerFunc) {
		router.Handle(pattern, requireAuth(fn))
	}

	protected("POST /auth/logout", h.auth.Logout)
	protected("GET /me", h.users.GetCurrentUser)
	protected("GET /me/sessions", h.session.ListSessions)
	protected("DELETE /me/sessions/{id}", h.session.DeleteSession)

	protected("GET /books", h.library.List)
	protected("POST /books", h.library.Add)
	protected("GET /books/{id}", h.library.Get)
	protected("DELETE /books/{id}", h.library.Remove)
	protected("POST /books/batch-delete", h.library.BatchDelete)
	protected("POST /books/bulk-add", h.library.BulkAdd)
	protected("POST /books/lookup", h.library.Lookup)

	protected("GET /api/blob/{path...}", h.blob.Get)

	return router
}

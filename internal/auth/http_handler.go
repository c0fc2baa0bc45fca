package auth

import (
	"errors"
	"net/http"
	"strings"

	"shelfapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type LoginReq struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

type RefreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
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

// writeAuthError reports ErrUnauthorized as 401 with message and anything
// else as 500.
func writeAuthError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, ErrUnauthorized) {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
		return
	}
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}

// Login handles POST /users/login
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if !decode(w, r, &req) {
		return
	}
	email := strings.TrimSpace(req.Email)

	tokens, err := h.service.Login(r.Context(), email, req.Password, req.RememberMe, r.UserAgent(), httpx.ClientIP(r))
	if err != nil {
		writeAuthError(w, r, err, "Invalid email or password")
		return
	}
	httpx.JSONSuccess(w, r, tokens, nil)
}

// RefreshToken handles POST /auth/refresh
func (h *HTTPHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshReq
	if !decode(w, r, &req) {
		return
	}

	tokens, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeAuthError(w, r, err, "Invalid or expired refresh token")
		return
	}
	httpx.JSONSuccess(w, r, tokens, nil)
}

// Logout handles POST /auth/logout
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := httpx.BearerToken(r)
	userID := httpx.UserIDFrom(r)
	if !ok || userID == "" {
		writeAuthError(w, r, ErrUnauthorized, "Unauthorized")
		return
	}

	if err := h.service.Logout(r.Context(), token, userID); err != nil {
		writeAuthError(w, r, err, "Unauthorized")
		return
	}
	httpx.JSONSuccessNoContent(w)
}

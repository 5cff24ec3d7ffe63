package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tunecrate/tunecrate/internal/api/domain"
	"github.com/tunecrate/tunecrate/internal/api/service"
	"github.com/tunecrate/tunecrate/pkg/httpx"
	"github.com/tunecrate/tunecrate/pkg/jwtx"
)

// LoginHandler serves POST /v1/auth/login.
type LoginHandler struct {
	AuthService *service.AuthService
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "login and password are required")
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}

// RefreshHandler serves POST /v1/auth/refresh.
type RefreshHandler struct {
	AuthService *service.AuthService
	Gate        *service.TokenGate
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "refresh_token is required")
		return
	}

	claims, err := h.Gate.Authenticate(req.RefreshToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), claims)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}

// LogoutHandler serves POST /v1/auth/logout. It consumes the presented
// refresh token's session record; the matching access token simply runs out.
type LogoutHandler struct {
	AuthService *service.AuthService
	Gate        *service.TokenGate
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "refresh_token is required")
		return
	}

	claims, err := h.Gate.Authenticate(req.RefreshToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Gate.RequireType(claims, jwtx.TokenTypeRefresh); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.AuthService.Logout(r.Context(), claims.Subject, claims.ID); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TerminateSessionsHandler serves POST /v1/auth/terminate-all-sessions/{user_id}.
// The actor must pass the permission matrix against the target.
type TerminateSessionsHandler struct {
	UserService *service.UserService
}

func (h *TerminateSessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrInvalidToken)
		return
	}

	if err := h.UserService.RevokeSessions(r.Context(), actor, r.PathValue("user_id")); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tunecrate/tunecrate/internal/api/service"
	"github.com/tunecrate/tunecrate/pkg/httpx"
)

// SendVerificationHandler serves POST /v1/auth/send-verification-code.
type SendVerificationHandler struct {
	VerificationService *service.VerificationService
}

type sendVerificationRequest struct {
	Email string `json:"email"`
}

func (h *SendVerificationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req sendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}

	if err := h.VerificationService.SendCode(r.Context(), req.Email); err != nil {
		writeDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// VerifyEmailHandler serves GET /v1/auth/verify-email?email=..&code=.., the
// link target in the verification email.
type VerifyEmailHandler struct {
	VerificationService *service.VerificationService
}

func (h *VerifyEmailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if email == "" || code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email and code are required")
		return
	}

	if err := h.VerificationService.Confirm(r.Context(), email, code); err != nil {
		writeDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

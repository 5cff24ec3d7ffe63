package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tunecrate/tunecrate/internal/api/domain"
	"github.com/tunecrate/tunecrate/internal/api/service"
	"github.com/tunecrate/tunecrate/pkg/httpx"
)

// MusicHandler serves the audio-download proxy endpoints.
type MusicHandler struct {
	MusicService *service.MusicService
}

type downloadRequest struct {
	URL string `json:"url"`
}

// HandleStart serves POST /v1/music/download.
func (h *MusicHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "url is required")
		return
	}

	id, err := h.MusicService.StartDownload(r.Context(), req.URL)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, domain.DownloadOperation{
		ID:     id,
		Status: domain.OperationPending,
	})
}

// HandlePoll serves GET /v1/music/download?operation_id=. A still-pending
// operation answers 202 so clients keep polling.
func (h *MusicHandler) HandlePoll(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("operation_id"))
	if id == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "operation_id is required")
		return
	}

	op, err := h.MusicService.GetOperation(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrFileNotReady) {
			httpx.WriteJSON(w, http.StatusAccepted, op)
			return
		}
		writeDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, op)
}

// Package httpapi provides the HTTP glue around the mailbox store:
// the send API (POST /messages, GET /directory) and the fetch API
// (GET /messages?id=). It is transport only; all validation and
// storage semantics live behind the openack interfaces.
package httpapi

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/openack/openack"
	"github.com/openack/openack/errors"
)

// Handler carries the collaborators shared by all endpoints.
type Handler struct {
	store openack.MailboxStore
	dir   openack.Directory
	log   *slog.Logger
}

// NewHandler creates a Handler. A nil logger falls back to
// slog.Default.
func NewHandler(store openack.MailboxStore, dir openack.Directory, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, dir: dir, log: logger}
}

// JSON writes a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("write response", "error", err)
	}
}

// Error writes a JSON error body with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, msg string) {
	h.JSON(w, status, map[string]string{"error": msg})
}

// storeError maps a store failure onto an HTTP status: everything in
// the validation taxonomy is the client's fault, the rest is ours.
func (h *Handler) storeError(w http.ResponseWriter, err error) {
	clientFault := []error{
		errors.ErrInvalidAgentName,
		errors.ErrUnknownSender,
		errors.ErrUnknownRecipient,
		errors.ErrNoRecipients,
		errors.ErrEmptyBody,
		errors.ErrBodyCollision,
		errors.ErrUnknownToken,
	}
	for _, sentinel := range clientFault {
		if stderrors.Is(err, sentinel) {
			h.Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	h.log.Error("store operation failed", "error", err)
	h.Error(w, http.StatusInternalServerError, err.Error())
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

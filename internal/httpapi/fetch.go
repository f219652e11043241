package httpapi

import (
	"net/http"
	"strings"
)

// FetchMessages handles GET /messages?id=<token>: it drains the
// token holder's inbox and returns the decoded messages, archiving
// each one as a side effect. An empty inbox yields an empty array.
func (h *Handler) FetchMessages(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("id")
	if strings.TrimSpace(token) == "" {
		h.Error(w, http.StatusBadRequest, "missing id query parameter")
		return
	}

	messages, err := h.store.FetchAndConsume(r.Context(), token)
	if err != nil {
		h.storeError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, messages)
}

// ListDirectory handles GET /directory.
func (h *Handler) ListDirectory(w http.ResponseWriter, r *http.Request) {
	agents, err := h.dir.Agents(r.Context())
	if err != nil {
		h.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{
		"people": agents,
		"count":  len(agents),
	})
}

package httpapi

import (
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/openack/openack"
)

// maxUploadBytes bounds how much of a multipart body is held in
// memory; larger uploads spill to temp files.
const maxUploadBytes = 32 << 20

// SendResponse is the send API success body.
type SendResponse struct {
	Status     string             `json:"status"`
	From       openack.Agent      `json:"from"`
	To         []openack.Agent    `json:"to"`
	SentAt     time.Time          `json:"sent_at"`
	Deliveries []openack.Delivery `json:"deliveries"`
}

// SendMessage handles POST /messages. It accepts multipart/form-data
// (fields from, repeated to, message, file parts) or urlencoded
// bodies without attachments.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseSendRequest(w, r)
	if !ok {
		return
	}

	deliveries, err := h.store.Enqueue(r.Context(), req)
	if err != nil {
		h.storeError(w, err)
		return
	}

	// Enqueue succeeded, so the sender canonicalizes.
	sender, _ := openack.CanonicalAgent(req.Sender)
	to := make([]openack.Agent, 0, len(deliveries))
	for _, d := range deliveries {
		to = append(to, d.Recipient)
	}

	h.JSON(w, http.StatusOK, SendResponse{
		Status:     "ok",
		From:       sender,
		To:         to,
		SentAt:     deliveries[0].SentAt,
		Deliveries: deliveries,
	})
}

// parseSendRequest decodes the transport body into an EnqueueRequest.
// On failure it writes the error response and returns ok=false.
func (h *Handler) parseSendRequest(w http.ResponseWriter, r *http.Request) (openack.EnqueueRequest, bool) {
	var req openack.EnqueueRequest

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			h.Error(w, http.StatusBadRequest, "invalid multipart form payload")
			return req, false
		}
		form := r.MultipartForm
		req.Sender = firstValue(form.Value["from"])
		req.Recipients = form.Value["to"]
		req.Body = firstValue(form.Value["message"])

		// Map iteration order is random; sort field names so upload
		// order is deterministic across requests.
		fileFields := make([]string, 0, len(form.File))
		for name := range form.File {
			fileFields = append(fileFields, name)
		}
		sort.Strings(fileFields)
		for _, name := range fileFields {
			for _, header := range form.File[name] {
				f, err := header.Open()
				if err != nil {
					h.Error(w, http.StatusBadRequest, "invalid multipart form payload")
					return req, false
				}
				content, err := io.ReadAll(f)
				_ = f.Close()
				if err != nil {
					h.Error(w, http.StatusBadRequest, "invalid multipart form payload")
					return req, false
				}
				req.Attachments = append(req.Attachments, openack.Upload{
					OriginalName: header.Filename,
					Content:      content,
				})
			}
		}
		return req, true
	}

	if err := r.ParseForm(); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid form payload")
		return req, false
	}
	req.Sender = r.PostForm.Get("from")
	req.Recipients = r.PostForm["to"]
	req.Body = r.PostForm.Get("message")
	return req, true
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

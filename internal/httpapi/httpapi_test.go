package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/openack/openack"
	"github.com/openack/openack/mailbox"
)

func newTestAPIs(t *testing.T) (send, fetch http.Handler) {
	t.Helper()
	dir := &openack.StaticDirectory{
		People: []openack.Agent{"alice", "bob"},
		Tokens: map[string]openack.Agent{"tok-bob": "bob"},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := mailbox.New(t.TempDir(), dir, nil, logger)
	h := NewHandler(store, dir, logger)
	return SendRouter(h), FetchRouter(h)
}

func postForm(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSendThenFetchRoundTrip(t *testing.T) {
	sendAPI, fetchAPI := newTestAPIs(t)

	// Multipart submission with one attachment.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("from", "alice")
	_ = mw.WriteField("to", "bob")
	_ = mw.WriteField("message", "hello over http")
	fw, err := mw.CreateFormFile("file1", "pic.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte{0x89, 'P', 'N', 'G'}); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/messages", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	sendAPI.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("send status = %d, body = %s", rec.Code, rec.Body)
	}
	var sent SendResponse
	if err := json.NewDecoder(rec.Body).Decode(&sent); err != nil {
		t.Fatalf("decode send response: %v", err)
	}
	if sent.Status != "ok" || sent.From != "alice" {
		t.Errorf("send response = %+v", sent)
	}
	if len(sent.Deliveries) != 1 || sent.Deliveries[0].Recipient != "bob" {
		t.Fatalf("deliveries = %+v, want one to bob", sent.Deliveries)
	}
	if len(sent.Deliveries[0].Attachments) != 1 {
		t.Fatalf("delivery attachments = %v, want 1", sent.Deliveries[0].Attachments)
	}

	// Fetch drains the inbox.
	rec = httptest.NewRecorder()
	fetchAPI.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/messages?id=tok-bob", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch status = %d, body = %s", rec.Code, rec.Body)
	}

	var messages []struct {
		From        string `json:"from"`
		To          string `json:"to"`
		Message     string `json:"message"`
		Attachments []struct {
			File    string `json:"file"`
			Content string `json:"content"`
		} `json:"attachments"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&messages); err != nil {
		t.Fatalf("decode fetch response: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(messages))
	}
	msg := messages[0]
	if msg.From != "alice" || msg.To != "bob" || msg.Message != "hello over http" {
		t.Errorf("message = %+v", msg)
	}
	if len(msg.Attachments) != 1 {
		t.Fatalf("attachments = %+v, want 1", msg.Attachments)
	}
	// []byte content marshals as base64.
	if msg.Attachments[0].Content != "iVBORw==" {
		t.Errorf("attachment content = %q, want base64 of PNG prefix", msg.Attachments[0].Content)
	}

	// A second fetch is empty, not an error.
	rec = httptest.NewRecorder()
	fetchAPI.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/messages?id=tok-bob", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("second fetch = %d %q, want 200 []", rec.Code, rec.Body)
	}
}

func TestSendMessage_URLEncodedForm(t *testing.T) {
	sendAPI, _ := newTestAPIs(t)

	rec := postForm(t, sendAPI, url.Values{
		"from":    {"alice"},
		"to":      {"bob"},
		"message": {"plain form body"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
}

func TestSendMessage_ClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		wantMsg string
	}{
		{
			name:    "unknown recipient",
			form:    url.Values{"from": {"alice"}, "to": {"ghost"}, "message": {"hi"}},
			wantMsg: "recipient(s) not in directory: ghost",
		},
		{
			name:    "unknown sender",
			form:    url.Values{"from": {"mallory"}, "to": {"bob"}, "message": {"hi"}},
			wantMsg: "sender is not in directory",
		},
		{
			name:    "missing body",
			form:    url.Values{"from": {"alice"}, "to": {"bob"}},
			wantMsg: "must not be empty",
		},
		{
			name:    "no recipients",
			form:    url.Values{"from": {"alice"}, "message": {"hi"}},
			wantMsg: "at least one recipient",
		},
	}

	sendAPI, _ := newTestAPIs(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForm(t, sendAPI, tt.form)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body = %s", rec.Code, rec.Body)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if !strings.Contains(body["error"], tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", body["error"], tt.wantMsg)
			}
		})
	}
}

func TestFetchMessages_ClientErrors(t *testing.T) {
	_, fetchAPI := newTestAPIs(t)

	rec := httptest.NewRecorder()
	fetchAPI.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/messages", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing id: status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	fetchAPI.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/messages?id=bogus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown token: status = %d, want 400", rec.Code)
	}
}

func TestListDirectory(t *testing.T) {
	sendAPI, _ := newTestAPIs(t)

	rec := httptest.NewRecorder()
	sendAPI.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/directory", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		People []string `json:"people"`
		Count  int      `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode directory body: %v", err)
	}
	if body.Count != 2 || len(body.People) != 2 || body.People[0] != "alice" {
		t.Errorf("directory = %+v, want alice and bob", body)
	}
}

func TestHealthAndHowto(t *testing.T) {
	sendAPI, fetchAPI := newTestAPIs(t)

	for name, h := range map[string]http.Handler{"send": sendAPI, "fetch": fetchAPI} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s /healthz = %d, want 200", name, rec.Code)
		}

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/howto", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s /howto = %d, want 200", name, rec.Code)
		}
		body, _ := io.ReadAll(rec.Body)
		if !bytes.Contains(body, []byte(`"openapi"`)) {
			t.Errorf("%s /howto body missing openapi field", name)
		}
	}
}

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dominusativos/captazap/internal/conversation"
)

type fakeIngester struct {
	mu       sync.Mutex
	messages []conversation.InboundMessage
}

func (f *fakeIngester) HandleInbound(_ context.Context, msg conversation.InboundMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeIngester) all() []conversation.InboundMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]conversation.InboundMessage, len(f.messages))
	copy(out, f.messages)
	return out
}

func newTestHandler(ingester Ingester) *WebhookHandler {
	return NewWebhookHandler(WebhookConfig{
		Ingester:    ingester,
		VerifyToken: "segredo",
	})
}

func TestHandleVerify(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"valid handshake", "hub.mode=subscribe&hub.verify_token=segredo&hub.challenge=12345", http.StatusOK, "12345"},
		{"wrong token", "hub.mode=subscribe&hub.verify_token=errado&hub.challenge=12345", http.StatusForbidden, ""},
		{"wrong mode", "hub.mode=unsubscribe&hub.verify_token=segredo&hub.challenge=12345", http.StatusForbidden, ""},
		{"missing everything", "", http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeIngester{})
			req := httptest.NewRequest(http.MethodGet, "/webhook?"+tt.query, nil)
			rr := httptest.NewRecorder()
			h.HandleVerify(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			}
		})
	}
}

func TestHandleVerifyWithoutConfiguredToken(t *testing.T) {
	h := NewWebhookHandler(WebhookConfig{Ingester: &fakeIngester{}})
	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=&hub.challenge=1", nil)
	rr := httptest.NewRecorder()
	h.HandleVerify(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code, "empty configured token must never verify")
}

func postEvents(t *testing.T, h *WebhookHandler, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	h.HandleEvents(rr, req)
	return rr
}

func TestHandleEventsTextMessage(t *testing.T) {
	ingester := &fakeIngester{}
	h := newTestHandler(ingester)

	rr := postEvents(t, h, `{
		"entry": [{"changes": [{"value": {"messages": [
			{"from": "5561999112233", "type": "text", "timestamp": "1717243200", "text": {"body": "SIM"}}
		]}}]}]
	}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	require.Eventually(t, func() bool { return len(ingester.all()) == 1 }, time.Second, 5*time.Millisecond)
	msg := ingester.all()[0]
	assert.Equal(t, "5561999112233", msg.From)
	assert.Equal(t, "SIM", msg.Body)
	assert.Equal(t, time.Unix(1717243200, 0), msg.Timestamp)
}

func TestHandleEventsBodyExtractionPriority(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			"text wins over button",
			`{"from": "5561999112233", "text": {"body": "texto"}, "button": {"text": "botão"}}`,
			"texto",
		},
		{
			"button reply",
			`{"from": "5561999112233", "button": {"text": "Sim, quero"}}`,
			"Sim, quero",
		},
		{
			"interactive button reply",
			`{"from": "5561999112233", "interactive": {"button_reply": {"title": "NÃO"}}}`,
			"NÃO",
		},
		{
			"interactive list reply",
			`{"from": "5561999112233", "interactive": {"list_reply": {"title": "opção 2"}}}`,
			"opção 2",
		},
		{
			"unsupported type gets placeholder",
			`{"from": "5561999112233", "type": "audio"}`,
			unsupportedBody,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingester := &fakeIngester{}
			h := newTestHandler(ingester)
			postEvents(t, h, `{"entry": [{"changes": [{"value": {"messages": [`+tt.message+`]}}]}]}`)
			require.Eventually(t, func() bool { return len(ingester.all()) == 1 }, time.Second, 5*time.Millisecond)
			assert.Equal(t, tt.want, ingester.all()[0].Body)
		})
	}
}

func TestHandleEventsMalformedPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "{broken"},
		{"empty object", "{}"},
		{"empty entry", `{"entry": []}`},
		{"message without fields", `{"entry": [{"changes": [{"value": {"messages": [{}]}}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeIngester{})
			rr := postEvents(t, h, tt.payload)
			assert.Equal(t, http.StatusOK, rr.Code, "webhook must never fail on partial payloads")
		})
	}
}

func TestHandleEventsStatusesOnlyLogged(t *testing.T) {
	ingester := &fakeIngester{}
	h := newTestHandler(ingester)

	rr := postEvents(t, h, `{
		"entry": [{"changes": [{"value": {"statuses": [
			{"id": "wamid.1", "status": "failed", "recipient_id": "5561999112233", "errors": [{"code": 131026, "title": "unreachable"}]}
		]}}]}]
	}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, ingester.all(), "status records must not reach the engine")
}

func TestHandleEventsMissingTimestamp(t *testing.T) {
	ingester := &fakeIngester{}
	h := newTestHandler(ingester)

	postEvents(t, h, `{"entry": [{"changes": [{"value": {"messages": [
		{"from": "5561999112233", "text": {"body": "oi"}}
	]}}]}]}`)

	require.Eventually(t, func() bool { return len(ingester.all()) == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, ingester.all()[0].Timestamp.IsZero())
}

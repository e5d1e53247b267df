package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dominusativos/captazap/internal/conversation"
)

type captureMessenger struct {
	to   string
	body string
	err  error
}

func (m *captureMessenger) SendText(_ context.Context, to, body string) (string, error) {
	m.to = to
	m.body = body
	return "wamid.x", m.err
}

func TestReplyReceived(t *testing.T) {
	m := &captureMessenger{}
	s := NewService(m, "5561911112222", nil, nil)

	s.ReplyReceived(context.Background(), conversation.Notification{
		LeadName: "Maria Souza",
		Phone:    "5561999112233",
		CaseRef:  "0001234-56.2023.5.10.0001",
		Reply:    "sim",
	})

	assert.Equal(t, "5561911112222", m.to)
	assert.Contains(t, m.body, "Maria Souza")
	assert.Contains(t, m.body, "5561999112233")
	assert.Contains(t, m.body, "0001234-56.2023.5.10.0001")
	assert.Contains(t, m.body, "sim")
}

func TestReplyReceivedDefaults(t *testing.T) {
	m := &captureMessenger{}
	s := NewService(m, "5561911112222", nil, nil)

	s.ReplyReceived(context.Background(), conversation.Notification{Phone: "5561999112233", Reply: "oi"})

	assert.Contains(t, m.body, "(desconhecido)")
	assert.Contains(t, m.body, "(não informado)")
}

func TestReplyReceivedSwallowsFailures(t *testing.T) {
	m := &captureMessenger{err: errors.New("boom")}
	s := NewService(m, "5561911112222", nil, nil)

	require.NotPanics(t, func() {
		s.ReplyReceived(context.Background(), conversation.Notification{Phone: "5561999112233"})
	})
}

func TestReplyReceivedUnconfigured(t *testing.T) {
	s := NewService(nil, "", nil, nil)
	require.NotPanics(t, func() {
		s.ReplyReceived(context.Background(), conversation.Notification{Phone: "5561999112233"})
	})
}

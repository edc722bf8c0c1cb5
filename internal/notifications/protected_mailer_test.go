package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeMailer struct {
	calls int
	err   error
}

func (f *fakeMailer) Send(ctx context.Context, msg Message) error {
	f.calls++
	return f.err
}

func TestProtectedMailer_OpensAfterThreshold(t *testing.T) {
	inner := &fakeMailer{err: errors.New("smtp down")}
	m := NewProtectedMailer(inner, ProtectedMailerConfig{FailureThreshold: 2, Cooldown: time.Minute})

	for i := 0; i < 2; i++ {
		if err := m.Send(context.Background(), Message{}); err == nil {
			t.Fatalf("expected failure on call %d", i)
		}
	}

	if err := m.Send(context.Background(), Message{}); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("inner should not be called while open, calls=%d", inner.calls)
	}
}

func TestProtectedMailer_HalfOpenRecovers(t *testing.T) {
	inner := &fakeMailer{err: errors.New("smtp down")}
	m := NewProtectedMailer(inner, ProtectedMailerConfig{FailureThreshold: 1, Cooldown: time.Minute})

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	_ = m.Send(context.Background(), Message{})
	if m.State() != "open" {
		t.Fatalf("expected open, got %s", m.State())
	}

	clock = clock.Add(2 * time.Minute)
	inner.err = nil

	if err := m.Send(context.Background(), Message{}); err != nil {
		t.Fatalf("half-open trial should pass through: %v", err)
	}
	if m.State() != "closed" {
		t.Fatalf("expected closed, got %s", m.State())
	}
}

func TestContactMessage_EscapesHTML(t *testing.T) {
	msg, err := ContactMessage("inbox@example.com", ContactInput{
		Email:   "a@example.com",
		Subject: "Hi",
		Body:    "<script>alert(1)</script>",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if strings.Contains(msg.HTML, "<script>") {
		t.Fatalf("html body must be escaped: %s", msg.HTML)
	}
	if msg.ReplyTo != "a@example.com" || msg.To != "inbox@example.com" {
		t.Fatalf("unexpected routing: %+v", msg)
	}
	if !strings.Contains(msg.Text, "Anonymous") {
		t.Fatalf("missing sender fallback: %s", msg.Text)
	}
}

package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// LogMailer stands in for SMTP in development and tests. It logs every
// message and keeps the last ones for inspection.
type LogMailer struct {
	logger *slog.Logger

	// Delay simulates a slow provider; Fail simulates an outage.
	Delay time.Duration
	Fail  bool

	mu   sync.Mutex
	sent []Message
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if m.Fail {
		return fmt.Errorf("provider down (simulated)")
	}

	m.logger.InfoContext(ctx, "mail.sent", "to", msg.To, "subject", msg.Subject)

	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	return nil
}

func (m *LogMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}

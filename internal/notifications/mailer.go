package notifications

import "context"

type Message struct {
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Mailer is built once in main and injected wherever email goes out.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

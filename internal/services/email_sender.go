package services

import "context"

// Message is a single outbound HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

type EmailSender interface {
	Send(ctx context.Context, msg Message) error
}

package domain

import "time"

// Document represents one source email as fetched from the mailbox.
// It is immutable once fetched: the pipeline consumes it exactly once
// and never mutates it.
type Document struct {
	// ID is the mailbox message identifier, stable and globally unique
	// within the source system.
	ID string

	// Subject is the email subject line.
	Subject string

	// Sender is the human-readable sender name.
	Sender string

	// SenderEmail is the sender address.
	SenderEmail string

	// ReceivedAt is when the mailbox received the message.
	ReceivedAt time.Time

	// Text is the plain-text body used for extraction.
	Text string

	// Snippet is a short preview of the body.
	Snippet string
}

// HasText returns true if the document carries extractable content.
func (d *Document) HasText() bool {
	return len(d.Text) > 0
}

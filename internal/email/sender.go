package email

import "context"

// Message is one outbound transactional email. Sender identity is
// per-message because each site sends under its own address and name.
type Message struct {
	To        string
	Subject   string
	HTML      string
	Text      string
	FromEmail string
	FromName  string
}

// Sender delivers a single message. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

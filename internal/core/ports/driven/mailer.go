package driven

import "context"

// SenderSetup is the outcome of configuring a transactional sender.
type SenderSetup struct {
	// Service identifies the provider ("sendgrid", "mailgun").
	Service string

	// FromEmail is the verified sender address.
	FromEmail string

	// Verified reports whether the sender identity is confirmed.
	Verified bool

	// Detail is a human-readable summary.
	Detail string
}

// Message is an outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Mailer sets up and sends through one transactional email provider.
type Mailer interface {
	// Name identifies the provider.
	Name() string

	// VerifyKey checks the API key with a live call.
	VerifyKey(ctx context.Context) error

	// SetupSender registers a sender identity for the application.
	SetupSender(ctx context.Context, appName, fromEmail string) (*SenderSetup, error)

	// Send delivers a message.
	Send(ctx context.Context, msg Message) error
}

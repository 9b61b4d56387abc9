// Package notify delivers forecast emails over SMTP.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"
)

// Transport is an SMTP session. *mail.Client satisfies it.
type Transport interface {
	DialWithContext(ctx context.Context) error
	Send(messages ...*mail.Msg) error
	Close() error
}

// TransportFactory opens a fresh transport bound to the given credentials
type TransportFactory func(creds Credentials) (Transport, error)

// SendResult reports the outcome of one send. Err is an *AuthenticationError
// or a *TransportError when Sent is false.
type SendResult struct {
	Sent    bool
	Message string
	Err     error
}

// Config is the mail submission endpoint
type Config struct {
	Host    string
	Port    int
	Timeout time.Duration
}

// Notifier sends messages; it never stores credentials between calls
type Notifier interface {
	Send(ctx context.Context, creds Credentials, msg Message) SendResult
}

type smtpNotifier struct {
	newTransport TransportFactory
	logger       *slog.Logger
}

// NewNotifier creates a notifier that submits mail with STARTTLS and PLAIN auth
func NewNotifier(logger *slog.Logger, cfg Config) Notifier {
	return NewNotifierWithTransport(logger, SMTPTransport(cfg))
}

// NewNotifierWithTransport creates a notifier with a custom transport factory (useful for testing)
func NewNotifierWithTransport(logger *slog.Logger, factory TransportFactory) Notifier {
	return &smtpNotifier{
		newTransport: factory,
		logger:       logger.With("component", "notifier"),
	}
}

// SMTPTransport returns a factory for go-mail clients that require STARTTLS
func SMTPTransport(cfg Config) TransportFactory {
	return func(creds Credentials) (Transport, error) {
		opts := []mail.Option{
			mail.WithPort(cfg.Port),
			mail.WithTLSPolicy(mail.TLSMandatory),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(creds.Username),
			mail.WithPassword(creds.Secret),
		}
		if cfg.Timeout > 0 {
			opts = append(opts, mail.WithTimeout(cfg.Timeout))
		}
		return mail.NewClient(cfg.Host, opts...)
	}
}

func (n *smtpNotifier) Send(ctx context.Context, creds Credentials, msg Message) SendResult {
	m, err := compose(msg, creds)
	if err != nil {
		return n.failed(msg.To, &TransportError{Op: "compose", Err: err})
	}

	transport, err := n.newTransport(creds)
	if err != nil {
		return n.failed(msg.To, &TransportError{Op: "dial", Err: err})
	}
	defer func(t Transport) {
		if cerr := t.Close(); cerr != nil {
			n.logger.Debug("closing mail transport", "error", cerr)
		}
	}(transport)

	// go-mail authenticates as part of the dial
	if err := transport.DialWithContext(ctx); err != nil {
		return n.failed(msg.To, classify("dial", creds.Username, err))
	}

	if err := transport.Send(m); err != nil {
		return n.failed(msg.To, classify("send", creds.Username, err))
	}

	n.logger.Info("email sent", "recipient", msg.To)
	return SendResult{
		Sent:    true,
		Message: fmt.Sprintf("Email sent successfully to %s!", msg.To),
	}
}

func (n *smtpNotifier) failed(recipient string, err error) SendResult {
	n.logger.Error("failed to send email",
		"recipient", recipient,
		"error", err,
	)
	return SendResult{Message: Notice(err), Err: err}
}

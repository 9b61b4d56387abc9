package notify

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

var (
	ErrMissingRecipient = errors.New("recipient address is required")
	ErrMissingSender    = errors.New("sender address is required")
)

// Credentials identify the sending account. They are supplied per send.
type Credentials struct {
	Username string
	Secret   string
}

// Attachment is a single file carried by a message
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is an HTML email to exactly one recipient
type Message struct {
	From       string
	To         string
	Subject    string
	HTMLBody   string
	Attachment *Attachment
}

// compose builds the MIME message. A blank From falls back to the
// authenticated username.
func compose(msg Message, creds Credentials) (*mail.Msg, error) {
	from := strings.TrimSpace(msg.From)
	if from == "" {
		from = strings.TrimSpace(creds.Username)
	}
	if from == "" {
		return nil, ErrMissingSender
	}
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return nil, ErrMissingRecipient
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", from, err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)

	if a := msg.Attachment; a != nil {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := m.AttachReader(a.Filename, bytes.NewReader(a.Data),
			mail.WithFileContentType(mail.ContentType(contentType))); err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", a.Filename, err)
		}
	}

	return m, nil
}

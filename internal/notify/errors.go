package notify

import (
	"errors"
	"fmt"
	"net/textproto"
)

// AuthenticationError is returned when the mail server rejects the sender credentials
type AuthenticationError struct {
	Username string
	Err      error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication rejected for %s: %v", e.Username, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// TransportError covers composition, connection, TLS and transmission faults
type TransportError struct {
	Op  string // compose, dial, send
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mail %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SMTP reply codes that mean the credentials were refused
var authRejectionCodes = map[int]bool{
	530: true, // authentication required
	534: true, // authentication mechanism too weak
	535: true, // credentials invalid
}

func isAuthRejection(err error) bool {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return authRejectionCodes[protoErr.Code]
	}
	return false
}

// classify turns a raw transport error into the notifier's error taxonomy
func classify(op, username string, err error) error {
	if isAuthRejection(err) {
		return &AuthenticationError{Username: username, Err: err}
	}
	return &TransportError{Op: op, Err: err}
}

package notify

import (
	"errors"
	"fmt"
)

// Notice renders a user-facing line for a failed run. Credential problems
// read as a failed send; every other fault is reported generically.
func Notice(err error) string {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return fmt.Sprintf("Failed to send email: %v", err)
	}
	return fmt.Sprintf("An error occurred: %v", err)
}

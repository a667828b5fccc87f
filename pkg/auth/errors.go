package auth

import "fmt"

// AuthenticationError reports that no usable credential could be produced:
// the static token is unset, the private key failed to load, or signing
// failed. It is fatal for the current request and never swallowed.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

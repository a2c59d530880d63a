package supabase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrInvalidToken       = errors.New("invalid token")
)

// APIError is a non-2xx reply from the hosted backend. Body is kept for
// server-side logging and must never be echoed to a client.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend replied %d: %s", e.Status, e.Body)
}

package forum

import "errors"

var (
	// ErrMissingCredentials is returned when the client is constructed
	// without a complete credential set.
	ErrMissingCredentials = errors.New("incomplete forum credentials")

	// ErrAuthFailed is returned when the token endpoint rejects the
	// configured credentials.
	ErrAuthFailed = errors.New("forum authentication failed")
)

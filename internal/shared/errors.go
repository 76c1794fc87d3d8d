package shared

import "errors"

var (
	// ErrMissingCredentials indicates the request carried no identity.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidCredentials indicates the presented identity could not be verified.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

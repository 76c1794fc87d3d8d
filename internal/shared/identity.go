package shared

// Identity is the caller asserted by the authentication layer.
type Identity struct {
	Email   string `validate:"required,email"`
	Subject string
	// Source names the mechanism that verified the caller.
	Source string
}

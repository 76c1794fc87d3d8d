package auth

// Mode selects how the caller identity is established.
type Mode string

const (
	// ModeIDToken verifies a Google-signed ID token sent as a bearer token.
	ModeIDToken Mode = "idtoken"
	// ModeIAP verifies the assertion added by Identity-Aware Proxy.
	ModeIAP Mode = "iap"
	// ModeHeader trusts an email header set by a fronting proxy. Development only.
	ModeHeader Mode = "header"
)

// Header names used by the supported modes.
const (
	HeaderAuthorization  = "Authorization"
	HeaderIAPAssertion   = "X-Goog-IAP-JWT-Assertion"
	DefaultTrustedHeader = "X-Goog-Authenticated-User-Email"
)

// Config configures the authenticator.
type Config struct {
	Mode Mode
	// Audience is the expected token audience: the OAuth client ID for
	// idtoken mode, the IAP backend audience for iap mode.
	Audience      string
	TrustedHeader string
}

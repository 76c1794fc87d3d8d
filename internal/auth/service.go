package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"google.golang.org/api/idtoken"

	"github.com/cepadmin/cepadmin/internal/shared"
)

// ErrUnsupportedMode is returned for an unknown authentication mode.
var ErrUnsupportedMode = errors.New("auth: unsupported mode")

// TokenValidator verifies a Google-signed token for the given audience.
type TokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// Service establishes the caller identity for incoming requests.
type Service struct {
	cfg           Config
	validateToken TokenValidator
	validator     *validator.Validate
}

// NewService validates cfg and constructs a Service.
func NewService(cfg Config) (*Service, error) {
	switch cfg.Mode {
	case ModeIDToken, ModeIAP:
		if cfg.Audience == "" {
			return nil, fmt.Errorf("auth: audience is required for %s mode", cfg.Mode)
		}
	case ModeHeader:
		if cfg.TrustedHeader == "" {
			cfg.TrustedHeader = DefaultTrustedHeader
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, cfg.Mode)
	}
	return &Service{cfg: cfg, validateToken: idtoken.Validate, validator: validator.New()}, nil
}

// WithTokenValidator replaces the token verifier.
func (s *Service) WithTokenValidator(v TokenValidator) *Service {
	s.validateToken = v
	return s
}

// Authenticate resolves the caller of r. It returns shared.ErrMissingCredentials
// when the request presents nothing and shared.ErrInvalidCredentials when what
// it presents cannot be verified.
func (s *Service) Authenticate(r *http.Request) (*shared.Identity, error) {
	switch s.cfg.Mode {
	case ModeHeader:
		return s.fromHeader(r)
	case ModeIAP:
		return s.fromToken(r.Context(), r.Header.Get(HeaderIAPAssertion))
	default:
		return s.fromToken(r.Context(), bearerToken(r))
	}
}

func (s *Service) fromToken(ctx context.Context, token string) (*shared.Identity, error) {
	if token == "" {
		return nil, shared.ErrMissingCredentials
	}
	payload, err := s.validateToken(ctx, token, s.cfg.Audience)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
	}
	email, _ := payload.Claims["email"].(string)
	if s.cfg.Mode == ModeIDToken {
		if verified, _ := payload.Claims["email_verified"].(bool); !verified {
			return nil, fmt.Errorf("%w: email not verified", shared.ErrInvalidCredentials)
		}
	}
	return s.identity(email, payload.Subject)
}

// fromHeader accepts both a bare email and the IAP "accounts.google.com:" prefix.
func (s *Service) fromHeader(r *http.Request) (*shared.Identity, error) {
	raw := strings.TrimSpace(r.Header.Get(s.cfg.TrustedHeader))
	if raw == "" {
		return nil, shared.ErrMissingCredentials
	}
	if i := strings.LastIndex(raw, ":"); i >= 0 {
		raw = raw[i+1:]
	}
	return s.identity(raw, "")
}

func (s *Service) identity(email, subject string) (*shared.Identity, error) {
	id := &shared.Identity{
		Email:   strings.ToLower(strings.TrimSpace(email)),
		Subject: subject,
		Source:  string(s.cfg.Mode),
	}
	if err := s.validator.Struct(id); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
	}
	return id, nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get(HeaderAuthorization))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Package auth verifies the HS256 bearer tokens presented to the insight API
// and answers per-client access questions from their claims.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingToken is returned when no bearer token was presented.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken wraps signature, issuer and expiry failures.
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Config holds signer verification parameters.
type Config struct {
	Secret string
	Issuer string
}

// Claims is the caller identity taken from a verified token.
type Claims struct {
	Subject   string
	Scopes    map[string]struct{}
	ExpiresAt time.Time
}

// HasScope reports whether the token grants scope.
func (c *Claims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Scopes[scope]
	return ok
}

// CanReadClient reports whether the caller may read clientID's notifications:
// clients read their own, coaches need ScopeRead.
func (c *Claims) CanReadClient(clientID string) bool {
	if c == nil {
		return false
	}
	return c.Subject == clientID || c.HasScope(ScopeRead)
}

// VerifierOption configures a Verifier.
type VerifierOption func(*verifierOptions)

type verifierOptions struct {
	now    func() time.Time
	leeway time.Duration
}

// WithClock overrides the time used for expiry checks.
func WithClock(now func() time.Time) VerifierOption {
	return func(o *verifierOptions) {
		o.now = now
	}
}

// WithLeeway tolerates clock skew between the issuer and this service.
func WithLeeway(d time.Duration) VerifierOption {
	return func(o *verifierOptions) {
		o.leeway = d
	}
}

// Verifier validates tokens against one secret and issuer.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier builds a Verifier. Tokens must be HS256, carry the configured
// issuer, a subject and an expiry.
func NewVerifier(cfg Config, opts ...VerifierOption) *Verifier {
	o := verifierOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Verifier{
		secret: []byte(cfg.Secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(o.leeway),
			jwt.WithTimeFunc(o.now),
		),
	}
}

// Verify checks raw and returns its claims.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingToken
	}

	var registered tokenClaims
	if _, err := v.parser.ParseWithClaims(raw, &registered, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if registered.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrInvalidToken)
	}

	return &Claims{
		Subject:   registered.Subject,
		Scopes:    registered.scopeSet(),
		ExpiresAt: registered.ExpiresAt.Time,
	}, nil
}

// tokenClaims accepts scopes either as a "scopes" array or as an OAuth style
// space separated "scope" string.
type tokenClaims struct {
	jwt.RegisteredClaims
	ScopeList []string `json:"scopes,omitempty"`
	Scope     string   `json:"scope,omitempty"`
}

func (t tokenClaims) scopeSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.ScopeList))
	for _, s := range append(t.ScopeList, strings.Fields(t.Scope)...) {
		if s = strings.TrimSpace(s); s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

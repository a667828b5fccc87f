// Package auth resolves the bearer credential attached to every warehouse
// request. Three sources are supported, in precedence order: an explicit
// per-request override (forwarded from the X-Snowflake-Token header), a
// short-lived keypair JWT signed from a configured private key, and a static
// token from configuration.
package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Token type hints sent alongside the Authorization header.
const (
	TokenTypeOAuth      = "OAUTH"
	TokenTypeKeypairJWT = "KEYPAIR_JWT"
)

// MethodKeypairJWT selects keypair signing; every other method resolves the
// static configured token.
const MethodKeypairJWT = "snowflake_jwt"

// Credential is a resolved bearer token ready to attach to a request.
type Credential struct {
	Token string
	Type  string
}

// Options configures a Provider.
type Options struct {
	// Method is the configured authenticator name.
	Method string

	// Token is the static bearer token (non-JWT methods).
	Token string

	// Account and User form the JWT principal.
	Account string
	User    string

	// PrivateKeyFile is the PEM private key path (JWT method).
	PrivateKeyFile string

	// PrivateKeyPassphrase decrypts an encrypted key, when set.
	PrivateKeyPassphrase string

	// Lifetime is how long a signed token is valid from issuance.
	Lifetime time.Duration
}

// DefaultTokenLifetime is used when Options.Lifetime is zero.
const DefaultTokenLifetime = time.Hour

// Provider resolves credentials and caches the last-issued signed token per
// (principal, key file) pair. Safe for concurrent use.
type Provider struct {
	opts   Options
	logger zerolog.Logger

	mu     sync.Mutex
	issued map[string]string

	now func() time.Time
}

// NewProvider creates a credential provider.
func NewProvider(opts Options, logger zerolog.Logger) *Provider {
	if opts.Lifetime <= 0 {
		opts.Lifetime = DefaultTokenLifetime
	}
	return &Provider{
		opts:   opts,
		logger: logger.With().Str("component", "auth").Logger(),
		issued: make(map[string]string),
		now:    time.Now,
	}
}

// Resolve produces the credential for one request. A non-empty override is
// used verbatim and bypasses all configuration.
func (p *Provider) Resolve(ctx context.Context, override string) (Credential, error) {
	if override != "" {
		return Credential{Token: override, Type: TokenTypeOAuth}, nil
	}

	if p.opts.Method == MethodKeypairJWT {
		return p.signedToken()
	}

	if p.opts.Token == "" {
		Failures.WithLabelValues("missing_token").Inc()
		return Credential{}, &AuthenticationError{Reason: "token unavailable"}
	}
	return Credential{Token: p.opts.Token, Type: TokenTypeOAuth}, nil
}

// signedToken returns the cached JWT when it has more than the expiry buffer
// left, otherwise signs and caches a fresh one.
func (p *Provider) signedToken() (Credential, error) {
	principal := p.principal()

	p.mu.Lock()
	defer p.mu.Unlock()

	cacheKey := principal + ":" + p.opts.PrivateKeyFile
	if token, ok := p.issued[cacheKey]; ok && !isExpired(token, p.now()) {
		TokenCacheHits.Inc()
		return Credential{Token: token, Type: TokenTypeKeypairJWT}, nil
	}

	key, err := LoadPrivateKey(p.opts.PrivateKeyFile, p.opts.PrivateKeyPassphrase)
	if err != nil {
		Failures.WithLabelValues("key_load").Inc()
		return Credential{}, &AuthenticationError{Reason: "private key load failed", Err: err}
	}

	token, err := signToken(key, principal, p.now(), p.opts.Lifetime)
	if err != nil {
		Failures.WithLabelValues("sign").Inc()
		return Credential{}, &AuthenticationError{Reason: "token signing failed", Err: err}
	}

	p.issued[cacheKey] = token
	TokensIssued.Inc()
	p.logger.Debug().
		Str("principal", principal).
		Dur("lifetime", p.opts.Lifetime).
		Msg("issued keypair token")

	return Credential{Token: token, Type: TokenTypeKeypairJWT}, nil
}

// Clear drops all cached signed tokens.
func (p *Provider) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issued = make(map[string]string)
}

func (p *Provider) principal() string {
	return strings.ToUpper(p.opts.Account + "." + p.opts.User)
}

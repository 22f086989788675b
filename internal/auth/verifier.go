// Package auth verifies access tokens, reconciles the token subject with a
// local user record and decides what the caller may do.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/errors"
)

// Errors surfaced by token verification.
var (
	ErrMissingToken   = errors.ErrUnauthorized.WithMessage("Missing Auth0 user ID")
	ErrInvalidToken   = errors.ErrUnauthorized.WithMessage("Invalid or expired token")
	ErrMissingSubject = errors.ErrUnauthorized.WithMessage("Unauthorized: missing sub")
)

// TokenVerifier turns a bearer token into a verified identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Identity, error)
}

// Claims are the token claims the catalog reads.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks RS256 tokens issued by the identity provider for the
// configured audience.
type Verifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
}

// NewVerifier creates a verifier resolving signing keys through keyfunc.
func NewVerifier(keyfunc jwt.Keyfunc, issuer, audience string) *Verifier {
	return &Verifier{
		keyfunc: keyfunc,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithAudience(audience),
			jwt.WithExpirationRequired(),
		),
	}
}

// NewJWKSVerifier creates a verifier backed by the provider's published key
// set. Keys are cached and refreshed in the background until ctx is done.
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer, audience string) (*Verifier, error) {
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("load jwks from %s: %w", jwksURL, err)
	}
	return NewVerifier(jwks.Keyfunc, issuer, audience), nil
}

// Verify validates the token and extracts the caller's identity. A valid
// token without a subject is rejected.
func (v *Verifier) Verify(_ context.Context, tokenString string) (*domain.Identity, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, v.keyfunc)
	if err != nil {
		return nil, ErrInvalidToken.WithError(err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return nil, ErrMissingSubject
	}

	return &domain.Identity{
		Subject: subject,
		Email:   strings.TrimSpace(claims.Email),
		Name:    strings.TrimSpace(claims.Name),
	}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

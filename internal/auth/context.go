package auth

import (
	"context"

	"github.com/belovedzguard/beloved-api/internal/domain"
)

// RequestContext carries the caller's verified identity and resolved user
// through a request. Anonymous callers have neither.
type RequestContext struct {
	Identity *domain.Identity
	User     *domain.User
}

// Anonymous is the context of an unauthenticated request.
var Anonymous = &RequestContext{}

// Subject returns the caller's subject identifier, or "" when anonymous.
func (rc *RequestContext) Subject() string {
	if rc == nil || rc.Identity == nil {
		return ""
	}
	return rc.Identity.Subject
}

// Authenticated reports whether the request carried a verified identity.
func (rc *RequestContext) Authenticated() bool {
	return rc.Subject() != ""
}

type requestContextKey struct{}

// WithRequestContext stores rc in ctx.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// FromContext returns the request context stored in ctx, or Anonymous.
func FromContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(requestContextKey{}).(*RequestContext); ok && rc != nil {
		return rc
	}
	return Anonymous
}

package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/belovedzguard/beloved-api/internal/auth"
	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/httputil"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

// Keys the auth middleware sets on the gin context for logging.
const (
	SubjectKey = "subject"
	UserIDKey  = "user_id"
)

// UserResolver maps a verified identity to the local user record.
type UserResolver interface {
	Reconcile(ctx context.Context, id *domain.Identity) (*domain.User, error)
}

// Authenticator verifies bearer tokens and attaches the caller to the
// request context.
type Authenticator struct {
	verifier auth.TokenVerifier
	users    UserResolver
	log      logger.Logger
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(verifier auth.TokenVerifier, users UserResolver, log logger.Logger) *Authenticator {
	return &Authenticator{verifier: verifier, users: users, log: log}
}

// Required rejects requests without a valid token and resolves the local
// user record of the caller, creating it on first login.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			httputil.ErrorResponse(c, auth.ErrMissingToken)
			return
		}

		id, err := a.verify(c, token)
		if err != nil {
			httputil.ErrorResponse(c, err)
			return
		}

		user, err := a.users.Reconcile(c.Request.Context(), id)
		if err != nil {
			a.log.WithContext(c.Request.Context()).Error("user reconciliation failed",
				logger.String("subject", id.Subject),
				logger.Error(err),
			)
			httputil.ErrorResponse(c, err)
			return
		}

		a.attach(c, &auth.RequestContext{Identity: id, User: user})
		c.Next()
	}
}

// Optional lets anonymous requests through and honours a valid token. A
// token that is present but invalid is still rejected. No user record is
// resolved.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			a.attach(c, auth.Anonymous)
			c.Next()
			return
		}

		token, ok := auth.BearerToken(header)
		if !ok {
			httputil.ErrorResponse(c, auth.ErrInvalidToken)
			return
		}
		id, err := a.verify(c, token)
		if err != nil {
			httputil.ErrorResponse(c, err)
			return
		}

		a.attach(c, &auth.RequestContext{Identity: id})
		c.Next()
	}
}

func (a *Authenticator) verify(c *gin.Context, token string) (*domain.Identity, error) {
	id, err := a.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		a.log.WithContext(c.Request.Context()).Warn("JWT validation failed",
			logger.String("ip", c.ClientIP()),
			logger.Error(err),
		)
		return nil, err
	}
	return id, nil
}

func (a *Authenticator) attach(c *gin.Context, rc *auth.RequestContext) {
	ctx := auth.WithRequestContext(c.Request.Context(), rc)
	if rc.Authenticated() {
		c.Set(SubjectKey, rc.Subject())
	}
	if rc.User != nil {
		c.Set(UserIDKey, rc.User.ID)
		ctx = logger.WithUserID(ctx, rc.User.ID)
	}
	c.Request = c.Request.WithContext(ctx)
}

// RequestContext returns the caller attached by the auth middleware, or
// auth.Anonymous.
func RequestContext(c *gin.Context) *auth.RequestContext {
	return auth.FromContext(c.Request.Context())
}

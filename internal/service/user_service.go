package service

import (
	"context"

	"github.com/belovedzguard/beloved-api/internal/auth"
	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

// UserService manages the caller's own profile. There is no way to act on
// another user.
type UserService struct {
	users  UserStore
	policy *auth.Policy
	log    logger.Logger
}

// NewUserService creates a user service.
func NewUserService(users UserStore, policy *auth.Policy, log logger.Logger) *UserService {
	return &UserService{users: users, policy: policy, log: log}
}

// Me returns the caller's profile.
func (s *UserService) Me(ctx context.Context, rc *auth.RequestContext) (*domain.User, error) {
	if err := s.policy.Authorize(rc, auth.ResourceProfile, auth.OpReadOne, ""); err != nil {
		return nil, err
	}
	return s.self(ctx, rc)
}

// Update changes the caller's display name or email.
func (s *UserService) Update(ctx context.Context, rc *auth.RequestContext, in *domain.UserInput) (*domain.User, error) {
	if err := s.policy.Authorize(rc, auth.ResourceProfile, auth.OpUpdate, ""); err != nil {
		return nil, err
	}
	u, err := s.self(ctx, rc)
	if err != nil {
		return nil, err
	}
	if err := in.ValidateUpdate(u); err != nil {
		return nil, err
	}

	in.Apply(u)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes the caller's account and every playlist it owns. It
// returns the deleted user's id.
func (s *UserService) Delete(ctx context.Context, rc *auth.RequestContext) (string, error) {
	if err := s.policy.Authorize(rc, auth.ResourceProfile, auth.OpDelete, ""); err != nil {
		return "", err
	}
	u, err := s.self(ctx, rc)
	if err != nil {
		return "", err
	}
	if err := s.users.DeleteWithPlaylists(ctx, u); err != nil {
		return "", err
	}

	s.log.Info("user deleted",
		logger.String("user_id", u.ID),
		logger.String("subject", u.Auth0ID),
	)
	return u.ID, nil
}

// self reloads the caller's record so the response reflects the store.
func (s *UserService) self(ctx context.Context, rc *auth.RequestContext) (*domain.User, error) {
	if rc.User != nil && rc.User.ID != "" {
		return s.users.FindByID(ctx, rc.User.ID)
	}
	return s.users.FindBySubject(ctx, rc.Subject())
}

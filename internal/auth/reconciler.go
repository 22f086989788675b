package auth

import (
	"context"
	"strings"

	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/errors"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

// DefaultDisplayName is given to users whose token carries no name.
const DefaultDisplayName = "New User"

// ErrResolveUser is returned when no user record could be resolved.
var ErrResolveUser = errors.ErrInternal.WithMessage("Failed to resolve user")

// UserStore is the persistence the reconciler needs.
type UserStore interface {
	// FindBySubject returns domain.ErrUserNotFound when no record matches.
	FindBySubject(ctx context.Context, subject string) (*domain.User, error)
	// FindByEmail returns domain.ErrUserNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// LinkSubject sets the subject on a user that has none and reports
	// whether a row changed.
	LinkSubject(ctx context.Context, userID, subject string) (bool, error)
	// Create inserts u and fills its generated fields. A duplicate subject
	// yields domain.ErrSubjectTaken, a duplicate email domain.ErrEmailTaken.
	Create(ctx context.Context, u *domain.User) error
}

// Reconciler maps a verified identity to exactly one local user record.
type Reconciler struct {
	store UserStore
	log   logger.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(store UserStore, log logger.Logger) *Reconciler {
	return &Reconciler{store: store, log: log}
}

// Reconcile returns the user owning id.Subject, creating it on first sight.
// Existing records are returned untouched. Concurrent first logins for one
// subject converge on the record that won the insert.
func (r *Reconciler) Reconcile(ctx context.Context, id *domain.Identity) (*domain.User, error) {
	if id == nil || strings.TrimSpace(id.Subject) == "" {
		return nil, ErrMissingSubject
	}
	subject := id.Subject

	u, err := r.store.FindBySubject(ctx, subject)
	if err == nil {
		return u, nil
	}
	if !errors.IsError(err, errors.ErrNotFound) {
		return nil, ErrResolveUser.WithError(err)
	}

	email := strings.ToLower(strings.TrimSpace(id.Email))
	if email != "" {
		linked, err := r.linkByEmail(ctx, email, subject)
		if err != nil {
			return nil, err
		}
		if linked != nil {
			return linked, nil
		}
	}

	return r.create(ctx, id, email)
}

// linkByEmail attaches subject to a subject-less record holding email.
// It returns nil when there is nothing to link.
func (r *Reconciler) linkByEmail(ctx context.Context, email, subject string) (*domain.User, error) {
	existing, err := r.store.FindByEmail(ctx, email)
	if errors.IsError(err, errors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ErrResolveUser.WithError(err)
	}
	if existing.Auth0ID != "" {
		return nil, nil
	}

	ok, err := r.store.LinkSubject(ctx, existing.ID, subject)
	if err != nil {
		if errors.IsError(err, domain.ErrSubjectTaken) {
			return r.refetch(ctx, subject)
		}
		return nil, ErrResolveUser.WithError(err)
	}
	if !ok {
		// Linked concurrently; the record now belongs to someone.
		return r.refetch(ctx, subject)
	}

	existing.Auth0ID = subject
	r.log.Info("linked legacy user to subject",
		logger.String("user_id", existing.ID),
		logger.String("subject", subject),
	)
	return existing, nil
}

func (r *Reconciler) create(ctx context.Context, id *domain.Identity, email string) (*domain.User, error) {
	name := strings.TrimSpace(id.Name)
	if name == "" {
		name = DefaultDisplayName
	}
	fallback := FallbackEmail(id.Subject)
	if email == "" {
		email = fallback
	}

	u := &domain.User{
		Auth0ID:       id.Subject,
		Email:         email,
		DisplayName:   name,
		FavoriteSongs: []string{},
	}

	for {
		err := r.store.Create(ctx, u)
		switch {
		case err == nil:
			r.log.Info("created user for subject",
				logger.String("user_id", u.ID),
				logger.String("subject", id.Subject),
			)
			return u, nil

		case errors.IsError(err, domain.ErrSubjectTaken):
			r.log.Debug("user creation lost race, refetching", logger.String("subject", id.Subject))
			return r.refetch(ctx, id.Subject)

		case errors.IsError(err, domain.ErrEmailTaken):
			// The winner of a race may hold the email as well as the subject.
			if existing, ferr := r.store.FindBySubject(ctx, id.Subject); ferr == nil {
				return existing, nil
			}
			if u.Email == fallback {
				return nil, ErrResolveUser.WithError(err)
			}
			u.Email = fallback

		default:
			return nil, ErrResolveUser.WithError(err)
		}
	}
}

func (r *Reconciler) refetch(ctx context.Context, subject string) (*domain.User, error) {
	u, err := r.store.FindBySubject(ctx, subject)
	if err != nil {
		return nil, ErrResolveUser.WithError(err)
	}
	return u, nil
}

// FallbackEmail is the placeholder address of a user whose token has no
// usable email.
func FallbackEmail(subject string) string {
	return strings.Replace(subject, "|", "_", 1) + "@auth0.local"
}

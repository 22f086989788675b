package auth

import (
	"github.com/belovedzguard/beloved-api/pkg/errors"
)

// Resource is a kind of protected object.
type Resource int

const (
	ResourceSong Resource = iota
	ResourceAlbum
	ResourcePlaylist
	ResourceProfile
	ResourceUpload
)

// Operation is what the caller wants to do with a resource.
type Operation int

const (
	OpReadList Operation = iota
	OpReadOne
	OpCreate
	OpUpdate
	OpDelete
)

func (op Operation) mutates() bool {
	return op == OpCreate || op == OpUpdate || op == OpDelete
}

// Errors produced by the policy.
var (
	ErrUnauthenticated = errors.ErrUnauthorized.WithMessage("Missing Auth0 user ID")
	ErrAdminRequired   = errors.ErrForbidden.WithMessage("Admin access required")
	ErrNotOwner        = errors.ErrForbidden.WithMessage("Not authorized")
)

// AdminChecker decides whether a subject has admin rights.
type AdminChecker interface {
	IsAdmin(subject string) bool
}

// AdminSet is an AdminChecker over a fixed set of subjects, compared exactly.
type AdminSet map[string]struct{}

// NewAdminSet creates an AdminSet. Blank subjects are ignored.
func NewAdminSet(subjects ...string) AdminSet {
	set := make(AdminSet, len(subjects))
	for _, s := range subjects {
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

// IsAdmin implements AdminChecker.
func (s AdminSet) IsAdmin(subject string) bool {
	if subject == "" {
		return false
	}
	_, ok := s[subject]
	return ok
}

// Policy is the access-control decision function shared by every resource.
// It has no side effects.
type Policy struct {
	admins AdminChecker
}

// NewPolicy creates a policy using admins for admin membership.
func NewPolicy(admins AdminChecker) *Policy {
	return &Policy{admins: admins}
}

// IsAdmin reports whether the caller is an authenticated admin.
func (p *Policy) IsAdmin(rc *RequestContext) bool {
	return rc.Authenticated() && p.admins.IsAdmin(rc.Subject())
}

// DraftsVisible reports whether draft songs and albums may be shown to rc.
func (p *Policy) DraftsVisible(rc *RequestContext) bool {
	return p.IsAdmin(rc)
}

// Authorize decides whether rc may perform op on a resource. owner is the
// stored owner of owner-scoped resources and ignored otherwise. A nil error
// means allowed; draft filtering of reads is handled by DraftsVisible and
// CheckDraft.
func (p *Policy) Authorize(rc *RequestContext, res Resource, op Operation, owner string) error {
	switch res {
	case ResourceSong, ResourceAlbum, ResourceUpload:
		if res == ResourceUpload || op.mutates() {
			return p.requireAdmin(rc)
		}
		return nil

	case ResourcePlaylist:
		if !rc.Authenticated() {
			return ErrUnauthenticated
		}
		// Creation and listing are scoped to the caller by construction.
		if op == OpCreate || op == OpReadList {
			return nil
		}
		if owner != rc.Subject() {
			return ErrNotOwner
		}
		return nil

	case ResourceProfile:
		if !rc.Authenticated() {
			return ErrUnauthenticated
		}
		return nil
	}

	return errors.ErrForbidden
}

// CheckDraft hides a draft from callers that may not see drafts. notFound
// is the error an absent record would produce.
func (p *Policy) CheckDraft(rc *RequestContext, isDraft bool, notFound error) error {
	if isDraft && !p.DraftsVisible(rc) {
		return notFound
	}
	return nil
}

// RequireAuthenticated fails for anonymous callers.
func (p *Policy) RequireAuthenticated(rc *RequestContext) error {
	if !rc.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func (p *Policy) requireAdmin(rc *RequestContext) error {
	if err := p.RequireAuthenticated(rc); err != nil {
		return err
	}
	if !p.admins.IsAdmin(rc.Subject()) {
		return ErrAdminRequired
	}
	return nil
}

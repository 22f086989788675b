package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/db"
	"github.com/belovedzguard/beloved-api/pkg/errors"
)

const userColumns = `id::text, COALESCE(auth0_id, ''), COALESCE(email, ''), display_name,
	COALESCE(password_hash, ''), favorite_songs, COALESCE(legacy_id, ''), created_at, updated_at`

// Unique constraint names of the users table.
const (
	constraintUserSubject = "users_auth0_id_key"
	constraintUserEmail   = "users_email_key"
)

// ErrEmailInUse is returned when a profile update takes another user's email.
var ErrEmailInUse = errors.ErrConflict.WithMessage("Email already in use")

// UserRepository stores user records.
type UserRepository struct {
	db db.DBTX
	tx db.Transaction
}

// NewUserRepository creates a user repository on pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: pool, tx: db.NewTransaction(pool)}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Auth0ID,
		&u.Email,
		&u.DisplayName,
		&u.PasswordHash,
		&u.FavoriteSongs,
		&u.LegacyID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.FavoriteSongs = nonNil(u.FavoriteSongs)
	return &u, nil
}

// FindByID returns the user with the given id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if !validID(id) {
		return nil, domain.ErrUserNotFound
	}
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id))
	if err != nil {
		return nil, dbError(err, domain.ErrUserNotFound)
	}
	return u, nil
}

// FindBySubject returns the user linked to subject.
func (r *UserRepository) FindBySubject(ctx context.Context, subject string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE auth0_id = $1`, subject))
	if err != nil {
		return nil, dbError(err, domain.ErrUserNotFound)
	}
	return u, nil
}

// FindByEmail returns the user holding email. Emails are stored lower-cased.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email))
	if err != nil {
		return nil, dbError(err, domain.ErrUserNotFound)
	}
	return u, nil
}

// LinkSubject sets subject on a user that has none. It reports false when
// the user was linked in the meantime.
func (r *UserRepository) LinkSubject(ctx context.Context, userID, subject string) (bool, error) {
	if !validID(userID) {
		return false, nil
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET auth0_id = $2, updated_at = now() WHERE id = $1::uuid AND auth0_id IS NULL`,
		userID, subject,
	)
	if err != nil {
		if db.IsUniqueViolation(err, constraintUserSubject) {
			return false, domain.ErrSubjectTaken
		}
		return false, errors.ErrDatabaseError.WithError(err)
	}
	return tag.RowsAffected() == 1, nil
}

// Create inserts u and fills its id and timestamps.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (auth0_id, email, display_name, favorite_songs)
		VALUES (NULLIF($1, ''), NULLIF(lower($2), ''), $3, $4)
		RETURNING id::text, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		u.Auth0ID,
		u.Email,
		u.DisplayName,
		nonNil(u.FavoriteSongs),
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)

	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err, constraintUserSubject):
		return domain.ErrSubjectTaken.WithError(err)
	case db.IsUniqueViolation(err, constraintUserEmail):
		return domain.ErrEmailTaken.WithError(err)
	default:
		return errors.ErrDatabaseError.WithError(err)
	}
}

// Update saves the editable profile fields of u.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	if !validID(u.ID) {
		return domain.ErrUserNotFound
	}
	query := `
		UPDATE users SET email = NULLIF(lower($2), ''), display_name = $3, updated_at = now()
		WHERE id = $1::uuid
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, u.ID, u.Email, u.DisplayName).Scan(&u.UpdatedAt)
	if db.IsUniqueViolation(err, constraintUserEmail) {
		return ErrEmailInUse.WithError(err)
	}
	return dbError(err, domain.ErrUserNotFound)
}

// DeleteWithPlaylists removes the user and every playlist owned by its
// subject in one transaction.
func (r *UserRepository) DeleteWithPlaylists(ctx context.Context, u *domain.User) error {
	if !validID(u.ID) {
		return domain.ErrUserNotFound
	}
	return r.tx.ExecTx(ctx, func(tx pgx.Tx) error {
		if u.Auth0ID != "" {
			if _, err := tx.Exec(ctx, `DELETE FROM playlists WHERE owner = $1`, u.Auth0ID); err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1::uuid`, u.ID)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
}

// InsertLegacy stores a user imported from the legacy store. It reports
// false when the legacy record was imported before.
func (r *UserRepository) InsertLegacy(ctx context.Context, u *domain.User) (bool, error) {
	query := `
		INSERT INTO users (auth0_id, email, display_name, password_hash, favorite_songs, legacy_id, created_at, updated_at)
		VALUES (NULLIF($1, ''), NULLIF(lower($2), ''), $3, NULLIF($4, ''), $5, $6, $7, $8)
		ON CONFLICT (legacy_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		u.Auth0ID,
		u.Email,
		u.DisplayName,
		u.PasswordHash,
		nonNil(u.FavoriteSongs),
		u.LegacyID,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err, constraintUserSubject, constraintUserEmail) {
			return false, ErrEmailInUse.WithError(err)
		}
		return false, errors.ErrDatabaseError.WithError(err)
	}
	return tag.RowsAffected() == 1, nil
}

// SubjectsByLegacyID maps legacy user ids to subject identifiers for every
// imported user that has one.
func (r *UserRepository) SubjectsByLegacyID(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Query(ctx, `SELECT legacy_id, auth0_id FROM users WHERE legacy_id IS NOT NULL AND auth0_id IS NOT NULL`)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var legacyID, subject string
		if err := rows.Scan(&legacyID, &subject); err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		out[legacyID] = subject
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return out, nil
}

package domain

import (
	"net/http"

	"github.com/belovedzguard/beloved-api/pkg/errors"
)

// Uniqueness failures reported by user stores. They are resolved inside
// identity reconciliation and never reach a client.
var (
	ErrSubjectTaken = errors.New("SUBJECT_TAKEN", "Subject already linked to a user", http.StatusConflict)
	ErrEmailTaken   = errors.New("EMAIL_TAKEN", "Email already in use", http.StatusConflict)
)

// Resource-specific not found errors.
var (
	ErrSongNotFound     = errors.ErrNotFound.WithMessage("Song not found")
	ErrAlbumNotFound    = errors.ErrNotFound.WithMessage("Album not found")
	ErrPlaylistNotFound = errors.ErrNotFound.WithMessage("Playlist not found")
	ErrUserNotFound     = errors.ErrNotFound.WithMessage("User not found")
)

package domain

import (
	"strings"

	"github.com/belovedzguard/beloved-api/pkg/errors"
)

// SongInput is the body of song create and update requests. Nil fields are
// left untouched on update.
type SongInput struct {
	Title                    *string    `json:"title"`
	Genre                    *string    `json:"genre"`
	MP3                      *string    `json:"mp3"`
	SongThumbnail            *string    `json:"songThumbnail"`
	AnimatedSongThumbnail    *string    `json:"animatedSongThumbnail"`
	VideoThumbnail           *string    `json:"videoThumbnail"`
	Lyrics                   *string    `json:"lyrics"`
	YouTube                  *string    `json:"youTube"`
	Bandcamp                 *string    `json:"bandcamp"`
	MP3Key                   *string    `json:"mp3Key"`
	SongThumbnailKey         *string    `json:"songThumbnailKey"`
	AnimatedSongThumbnailKey *string    `json:"animatedSongThumbnailKey"`
	VideoThumbnailKey        *string    `json:"videoThumbnailKey"`
	LyricsKey                *string    `json:"lyricsKey"`
	Description              *string    `json:"description"`
	Verse                    *string    `json:"verse"`
	IsDraft                  *DraftFlag `json:"isDraft"`
}

// ValidateCreate checks the fields a new song needs.
func (in *SongInput) ValidateCreate() error {
	if blank(in.Title) || blank(in.Genre) {
		return errors.ErrMissingField.WithMessage("Title and genre are required")
	}
	return nil
}

// Apply copies the set fields onto s.
func (in *SongInput) Apply(s *Song) {
	set(&s.Title, in.Title)
	set(&s.Genre, in.Genre)
	set(&s.MP3, in.MP3)
	set(&s.SongThumbnail, in.SongThumbnail)
	set(&s.AnimatedSongThumbnail, in.AnimatedSongThumbnail)
	set(&s.VideoThumbnail, in.VideoThumbnail)
	set(&s.Lyrics, in.Lyrics)
	set(&s.YouTube, in.YouTube)
	set(&s.Bandcamp, in.Bandcamp)
	set(&s.MP3Key, in.MP3Key)
	set(&s.SongThumbnailKey, in.SongThumbnailKey)
	set(&s.AnimatedSongThumbnailKey, in.AnimatedSongThumbnailKey)
	set(&s.VideoThumbnailKey, in.VideoThumbnailKey)
	set(&s.LyricsKey, in.LyricsKey)
	set(&s.Description, in.Description)
	set(&s.Verse, in.Verse)
	if in.IsDraft != nil {
		s.IsDraft = in.IsDraft.Bool()
	}
}

// AlbumInput is the body of album create and update requests.
type AlbumInput struct {
	Title *string `json:"title"`
	// Name is the title field of older clients.
	Name           *string    `json:"name"`
	Description    *string    `json:"description"`
	AlbumThumbnail *string    `json:"albumThumbnail"`
	Songs          []string   `json:"songs"`
	IsDraft        *DraftFlag `json:"isDraft"`
}

func (in *AlbumInput) title() *string {
	if in.Title != nil {
		return in.Title
	}
	return in.Name
}

// ValidateCreate checks the fields a new album needs.
func (in *AlbumInput) ValidateCreate() error {
	if blank(in.title()) || in.Songs == nil {
		return errors.ErrMissingField.WithMessage("Title and songs are required")
	}
	if len(in.Songs) == 0 {
		return errors.ErrValidationFailed.WithMessage("Songs must be a non-empty array")
	}
	return nil
}

// Apply copies the set fields onto a.
func (in *AlbumInput) Apply(a *Album) {
	set(&a.Title, in.title())
	set(&a.Description, in.Description)
	set(&a.AlbumThumbnail, in.AlbumThumbnail)
	if in.Songs != nil {
		a.SongIDs = append([]string{}, in.Songs...)
	}
	if in.IsDraft != nil {
		a.IsDraft = in.IsDraft.Bool()
	}
}

// PlaylistInput is the body of playlist create and update requests.
type PlaylistInput struct {
	Name        *string  `json:"name"`
	Owner       *string  `json:"owner"`
	Description *string  `json:"description"`
	CoverImage  *string  `json:"coverImage"`
	Songs       []string `json:"songs"`
}

// ValidateCreate checks the fields a new playlist needs.
func (in *PlaylistInput) ValidateCreate() error {
	if blank(in.Name) || in.Songs == nil {
		return errors.ErrMissingField.WithMessage("Playlist name and songs are required")
	}
	return nil
}

// ValidateUpdate rejects an owner change and a blank name.
func (in *PlaylistInput) ValidateUpdate(current *Playlist) error {
	if in.Owner != nil && *in.Owner != current.Owner {
		return errors.ErrValidationFailed.WithMessage("Playlist owner cannot be changed")
	}
	if in.Name != nil && blank(in.Name) {
		return errors.ErrValidationFailed.WithMessage("Playlist name cannot be empty")
	}
	return nil
}

// Apply copies the set fields onto p. Owner is never copied.
func (in *PlaylistInput) Apply(p *Playlist) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	set(&p.Description, in.Description)
	set(&p.CoverImage, in.CoverImage)
	if in.Songs != nil {
		p.SongIDs = append([]string{}, in.Songs...)
	}
}

// AddSongInput is the body of the add-song request.
type AddSongInput struct {
	SongID string `json:"songId"`
}

// UserInput is the body of the profile update request. ID and Auth0ID are
// only read to reject changes.
type UserInput struct {
	ID          *string `json:"_id"`
	Auth0ID     *string `json:"auth0Id"`
	Email       *string `json:"email"`
	DisplayName *string `json:"displayName"`
}

// ValidateUpdate rejects changes to identity fields.
func (in *UserInput) ValidateUpdate(current *User) error {
	if in.ID != nil && *in.ID != current.ID {
		return errors.ErrValidationFailed.WithMessage("User id cannot be changed")
	}
	if in.Auth0ID != nil && *in.Auth0ID != current.Auth0ID {
		return errors.ErrValidationFailed.WithMessage("auth0Id cannot be changed")
	}
	return nil
}

// Apply copies the editable fields onto u. Email is stored lower-cased.
func (in *UserInput) Apply(u *User) {
	if in.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	set(&u.DisplayName, in.DisplayName)
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func blank(v *string) bool {
	return v == nil || strings.TrimSpace(*v) == ""
}

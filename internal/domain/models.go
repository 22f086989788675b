// Package domain holds the catalog entities and the request payloads that
// create or change them.
package domain

import "time"

// Identity is what a verified access token says about the caller.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// User is the local record for an external account.
type User struct {
	ID            string    `json:"_id"`
	Auth0ID       string    `json:"auth0Id,omitempty"`
	Email         string    `json:"email,omitempty"`
	DisplayName   string    `json:"displayName,omitempty"`
	FavoriteSongs []string  `json:"favorite_songs"`
	PasswordHash  string    `json:"-"`
	LegacyID      string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Song is a catalog track and the URLs of its media.
type Song struct {
	ID                       string    `json:"_id"`
	Title                    string    `json:"title"`
	Genre                    string    `json:"genre"`
	MP3                      string    `json:"mp3,omitempty"`
	SongThumbnail            string    `json:"songThumbnail,omitempty"`
	AnimatedSongThumbnail    string    `json:"animatedSongThumbnail,omitempty"`
	VideoThumbnail           string    `json:"videoThumbnail,omitempty"`
	Lyrics                   string    `json:"lyrics,omitempty"`
	YouTube                  string    `json:"youTube,omitempty"`
	Bandcamp                 string    `json:"bandcamp,omitempty"`
	MP3Key                   string    `json:"mp3Key,omitempty"`
	SongThumbnailKey         string    `json:"songThumbnailKey,omitempty"`
	AnimatedSongThumbnailKey string    `json:"animatedSongThumbnailKey,omitempty"`
	VideoThumbnailKey        string    `json:"videoThumbnailKey,omitempty"`
	LyricsKey                string    `json:"lyricsKey,omitempty"`
	Description              string    `json:"description,omitempty"`
	Verse                    string    `json:"verse,omitempty"`
	IsDraft                  bool      `json:"isDraft"`
	LegacyID                 string    `json:"-"`
	CreatedAt                time.Time `json:"createdAt"`
	UpdatedAt                time.Time `json:"updatedAt"`
}

// AssetRefs returns the URL and key attributes holding the asset stored in
// field ("mp3", "songThumbnail", ...). Both are nil for an unknown field.
func (s *Song) AssetRefs(field string) (url, key *string) {
	switch field {
	case "mp3":
		return &s.MP3, &s.MP3Key
	case "songThumbnail":
		return &s.SongThumbnail, &s.SongThumbnailKey
	case "animatedSongThumbnail":
		return &s.AnimatedSongThumbnail, &s.AnimatedSongThumbnailKey
	case "videoThumbnail":
		return &s.VideoThumbnail, &s.VideoThumbnailKey
	case "lyrics":
		return &s.Lyrics, &s.LyricsKey
	}
	return nil, nil
}

// Album groups songs. SongIDs is what is stored; Songs is filled when the
// album is read.
type Album struct {
	ID             string    `json:"_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	AlbumThumbnail string    `json:"albumThumbnail,omitempty"`
	SongIDs        []string  `json:"-"`
	Songs          []Song    `json:"songs"`
	IsDraft        bool      `json:"isDraft"`
	LegacyID       string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Playlist is a user's ordered song list. Owner is the creating subject.
type Playlist struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Owner       string    `json:"owner,omitempty"`
	Description string    `json:"description,omitempty"`
	CoverImage  string    `json:"coverImage,omitempty"`
	SongIDs     []string  `json:"-"`
	Songs       []Song    `json:"songs"`
	LegacyID    string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SongFilter narrows song and album listings.
type SongFilter struct {
	IncludeDrafts bool
}

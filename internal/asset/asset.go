// Package asset derives storage keys and public URLs for catalog media.
package asset

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/belovedzguard/beloved-api/pkg/errors"
)

// Kind names a media category.
type Kind string

const (
	KindAudio             Kind = "mp3"
	KindSongThumbnail     Kind = "songThumbnail"
	KindAnimatedThumbnail Kind = "animatedThumbnail"
	KindVideoThumbnail    Kind = "videoThumbnail"
	KindLyrics            Kind = "lyrics"
)

// Spec describes where a kind of asset lives.
type Spec struct {
	Folder      string
	Extension   string
	ContentType string
	// Field is the song attribute the asset's URL is stored in.
	Field string
}

var specs = map[Kind]Spec{
	KindAudio:             {Folder: "music-files", Extension: ".mp3", ContentType: "audio/mpeg", Field: "mp3"},
	KindSongThumbnail:     {Folder: "song-thumbnails", Extension: ".jpg", ContentType: "image/jpeg", Field: "songThumbnail"},
	KindAnimatedThumbnail: {Folder: "animated-song-thumbnails", Extension: ".mp4", ContentType: "video/mp4", Field: "animatedSongThumbnail"},
	KindVideoThumbnail:    {Folder: "video-thumbnails", Extension: ".jpg", ContentType: "image/jpeg", Field: "videoThumbnail"},
	KindLyrics:            {Folder: "lyrics", Extension: ".md", ContentType: "text/markdown", Field: "lyrics"},
}

// Lookup returns the spec for k.
func Lookup(k Kind) (Spec, bool) {
	s, ok := specs[k]
	return s, ok
}

// Kinds returns every known kind in a stable order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(specs))
	for k := range specs {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := specs[k]; !ok {
		names := make([]string, 0, len(specs))
		for _, k := range Kinds() {
			names = append(names, string(k))
		}
		return "", errors.ErrUnsupportedAssetType.WithMessage(
			"Unsupported assetType %q. Supported types: %s", s, strings.Join(names, ", "))
	}
	return k, nil
}

// Location is where an uploaded asset is stored and served from.
type Location struct {
	Key         string `json:"key"`
	PublicURL   string `json:"publicUrl"`
	ContentType string `json:"contentType"`
	Field       string `json:"field"`
}

// DeriveLocation maps an asset kind and client-supplied file name to its
// storage key and public URL under baseURL.
func DeriveLocation(kind, fileName, baseURL string) (Location, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return Location{}, err
	}
	spec := specs[k]

	name, err := normalizeFileName(fileName)
	if err != nil {
		return Location{}, err
	}
	if !strings.HasSuffix(strings.ToLower(name), spec.Extension) {
		name += spec.Extension
	}

	key := spec.Folder + "/" + name
	return Location{
		Key:         key,
		PublicURL:   JoinURL(baseURL, key),
		ContentType: spec.ContentType,
		Field:       spec.Field,
	}, nil
}

func normalizeFileName(fileName string) (string, error) {
	if strings.ContainsAny(fileName, `/\`) {
		return "", errors.ErrInvalidFileName.WithMessage("fileName cannot contain path separators")
	}
	name := strings.TrimSpace(fileName)
	if name == "" {
		return "", errors.ErrInvalidFileName.WithMessage("fileName must be a non-empty string")
	}
	return name, nil
}

// CanonicalURL is the URL an asset of kind k for a song titled title is
// expected at under mediaBase.
func CanonicalURL(mediaBase string, k Kind, title string) string {
	spec := specs[k]
	return JoinURL(mediaBase, spec.Folder+"/"+DeriveSlug(title)+spec.Extension)
}

// JoinURL joins base and key with exactly one slash.
func JoinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

// DeriveSlug turns a title into a lowercase, hyphen-separated slug:
// "Rock & Roll's Light" becomes "rock-and-rolls-light".
func DeriveSlug(title string) string {
	s := norm.NFKD.String(strings.ToLower(title))
	s = strings.ReplaceAll(s, "&", " and ")

	var b strings.Builder
	b.Grow(len(s))
	gap := false
	for _, r := range s {
		switch {
		case r >= 0x0300 && r <= 0x036f: // combining diacritical marks
			continue
		case r == '\'' || r == '’':
			continue
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if gap && b.Len() > 0 {
				b.WriteByte('-')
			}
			gap = false
			b.WriteRune(r)
		default:
			gap = true
		}
	}
	return b.String()
}

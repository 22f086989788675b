// Package legacy imports the catalog from the MongoDB store older
// deployments ran on.
package legacy

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names in the legacy database.
const (
	CollectionSongs     = "songs"
	CollectionAlbums    = "albums"
	CollectionPlaylists = "playlists"
	CollectionUsers     = "musicusers"
)

// SongDoc is a song document.
type SongDoc struct {
	ID                       primitive.ObjectID `bson:"_id"`
	Title                    string             `bson:"title"`
	Genre                    string             `bson:"genre"`
	MP3                      string             `bson:"mp3"`
	SongThumbnail            string             `bson:"songThumbnail"`
	AnimatedSongThumbnail    string             `bson:"animatedSongThumbnail"`
	AnimatedThumbnail        string             `bson:"animatedThumbnail"`
	VideoThumbnail           string             `bson:"videoThumbnail"`
	Lyrics                   string             `bson:"lyrics"`
	YouTube                  string             `bson:"youTube"`
	Bandcamp                 string             `bson:"bandcamp"`
	MP3Key                   string             `bson:"mp3Key"`
	SongThumbnailKey         string             `bson:"songThumbnailKey"`
	AnimatedSongThumbnailKey string             `bson:"animatedSongThumbnailKey"`
	VideoThumbnailKey        string             `bson:"videoThumbnailKey"`
	LyricsKey                string             `bson:"lyricsKey"`
	Description              string             `bson:"description"`
	Verse                    string             `bson:"verse"`
	IsDraft                  bool               `bson:"isDraft"`
	CreatedAt                time.Time          `bson:"createdAt"`
	UpdatedAt                time.Time          `bson:"updatedAt"`
}

// AlbumDoc is an album document. Early albums carry their title in Name.
type AlbumDoc struct {
	ID             primitive.ObjectID   `bson:"_id"`
	Title          string               `bson:"title"`
	Name           string               `bson:"name"`
	Description    string               `bson:"description"`
	AlbumThumbnail string               `bson:"albumThumbnail"`
	Songs          []primitive.ObjectID `bson:"songs"`
	IsDraft        bool                 `bson:"isDraft"`
	CreatedAt      time.Time            `bson:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt"`
}

// PlaylistDoc is a playlist document. Owner is the owning user's ObjectId
// in older documents and the owner's subject identifier in newer ones.
type PlaylistDoc struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Name        string               `bson:"name"`
	Owner       bson.RawValue        `bson:"owner"`
	Description string               `bson:"description"`
	CoverImage  string               `bson:"coverImage"`
	Songs       []primitive.ObjectID `bson:"songs"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

// OwnerRef returns the owner as a legacy user id or as a subject
// identifier. Both are empty when the owner is missing or malformed.
func (p *PlaylistDoc) OwnerRef() (legacyUserID, subject string) {
	if oid, ok := p.Owner.ObjectIDOK(); ok {
		return oid.Hex(), ""
	}
	if s, ok := p.Owner.StringValueOK(); ok {
		s = strings.TrimSpace(s)
		if primitive.IsValidObjectID(s) {
			return s, ""
		}
		return "", s
	}
	return "", ""
}

// UserDoc is a musicusers document.
type UserDoc struct {
	ID            primitive.ObjectID   `bson:"_id"`
	Auth0ID       string               `bson:"auth0Id"`
	Email         string               `bson:"email"`
	Password      string               `bson:"password"`
	DisplayName   string               `bson:"displayName"`
	FavoriteSongs []primitive.ObjectID `bson:"favorite_songs"`
	CreatedAt     time.Time            `bson:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt"`
}

// Source reads every document of each legacy collection.
type Source interface {
	Songs(ctx context.Context) ([]SongDoc, error)
	Albums(ctx context.Context) ([]AlbumDoc, error)
	Playlists(ctx context.Context) ([]PlaylistDoc, error)
	Users(ctx context.Context) ([]UserDoc, error)
}

// MongoSource reads the legacy collections from MongoDB.
type MongoSource struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoSource connects to uri. An empty database falls back to the one
// named in uri, then to "test", the driver's own default.
func NewMongoSource(ctx context.Context, uri, database string) (*MongoSource, error) {
	if database == "" {
		database = databaseFromURI(uri)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(30 * time.Second).
		SetConnectTimeout(30 * time.Second)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to legacy store: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping legacy store: %w", err)
	}

	return &MongoSource{client: client, db: client.Database(database)}, nil
}

// Close disconnects from MongoDB.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Songs reads the songs collection.
func (s *MongoSource) Songs(ctx context.Context) ([]SongDoc, error) {
	var out []SongDoc
	if err := s.findAll(ctx, CollectionSongs, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Albums reads the albums collection.
func (s *MongoSource) Albums(ctx context.Context) ([]AlbumDoc, error) {
	var out []AlbumDoc
	if err := s.findAll(ctx, CollectionAlbums, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Playlists reads the playlists collection.
func (s *MongoSource) Playlists(ctx context.Context) ([]PlaylistDoc, error) {
	var out []PlaylistDoc
	if err := s.findAll(ctx, CollectionPlaylists, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Users reads the musicusers collection.
func (s *MongoSource) Users(ctx context.Context) ([]UserDoc, error) {
	var out []UserDoc
	if err := s.findAll(ctx, CollectionUsers, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoSource) findAll(ctx context.Context, collection string, out interface{}) error {
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return nil
}

func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return "test"
}

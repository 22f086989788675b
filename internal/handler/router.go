package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/belovedzguard/beloved-api/internal/middleware"
	"github.com/belovedzguard/beloved-api/pkg/httputil"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

// Authenticator provides the two authentication modes routes use.
type Authenticator interface {
	Required() gin.HandlerFunc
	Optional() gin.HandlerFunc
}

// RouterConfig holds everything the router mounts.
type RouterConfig struct {
	Songs     *SongHandler
	Albums    *AlbumHandler
	Playlists *PlaylistHandler
	Users     *UserHandler
	Uploads   *UploadHandler
	Contact   *ContactHandler
	Health    *HealthHandler

	Auth         Authenticator
	ContactLimit gin.HandlerFunc
	// Observe runs first on every request (tracing, metrics).
	Observe []gin.HandlerFunc
	// Metrics serves GET /metrics when set.
	Metrics http.Handler

	CORSOrigins    []string
	TrustedProxies []string
	Log            logger.Logger
}

// NewRouter builds the gin engine with every catalog route.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	router.Use(middleware.RequestID())
	router.Use(cfg.Observe...)
	router.Use(middleware.Logging(cfg.Log))
	router.Use(middleware.Recovery(cfg.Log))
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(httputil.SecurityHeadersMiddleware())

	router.GET("/health", cfg.Health.Health)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	api := router.Group("/api")

	songs := api.Group("/songs")
	{
		songs.GET("", cfg.Auth.Optional(), cfg.Songs.List)
		songs.GET("/:id", cfg.Auth.Optional(), cfg.Songs.Get)
		songs.POST("", cfg.Auth.Required(), cfg.Songs.Create)
		songs.POST("/bulk", cfg.Auth.Required(), cfg.Songs.BulkCreate)
		songs.POST("/bulk-add", cfg.Auth.Required(), cfg.Songs.BulkCreate)
		songs.PUT("/:id", cfg.Auth.Required(), cfg.Songs.Update)
		songs.DELETE("/:id", cfg.Auth.Required(), cfg.Songs.Delete)
	}

	albums := api.Group("/albums")
	{
		albums.GET("", cfg.Auth.Optional(), cfg.Albums.List)
		albums.GET("/:id", cfg.Auth.Optional(), cfg.Albums.Get)
		albums.POST("", cfg.Auth.Required(), cfg.Albums.Create)
		albums.PUT("/:id", cfg.Auth.Required(), cfg.Albums.Update)
		albums.DELETE("/:id", cfg.Auth.Required(), cfg.Albums.Delete)
	}

	users := api.Group("/users", cfg.Auth.Required())
	{
		users.GET("", cfg.Users.Me)
		users.PUT("", cfg.Users.Update)
		users.DELETE("", cfg.Users.Delete)

		playlists := users.Group("/playlists")
		playlists.POST("", cfg.Playlists.Create)
		playlists.GET("", cfg.Playlists.List)
		playlists.GET("/:id", cfg.Playlists.Get)
		playlists.PUT("/:id", cfg.Playlists.Update)
		playlists.DELETE("/:id", cfg.Playlists.Delete)
		playlists.PATCH("/:id/addSong", cfg.Playlists.AddSong)
	}

	api.POST("/uploads", cfg.Auth.Required(), cfg.Uploads.Issue)

	public := api.Group("/public")
	{
		public.GET("/albums", cfg.Albums.PublicList)
		public.GET("/albums/:id", cfg.Albums.PublicGet)
		public.GET("/songs", cfg.Songs.PublicList)
		public.GET("/songs/:id", cfg.Songs.PublicGet)
		public.GET("/playlists/:id", cfg.Playlists.PublicGet)

		contact := []gin.HandlerFunc{cfg.Contact.Submit}
		if cfg.ContactLimit != nil {
			contact = append([]gin.HandlerFunc{cfg.ContactLimit}, contact...)
		}
		public.POST("/contact", contact...)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, httputil.ErrorBody{Error: "Not found"})
	})

	return router, nil
}

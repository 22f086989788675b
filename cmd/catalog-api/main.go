package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/belovedzguard/beloved-api/internal/auth"
	"github.com/belovedzguard/beloved-api/internal/bootstrap"
	"github.com/belovedzguard/beloved-api/internal/handler"
	"github.com/belovedzguard/beloved-api/internal/mail"
	"github.com/belovedzguard/beloved-api/internal/middleware"
	"github.com/belovedzguard/beloved-api/internal/repository"
	"github.com/belovedzguard/beloved-api/internal/service"
	"github.com/belovedzguard/beloved-api/internal/storage"
	"github.com/belovedzguard/beloved-api/pkg/config"
	grpcsrv "github.com/belovedzguard/beloved-api/pkg/grpc"
	"github.com/belovedzguard/beloved-api/pkg/limiter"
	"github.com/belovedzguard/beloved-api/pkg/logger"
	"github.com/belovedzguard/beloved-api/pkg/redis"
	"github.com/belovedzguard/beloved-api/pkg/telemetry"
)

const serviceName = "catalog-api"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := bootstrap.LoadConfig(configPath)
	if err != nil {
		return err
	}

	log, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting", logger.String("service", serviceName), logger.Int("port", cfg.Server.Port))

	tel, shutdownTelemetry, err := telemetry.Init(ctx, &telemetry.Config{
		ServiceName:  cfg.Telemetry.ServiceName,
		Environment:  cfg.Telemetry.Environment,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		Enabled:      cfg.Telemetry.Enabled,
		SampleRate:   cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	if cfg.Server.AutoMigrate {
		if err := bootstrap.MigrateUp(ctx, cfg.Postgres, log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := bootstrap.OpenPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	log.Info("database connected")

	checks := map[string]handler.Pinger{"postgres": pool}

	var contactLimiter limiter.Limiter
	if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, redisConfig(cfg.Redis))
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		checks["redis"] = rdb
		contactLimiter = limiter.NewRedisLimiter(rdb, "contact", cfg.Contact.Limit, cfg.Contact.Window)
	} else {
		log.Warn("redis not configured, contact limits are per instance")
		contactLimiter = limiter.NewLocalLimiter(cfg.Contact.Limit, cfg.Contact.Window)
	}

	verifier, err := auth.NewJWKSVerifier(ctx, cfg.Auth.JWKSURL(), cfg.Auth.Issuer(), cfg.Auth.Audience)
	if err != nil {
		return err
	}

	users := repository.NewUserRepository(pool)
	songs := repository.NewSongRepository(pool)
	albums := repository.NewAlbumRepository(pool)
	playlists := repository.NewPlaylistRepository(pool)

	policy := auth.NewPolicy(auth.NewAdminSet(cfg.Auth.Admins()...))
	media := service.Media{BaseURL: cfg.Media.BaseURL, PublicBaseURL: cfg.Storage.PublicBaseURL}

	if missing := cfg.Storage.Missing(); len(missing) > 0 {
		log.Warn("object storage not configured, uploads will fail", logger.Strings("missing", missing))
	}
	sender := cfg.Mail.From
	if sender == "" {
		sender = cfg.Mail.Username
	}
	mailer := mail.NewGuardedMailer(mail.NewSMTPMailer(cfg.Mail), cfg.Mail.BreakerFailures, cfg.Mail.BreakerCooldown, log)

	metrics, err := middleware.Metrics(tel)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	gin.SetMode(cfg.Server.Mode)
	router, err := handler.NewRouter(handler.RouterConfig{
		Songs:     handler.NewSongHandler(service.NewSongService(songs, policy, media, log)),
		Albums:    handler.NewAlbumHandler(service.NewAlbumService(albums, songs, policy, log)),
		Playlists: handler.NewPlaylistHandler(service.NewPlaylistService(playlists, songs, policy, log)),
		Users:     handler.NewUserHandler(service.NewUserService(users, policy, log)),
		Uploads: handler.NewUploadHandler(service.NewUploadService(
			storage.New(cfg.Storage), policy, media, cfg.Storage.PresignTTL, log)),
		Contact: handler.NewContactHandler(service.NewContactService(mailer,
			service.ContactRoute{From: sender, Recipient: cfg.Mail.Recipient}, log)),
		Health: handler.NewHealthHandler(checks),

		Auth:         middleware.NewAuthenticator(verifier, auth.NewReconciler(users, log), log),
		ContactLimit: middleware.ContactLimit(contactLimiter, cfg.Contact.Window, log),
		Observe:      []gin.HandlerFunc{middleware.Tracing(tel.Tracer()), metrics},
		Metrics:      tel.Handler(),

		CORSOrigins:    cfg.Server.CORSOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		Log:            log,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var health *grpcsrv.Server
	if cfg.Server.GRPCPort != 0 {
		probes := make(map[string]grpcsrv.Checker, len(checks))
		for name, c := range checks {
			probes[name] = c
		}
		health, err = grpcsrv.NewServer(grpcsrv.DefaultServerConfig(serviceName, cfg.Server.GRPCPort), probes, log)
		if err != nil {
			return fmt.Errorf("grpc health server: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if health != nil {
		g.Go(func() error { return health.Serve(gctx) })
	}

	g.Go(func() error {
		log.Info("http server listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("stopped with error", logger.Error(err))
		return err
	}
	log.Info("stopped")
	return nil
}

func redisConfig(c config.RedisConfig) *redis.Config {
	return &redis.Config{
		URL:          c.URL,
		Host:         c.Host,
		Port:         c.Port,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fync-app/fync-server/internal/api/http/router"
	"github.com/fync-app/fync-server/internal/config"
	"github.com/fync-app/fync-server/internal/logger"
	"github.com/fync-app/fync-server/internal/mailer"
	"github.com/fync-app/fync-server/internal/model"
	"github.com/fync-app/fync-server/internal/repository/postgres"
	"github.com/fync-app/fync-server/internal/server"
	"github.com/fync-app/fync-server/internal/service"
	"github.com/fync-app/fync-server/internal/spotify"
	storage "github.com/fync-app/fync-server/internal/storage/minio"
	"github.com/fync-app/fync-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	linkStateRepo := postgres.NewLinkStateRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket, cfg.Storage.PublicBaseURL, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	events := service.NewSessionEvents()
	tokenService := service.NewTokenService(tokenManager, refreshTokenRepo, events, logger)
	identityService := service.NewIdentity(userRepo, profileRepo, tokenService, events,
		mailer.NewLogMailer(logger), cfg.Auth.RequireEmailConfirmation, logger)
	profileService := service.NewProfile(profileRepo, userRepo, storageClient, logger)

	oauthConfig := spotify.NewOAuthConfig(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.RedirectURL)
	spotifyClient := spotify.NewClient(&http.Client{Timeout: 15 * time.Second})
	linkerService := service.NewSpotifyLinker(oauthConfig, spotifyClient, linkStateRepo, profileRepo, logger)

	r := router.New(identityService, profileService, tokenService, linkerService, events, logger)
	httpServer := server.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

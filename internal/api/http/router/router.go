// Package router assembles the HTTP API surface.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/fync-app/fync-server/internal/api/http/handler"
	"github.com/fync-app/fync-server/internal/api/http/middleware"
	"github.com/fync-app/fync-server/internal/logger"
	"github.com/fync-app/fync-server/internal/service"
)

// Router wires handlers and middleware into a gin engine.
type Router struct {
	identityService *service.Identity
	profileService  *service.Profile
	tokenService    *service.TokenService
	linkerService   *service.SpotifyLinker
	events          *service.SessionEvents
	logger          *logger.Logger
}

// New creates a new Router instance over the application services.
func New(
	identityService *service.Identity,
	profileService *service.Profile,
	tokenService *service.TokenService,
	linkerService *service.SpotifyLinker,
	events *service.SessionEvents,
	logger *logger.Logger,
) *Router {
	return &Router{
		identityService: identityService,
		profileService:  profileService,
		tokenService:    tokenService,
		linkerService:   linkerService,
		events:          events,
		logger:          logger,
	}
}

// Register builds the gin engine with all routes and middleware attached.
func (r *Router) Register() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.NewLogging(r.logger).Handle)

	authenticate := middleware.NewAuthenticate(r.tokenService, r.logger).Handle

	authHandler := handler.NewAuth(r.identityService, r.tokenService, r.logger)
	profileHandler := handler.NewProfile(r.profileService, r.logger)
	spotifyHandler := handler.NewSpotify(r.linkerService, r.logger)
	eventsHandler := handler.NewEvents(r.events, r.logger)

	api := engine.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/confirm", authHandler.Confirm)
	auth.POST("/resend-confirmation", authHandler.ResendConfirmation)
	auth.POST("/password-reset", authHandler.PasswordReset)
	auth.GET("/me", authHandler.Me)
	auth.GET("/events", authenticate, eventsHandler.Stream)
	auth.GET("/spotify", authenticate, spotifyHandler.Begin)
	auth.GET("/spotify/callback", authenticate, spotifyHandler.Callback)

	profiles := api.Group("/profiles", authenticate)
	profiles.GET("/:id", profileHandler.Get)
	profiles.POST("/:id", profileHandler.Upsert)
	profiles.PUT("/:id", profileHandler.Update)
	profiles.POST("/:id/images/:slot", profileHandler.UploadImage)

	api.GET("/usernames/:username/available", profileHandler.UsernameAvailable)

	return engine
}

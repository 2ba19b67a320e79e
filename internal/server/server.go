package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/gravadigital/rankengine-api/internal/config"
	"github.com/gravadigital/rankengine-api/internal/handlers"
	"github.com/gravadigital/rankengine-api/internal/logger"
	"github.com/gravadigital/rankengine-api/internal/middleware/auth"
	"github.com/gravadigital/rankengine-api/internal/storage/postgres"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	config     *config.Config
	db         *gorm.DB
}

// New creates a new server instance
func New(cfg *config.Config, db *gorm.DB) *Server {
	return &Server{
		config: cfg,
		db:     db,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	router := s.setupRouter()

	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: router,

		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if s.config.CORS.AllowOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = splitAndTrim(s.config.CORS.AllowOrigins)
	}
	corsConfig.AllowMethods = splitAndTrim(s.config.CORS.AllowMethods)
	corsConfig.AllowHeaders = splitAndTrim(s.config.CORS.AllowHeaders)
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	router.Use(cors.New(corsConfig))

	container := postgres.NewContainerWithDB(s.db)

	userHandler := handlers.NewUserHandler(container.Users(), s.config)
	venueHandler := handlers.NewVenueHandler(container.Venues())
	submissionHandler := handlers.NewSubmissionHandler(container.Submissions(), container.Users(), s.config)
	rankingHandler := handlers.NewRankingHandler(container, container.Venues(), s.config)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "rankengine API is running",
			"status":  "healthy",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.setupAPIRoutes(router, userHandler, venueHandler, submissionHandler, rankingHandler)

	return router
}

// setupAPIRoutes configures all API routes
func (s *Server) setupAPIRoutes(
	router *gin.Engine,
	userHandler *handlers.UserHandler,
	venueHandler *handlers.VenueHandler,
	submissionHandler *handlers.SubmissionHandler,
	rankingHandler *handlers.RankingHandler,
) {
	requireAuth := auth.RequireAuth(s.config.Auth.JWTSecret)
	requireAdmin := auth.RequireAdmin(s.config.Auth.JWTSecret)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", userHandler.Register)
			authGroup.POST("/login", userHandler.Login)
		}

		users := api.Group("/users", requireAuth)
		{
			users.GET("", userHandler.GetAllUsers)
			users.GET("/:id", userHandler.GetUser)
		}

		venues := api.Group("/venues")
		{
			venues.GET("", venueHandler.GetAllVenues)
			venues.GET("/:id", venueHandler.GetVenue)
			venues.POST("", requireAuth, venueHandler.CreateVenue)
			venues.PATCH("/:id/stage", requireAuth, venueHandler.UpdateStage)

			venues.GET("/:id/submissions", requireAuth, submissionHandler.GetVenueSubmissions)
			venues.GET("/:id/submissions/:submissionID", requireAuth, submissionHandler.GetSubmission)
			venues.POST("/:id/submissions", requireAuth, submissionHandler.CreateSubmission)
			venues.POST("/:id/submissions/:submissionID/file", requireAuth, submissionHandler.UploadFile)

			venues.POST("/:id/tasks", requireAuth, rankingHandler.NextTask)
			venues.POST("/:id/comparisons", requireAuth, rankingHandler.RecordComparison)
			venues.POST("/:id/reviewers/score", requireAdmin, rankingHandler.ScoreReviewers)
			venues.POST("/:id/grades", requireAdmin, rankingHandler.ComputeGrades)
			venues.POST("/:id/reputation", requireAdmin, rankingHandler.RunReputation)
			venues.POST("/:id/reprocess", requireAdmin, rankingHandler.Reprocess)
		}
	}
}

// splitAndTrim turns a comma-separated config value into a trimmed slice.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Package api wires the gin router for the reconciliation service.
package api

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mkeren/finsight-backend/internal/api/handlers"
	"github.com/mkeren/finsight-backend/internal/application/service"
	"github.com/mkeren/finsight-backend/internal/infrastructure/config"
)

// Server hosts the HTTP API.
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	logger *slog.Logger
}

// NewServer builds the router with all routes registered.
func NewServer(cfg *config.Config, svc *service.Service, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/health"},
	}))

	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	h := handlers.New(svc, logger)
	registerRoutes(router, h)

	return &Server{
		cfg:    cfg,
		router: router,
		logger: logger,
	}
}

func registerRoutes(router *gin.Engine, h *handlers.Handler) {
	api := router.Group("/api")
	{
		api.GET("/health", h.Health)

		api.POST("/accounts", h.CreateAccount)
		api.GET("/accounts", h.ListAccounts)
		api.GET("/accounts/:id", h.GetAccount)
		api.GET("/accounts/:id/patterns", h.ListPatterns)
		api.POST("/accounts/:id/patterns", h.CreatePattern)

		api.GET("/patterns", h.ListPatterns)
		api.DELETE("/patterns/:id", h.DeletePattern)

		api.POST("/suggestions/analyze", h.Analyze)
		api.POST("/suggestions/analyze-batch", h.AnalyzeBatch)
		api.GET("/suggestions", h.ListSuggestions)
		api.POST("/suggestions/:id/action", h.ResolveSuggestion)

		api.GET("/links", h.ListLinks)
		api.POST("/links", h.CreateLink)
		api.DELETE("/links/:vendor/:identifier", h.DeleteLink)

		api.POST("/reconcile/combinations", h.FindCombinations)
		api.GET("/reconcile/unmatched", h.ListUnmatchedRepayments)
		api.GET("/reconcile/expenses", h.ListAvailableExpenses)
		api.GET("/stats", h.MatchingStats)
		api.GET("/stats/weekly", h.WeeklyMatchingStats)
	}
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server on the configured port and blocks.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.logger.Info("starting API server", "addr", addr)
	return s.router.Run(addr)
}

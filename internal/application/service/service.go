// Package service orchestrates the reconciliation engine: it feeds stored
// accounts and patterns to the matcher, manages the suggestion lifecycle,
// and runs combination searches over expense candidates.
package service

import (
	"log/slog"

	"github.com/mkeren/finsight-backend/internal/domain/matcher"
	"github.com/mkeren/finsight-backend/internal/infrastructure/config"
	"github.com/mkeren/finsight-backend/internal/infrastructure/storage"
)

// Service coordinates matching, suggestions, and reconciliation queries.
type Service struct {
	cfg     *config.Config
	store   storage.Repository
	matcher *matcher.Matcher
	logger  *slog.Logger
}

// New creates the reconciliation service.
func New(cfg *config.Config, store storage.Repository, logger *slog.Logger) *Service {
	m := matcher.New(matcher.Config{
		MinConfidence:           cfg.Engine.Matching.MinConfidence,
		AutoSuggestThreshold:    cfg.Engine.Matching.AutoSuggestThreshold,
		HighConfidenceThreshold: cfg.Engine.Matching.HighConfidenceThreshold,
	})

	return &Service{
		cfg:     cfg,
		store:   store,
		matcher: m,
		logger:  logger,
	}
}

// Store exposes the underlying repository for read-only pass-through
// endpoints (accounts, patterns, links).
func (s *Service) Store() storage.Repository {
	return s.store
}

package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkeren/finsight-backend/internal/infrastructure/config"
	"github.com/mkeren/finsight-backend/internal/infrastructure/storage"
)

func newTestService(t *testing.T) (*Service, *storage.MockRepository) {
	t.Helper()

	cfg := &config.Config{
		Engine: config.EngineConfig{
			Matching: config.MatchingConfig{
				MinConfidence:           0.5,
				AutoSuggestThreshold:    0.8,
				HighConfidenceThreshold: 0.95,
			},
			Combinations: config.CombinationsConfig{
				Tolerance: 0.01,
				MaxSize:   5,
				MaxNodes:  100000,
			},
		},
	}

	mock := storage.NewMockRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, mock, logger), mock
}

func seedTxn(t *testing.T, mock *storage.MockRepository, identifier, vendor, name string, amount float64, date time.Time) {
	t.Helper()
	require.NoError(t, mock.SaveTransaction(&storage.Transaction{
		Identifier: identifier,
		Vendor:     vendor,
		Name:       name,
		Amount:     amount,
		Date:       date,
	}))
}

func testDate(d int) time.Time {
	return time.Date(2026, 7, d, 0, 0, 0, 0, time.UTC)
}

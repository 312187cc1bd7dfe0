package matcher

import "github.com/mkeren/finsight-backend/internal/domain/pattern"

// Config holds matcher thresholds.
type Config struct {
	// MinConfidence is the floor below which a candidate account is not
	// surfaced at all.
	MinConfidence float64
	// AutoSuggestThreshold is the score at which a pending suggestion is
	// materialized without being asked for.
	AutoSuggestThreshold float64
	// HighConfidenceThreshold is the score below which a suggestion must be
	// confirmed by a human before it is approved.
	HighConfidenceThreshold float64
}

// DefaultConfig returns the tuned thresholds.
func DefaultConfig() Config {
	return Config{
		MinConfidence:           0.5,
		AutoSuggestThreshold:    0.8,
		HighConfidenceThreshold: 0.95,
	}
}

// Account is the read-only slice of an account the matcher needs.
type Account struct {
	ID     int64
	Name   string
	Type   string
	Active bool
}

// Pattern is a stored matching rule for one account.
type Pattern struct {
	Text   string
	Kind   pattern.Kind
	Active bool
}

// Candidate is one scored account for a transaction name.
type Candidate struct {
	AccountID   int64
	AccountName string
	Confidence  float64
	Reason      string
}

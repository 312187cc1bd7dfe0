package storage

import (
	"time"

	"github.com/mkeren/finsight-backend/internal/domain/pattern"
)

// Account types form a fixed enumeration; account CRUD itself is owned by
// the surrounding application, the engine only reads id/name/type.
const (
	AccountTypeBrokerage = "brokerage"
	AccountTypePension   = "pension"
	AccountTypeSavings   = "savings"
	AccountTypeChecking  = "checking"
	AccountTypeCrypto    = "crypto"
	AccountTypeOther     = "other"
)

// AccountTypes lists all valid account types.
func AccountTypes() []string {
	return []string{
		AccountTypeBrokerage,
		AccountTypePension,
		AccountTypeSavings,
		AccountTypeChecking,
		AccountTypeCrypto,
		AccountTypeOther,
	}
}

// ValidAccountType reports whether t is a known account type.
func ValidAccountType(t string) bool {
	for _, known := range AccountTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Link methods.
const (
	LinkMethodManual        = "manual"
	LinkMethodAuto          = "auto"
	LinkMethodUserConfirmed = "user_confirmed"
)

// ValidLinkMethod reports whether m is a known link method.
func ValidLinkMethod(m string) bool {
	return m == LinkMethodManual || m == LinkMethodAuto || m == LinkMethodUserConfirmed
}

// Suggestion statuses. A suggestion starts pending and moves to exactly one
// terminal status.
const (
	SuggestionPending  = "pending"
	SuggestionApproved = "approved"
	SuggestionRejected = "rejected"
	SuggestionIgnored  = "ignored"
)

// Account is an investment account the engine links transactions to.
type Account struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Transaction is an immutable scraped bank/card row, keyed by
// (identifier, vendor).
type Transaction struct {
	Identifier string    `json:"identifier"`
	Vendor     string    `json:"vendor"`
	Name       string    `json:"name"`
	Amount     float64   `json:"amount"`
	Date       time.Time `json:"date"`
	Category   string    `json:"category,omitempty"`
}

// Pattern is a stored matching rule owned by one account.
type Pattern struct {
	ID            int64        `json:"id"`
	AccountID     int64        `json:"account_id"`
	Text          string       `json:"pattern"`
	Kind          pattern.Kind `json:"kind"`
	Active        bool         `json:"active"`
	MatchCount    int          `json:"match_count"`
	LastMatchedAt *time.Time   `json:"last_matched_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Link is a confirmed transaction-to-account association. Transaction and
// account display fields are joined in for listing.
type Link struct {
	Identifier string    `json:"identifier"`
	Vendor     string    `json:"vendor"`
	AccountID  int64     `json:"account_id"`
	Method     string    `json:"method"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`

	TransactionName string    `json:"transaction_name,omitempty"`
	Amount          float64   `json:"amount,omitempty"`
	Date            time.Time `json:"date,omitempty"`
	AccountName     string    `json:"account_name,omitempty"`
}

// PendingSuggestion is a machine-proposed, not-yet-confirmed link. At most
// one row exists per (identifier, vendor).
type PendingSuggestion struct {
	ID                 string     `json:"id"`
	Identifier         string     `json:"identifier"`
	Vendor             string     `json:"vendor"`
	Name               string     `json:"name"`
	Amount             float64    `json:"amount"`
	Date               time.Time  `json:"date"`
	SuggestedAccountID *int64     `json:"suggested_account_id,omitempty"`
	Confidence         float64    `json:"confidence"`
	MatchReason        string     `json:"match_reason"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	ReviewedAt         *time.Time `json:"reviewed_at,omitempty"`
}

// ExpenseCandidate is a transaction offered to the combination finder,
// annotated with whether a link already exists for it.
type ExpenseCandidate struct {
	Transaction
	Matched bool `json:"matched"`
}

// MatchingStats counts linked vs unlinked transactions for one vendor.
type MatchingStats struct {
	Vendor          string  `json:"vendor"`
	Matched         int     `json:"matched"`
	Unmatched       int     `json:"unmatched"`
	MatchedAmount   float64 `json:"matched_amount"`
	UnmatchedAmount float64 `json:"unmatched_amount"`
}

// WeeklyMatchingStats is MatchingStats bucketed by ISO week.
type WeeklyMatchingStats struct {
	Week      string `json:"week"` // e.g. "2024-46"
	Matched   int    `json:"matched"`
	Unmatched int    `json:"unmatched"`
}

// TransactionFilters narrows transaction listings.
type TransactionFilters struct {
	Vendor   string
	From     time.Time
	To       time.Time
	Category string
}

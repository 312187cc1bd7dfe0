package storage

import "github.com/mkeren/finsight-backend/internal/domain/pattern"

// Repository defines the complete storage interface.
// This interface allows swapping implementations and makes testing with
// the in-memory mock straightforward.
type Repository interface {
	AccountRepository
	TransactionRepository
	PatternRepository
	LinkRepository
	SuggestionRepository
	Close() error
}

// AccountRepository reads and writes investment accounts.
type AccountRepository interface {
	// CreateAccount inserts a new account and returns it with its id set
	CreateAccount(name, accountType string) (*Account, error)

	// GetAccount retrieves an account by id
	GetAccount(id int64) (*Account, error)

	// ListAccounts returns accounts, optionally active ones only
	ListAccounts(activeOnly bool) ([]Account, error)
}

// TransactionRepository reads scraped transactions. The scraping
// collaborator owns the write path; SaveTransaction exists for it (and for
// seeding tests).
type TransactionRepository interface {
	// SaveTransaction upserts a scraped transaction row
	SaveTransaction(txn *Transaction) error

	// GetTransaction retrieves a transaction by its composite key
	GetTransaction(identifier, vendor string) (*Transaction, error)

	// ListTransactions returns transactions matching the filters
	ListTransactions(filters TransactionFilters) ([]Transaction, error)

	// GetUnmatchedRepayments returns positive-amount transactions for the
	// vendor in the date range that carry no link
	GetUnmatchedRepayments(vendor string, filters TransactionFilters) ([]Transaction, error)

	// GetAvailableExpenses returns expense candidates for the vendor in the
	// date range, each annotated with its link state
	GetAvailableExpenses(vendor string, filters TransactionFilters) ([]ExpenseCandidate, error)

	// GetMatchingStats counts linked vs unlinked transactions for a vendor
	GetMatchingStats(vendor string) (*MatchingStats, error)

	// GetWeeklyMatchingStats buckets link counts by ISO week
	GetWeeklyMatchingStats(vendor string, filters TransactionFilters) ([]WeeklyMatchingStats, error)
}

// PatternRepository manages per-account matching rules.
type PatternRepository interface {
	// ListPatterns returns patterns, for one account when accountID is set
	ListPatterns(accountID *int64) ([]Pattern, error)

	// CreatePattern adds a rule; duplicate (account, text) is a conflict
	CreatePattern(accountID int64, text string, kind pattern.Kind) (*Pattern, error)

	// DeletePattern removes a rule by id
	DeletePattern(id int64) error

	// RecordMatch increments usage counters on every active pattern of the
	// account that matches the transaction name
	RecordMatch(accountID int64, transactionName string) error
}

// LinkRepository persists confirmed transaction-to-account associations.
type LinkRepository interface {
	// UpsertLink writes the link for (identifier, vendor); last write wins
	UpsertLink(identifier, vendor string, accountID int64, method string, confidence float64) error

	// GetLink retrieves the link for a transaction key, nil when absent
	GetLink(identifier, vendor string) (*Link, error)

	// ListLinks returns links joined with transaction and account fields
	ListLinks(accountID *int64) ([]Link, error)

	// DeleteLink removes the association for a transaction key
	DeleteLink(identifier, vendor string) error
}

// SuggestionRepository manages the pending-suggestion lifecycle rows.
type SuggestionRepository interface {
	// UpsertSuggestion writes the suggestion for its (identifier, vendor)
	// key; an existing row keeps its id but has its proposal fields
	// overwritten and its status reset to pending
	UpsertSuggestion(s *PendingSuggestion) error

	// GetSuggestion retrieves a suggestion by id
	GetSuggestion(id string) (*PendingSuggestion, error)

	// GetSuggestionByKey retrieves the suggestion for a transaction key,
	// nil when absent
	GetSuggestionByKey(identifier, vendor string) (*PendingSuggestion, error)

	// ListSuggestions returns suggestions, filtered by status when non-empty
	ListSuggestions(status string) ([]PendingSuggestion, error)

	// ResolveSuggestion moves a pending suggestion to a terminal status
	ResolveSuggestion(id, status string) error

	// ApproveSuggestion runs the approval cascade in one transaction:
	// status update, link upsert, pattern usage increment
	ApproveSuggestion(id string) (*PendingSuggestion, error)
}

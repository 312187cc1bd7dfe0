package storage

import (
	"sort"
	"strings"
	"time"

	"github.com/mkeren/finsight-backend/internal/domain/domainerror"
	"github.com/mkeren/finsight-backend/internal/domain/pattern"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps and slices, making tests fast and isolated.
type MockRepository struct {
	accounts      map[int64]*Account
	transactions  map[string]*Transaction // keyed by identifier|vendor
	patterns      map[int64]*Pattern
	links         map[string]*Link
	suggestions   map[string]*PendingSuggestion
	nextAccountID int64
	nextPatternID int64

	// Hooks for test assertions
	UpsertLinkCalled        bool
	LastUpsertedLink        *Link
	UpsertSuggestionCalled  bool
	LastUpsertedSuggestion  *PendingSuggestion
	RecordMatchCalled       bool
	LastRecordMatchAccount  int64
	ApproveSuggestionCalled bool

	// Error injection for testing error paths
	UpsertLinkErr        error
	UpsertSuggestionErr  error
	ApproveSuggestionErr error
	GetTransactionErr    error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		accounts:      make(map[int64]*Account),
		transactions:  make(map[string]*Transaction),
		patterns:      make(map[int64]*Pattern),
		links:         make(map[string]*Link),
		suggestions:   make(map[string]*PendingSuggestion),
		nextAccountID: 1,
		nextPatternID: 1,
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

func txnKey(identifier, vendor string) string {
	return identifier + "|" + vendor
}

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// CreateAccount inserts an account into the in-memory map
func (m *MockRepository) CreateAccount(name, accountType string) (*Account, error) {
	if name == "" {
		return nil, domainerror.Validation("account name is required")
	}
	if !ValidAccountType(accountType) {
		return nil, domainerror.Newf(domainerror.KindValidation, "unknown account type %q", accountType)
	}
	for _, acct := range m.accounts {
		if acct.Name == name {
			return nil, domainerror.Newf(domainerror.KindConflict, "account %q already exists", name)
		}
	}
	acct := &Account{
		ID:        m.nextAccountID,
		Name:      name,
		Type:      accountType,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	m.accounts[acct.ID] = acct
	m.nextAccountID++
	copied := *acct
	return &copied, nil
}

// GetAccount retrieves an account by id
func (m *MockRepository) GetAccount(id int64) (*Account, error) {
	acct, ok := m.accounts[id]
	if !ok {
		return nil, domainerror.NotFound("account")
	}
	copied := *acct
	return &copied, nil
}

// ListAccounts returns accounts sorted by name
func (m *MockRepository) ListAccounts(activeOnly bool) ([]Account, error) {
	var accounts []Account
	for _, acct := range m.accounts {
		if activeOnly && !acct.Active {
			continue
		}
		accounts = append(accounts, *acct)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

// SetAccountActive toggles an account's active flag (test helper).
func (m *MockRepository) SetAccountActive(id int64, active bool) {
	if acct, ok := m.accounts[id]; ok {
		acct.Active = active
	}
}

// SaveTransaction stores a transaction row
func (m *MockRepository) SaveTransaction(txn *Transaction) error {
	if txn.Identifier == "" || txn.Vendor == "" {
		return domainerror.Validation("transaction identifier and vendor are required")
	}
	copied := *txn
	m.transactions[txnKey(txn.Identifier, txn.Vendor)] = &copied
	return nil
}

// GetTransaction retrieves a transaction by its composite key
func (m *MockRepository) GetTransaction(identifier, vendor string) (*Transaction, error) {
	if m.GetTransactionErr != nil {
		return nil, m.GetTransactionErr
	}
	txn, ok := m.transactions[txnKey(identifier, vendor)]
	if !ok {
		return nil, domainerror.NotFound("transaction")
	}
	copied := *txn
	return &copied, nil
}

// ListTransactions returns transactions matching the filters
func (m *MockRepository) ListTransactions(filters TransactionFilters) ([]Transaction, error) {
	var txns []Transaction
	for _, txn := range m.transactions {
		if !matchesFilters(txn, filters) {
			continue
		}
		txns = append(txns, *txn)
	}
	sortTransactions(txns)
	return txns, nil
}

// GetUnmatchedRepayments returns unlinked positive transactions for a vendor
func (m *MockRepository) GetUnmatchedRepayments(vendor string, filters TransactionFilters) ([]Transaction, error) {
	filters.Vendor = vendor
	var txns []Transaction
	for _, txn := range m.transactions {
		if txn.Amount <= 0 || !matchesFilters(txn, filters) {
			continue
		}
		if _, linked := m.links[txnKey(txn.Identifier, txn.Vendor)]; linked {
			continue
		}
		txns = append(txns, *txn)
	}
	sortTransactions(txns)
	return txns, nil
}

// GetAvailableExpenses returns candidates annotated with link state
func (m *MockRepository) GetAvailableExpenses(vendor string, filters TransactionFilters) ([]ExpenseCandidate, error) {
	filters.Vendor = vendor
	var candidates []ExpenseCandidate
	for _, txn := range m.transactions {
		if !matchesFilters(txn, filters) {
			continue
		}
		_, linked := m.links[txnKey(txn.Identifier, txn.Vendor)]
		candidates = append(candidates, ExpenseCandidate{Transaction: *txn, Matched: linked})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].Date.Equal(candidates[j].Date) {
			return candidates[i].Date.Before(candidates[j].Date)
		}
		return candidates[i].Identifier < candidates[j].Identifier
	})
	return candidates, nil
}

// GetMatchingStats counts linked vs unlinked transactions for a vendor
func (m *MockRepository) GetMatchingStats(vendor string) (*MatchingStats, error) {
	stats := &MatchingStats{Vendor: vendor}
	for _, txn := range m.transactions {
		if txn.Vendor != vendor {
			continue
		}
		if _, linked := m.links[txnKey(txn.Identifier, txn.Vendor)]; linked {
			stats.Matched++
			stats.MatchedAmount += txn.Amount
		} else {
			stats.Unmatched++
			stats.UnmatchedAmount += txn.Amount
		}
	}
	return stats, nil
}

// GetWeeklyMatchingStats buckets link counts by ISO week
func (m *MockRepository) GetWeeklyMatchingStats(vendor string, filters TransactionFilters) ([]WeeklyMatchingStats, error) {
	filters.Vendor = vendor
	buckets := make(map[string]*WeeklyMatchingStats)
	for _, txn := range m.transactions {
		if !matchesFilters(txn, filters) {
			continue
		}
		year, week := txn.Date.ISOWeek()
		key := weekLabel(year, week)
		b, ok := buckets[key]
		if !ok {
			b = &WeeklyMatchingStats{Week: key}
			buckets[key] = b
		}
		if _, linked := m.links[txnKey(txn.Identifier, txn.Vendor)]; linked {
			b.Matched++
		} else {
			b.Unmatched++
		}
	}
	var weekly []WeeklyMatchingStats
	for _, b := range buckets {
		weekly = append(weekly, *b)
	}
	sort.Slice(weekly, func(i, j int) bool { return weekly[i].Week < weekly[j].Week })
	return weekly, nil
}

// ListPatterns returns patterns, for one account when accountID is set
func (m *MockRepository) ListPatterns(accountID *int64) ([]Pattern, error) {
	var patterns []Pattern
	for _, p := range m.patterns {
		if accountID != nil && p.AccountID != *accountID {
			continue
		}
		patterns = append(patterns, *p)
	}
	sort.Slice(patterns, func(i, j int) bool { return patterns[i].ID < patterns[j].ID })
	return patterns, nil
}

// CreatePattern adds a rule to the in-memory map
func (m *MockRepository) CreatePattern(accountID int64, text string, kind pattern.Kind) (*Pattern, error) {
	if text == "" {
		return nil, domainerror.Validation("pattern text is required")
	}
	if !kind.Valid() {
		return nil, domainerror.Newf(domainerror.KindValidation, "unknown pattern kind %q", kind)
	}
	for _, p := range m.patterns {
		if p.AccountID == accountID && p.Text == text {
			return nil, domainerror.Newf(domainerror.KindConflict,
				"pattern %q already exists for account %d", text, accountID)
		}
	}
	p := &Pattern{
		ID:        m.nextPatternID,
		AccountID: accountID,
		Text:      text,
		Kind:      kind,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	m.patterns[p.ID] = p
	m.nextPatternID++
	copied := *p
	return &copied, nil
}

// DeletePattern removes a rule by id
func (m *MockRepository) DeletePattern(id int64) error {
	if _, ok := m.patterns[id]; !ok {
		return domainerror.NotFound("pattern")
	}
	delete(m.patterns, id)
	return nil
}

// RecordMatch increments counters on matching active patterns
func (m *MockRepository) RecordMatch(accountID int64, transactionName string) error {
	m.RecordMatchCalled = true
	m.LastRecordMatchAccount = accountID
	now := time.Now().UTC()
	for _, p := range m.patterns {
		if p.AccountID != accountID || !p.Active {
			continue
		}
		if pattern.Matches(p.Kind, p.Text, transactionName) {
			p.MatchCount++
			t := now
			p.LastMatchedAt = &t
		}
	}
	return nil
}

// UpsertLink writes the link for (identifier, vendor); last write wins
func (m *MockRepository) UpsertLink(identifier, vendor string, accountID int64, method string, confidence float64) error {
	m.UpsertLinkCalled = true
	if m.UpsertLinkErr != nil {
		return m.UpsertLinkErr
	}
	if identifier == "" || vendor == "" {
		return domainerror.Validation("transaction identifier and vendor are required")
	}
	if !ValidLinkMethod(method) {
		return domainerror.Newf(domainerror.KindValidation, "unknown link method %q", method)
	}
	link := &Link{
		Identifier: identifier,
		Vendor:     vendor,
		AccountID:  accountID,
		Method:     method,
		Confidence: confidence,
		CreatedAt:  time.Now().UTC(),
	}
	m.links[txnKey(identifier, vendor)] = link
	copied := *link
	m.LastUpsertedLink = &copied
	return nil
}

// GetLink retrieves the link for a transaction key, nil when absent
func (m *MockRepository) GetLink(identifier, vendor string) (*Link, error) {
	link, ok := m.links[txnKey(identifier, vendor)]
	if !ok {
		return nil, nil
	}
	copied := *link
	return &copied, nil
}

// ListLinks returns links joined with transaction and account fields
func (m *MockRepository) ListLinks(accountID *int64) ([]Link, error) {
	var links []Link
	for key, link := range m.links {
		if accountID != nil && link.AccountID != *accountID {
			continue
		}
		copied := *link
		if txn, ok := m.transactions[key]; ok {
			copied.TransactionName = txn.Name
			copied.Amount = txn.Amount
			copied.Date = txn.Date
		}
		if acct, ok := m.accounts[link.AccountID]; ok {
			copied.AccountName = acct.Name
		}
		links = append(links, copied)
	}
	sort.Slice(links, func(i, j int) bool {
		return txnKey(links[i].Identifier, links[i].Vendor) < txnKey(links[j].Identifier, links[j].Vendor)
	})
	return links, nil
}

// DeleteLink removes the association for a transaction key
func (m *MockRepository) DeleteLink(identifier, vendor string) error {
	key := txnKey(identifier, vendor)
	if _, ok := m.links[key]; !ok {
		return domainerror.NotFound("link")
	}
	delete(m.links, key)
	return nil
}

// UpsertSuggestion writes the suggestion for its transaction key
func (m *MockRepository) UpsertSuggestion(sg *PendingSuggestion) error {
	m.UpsertSuggestionCalled = true
	if m.UpsertSuggestionErr != nil {
		return m.UpsertSuggestionErr
	}
	key := txnKey(sg.Identifier, sg.Vendor)
	if existing := m.findSuggestionByKey(key); existing != nil {
		existing.Name = sg.Name
		existing.Amount = sg.Amount
		existing.Date = sg.Date
		existing.SuggestedAccountID = sg.SuggestedAccountID
		existing.Confidence = sg.Confidence
		existing.MatchReason = sg.MatchReason
		existing.Status = SuggestionPending
		existing.ReviewedAt = nil
		copied := *existing
		m.LastUpsertedSuggestion = &copied
		return nil
	}
	copied := *sg
	copied.Status = SuggestionPending
	copied.CreatedAt = time.Now().UTC()
	m.suggestions[sg.ID] = &copied
	snapshot := copied
	m.LastUpsertedSuggestion = &snapshot
	return nil
}

// GetSuggestion retrieves a suggestion by id
func (m *MockRepository) GetSuggestion(id string) (*PendingSuggestion, error) {
	sg, ok := m.suggestions[id]
	if !ok {
		return nil, domainerror.NotFound("suggestion")
	}
	copied := *sg
	return &copied, nil
}

// GetSuggestionByKey retrieves the suggestion for a transaction key
func (m *MockRepository) GetSuggestionByKey(identifier, vendor string) (*PendingSuggestion, error) {
	sg := m.findSuggestionByKey(txnKey(identifier, vendor))
	if sg == nil {
		return nil, nil
	}
	copied := *sg
	return &copied, nil
}

// ListSuggestions returns suggestions filtered by status
func (m *MockRepository) ListSuggestions(status string) ([]PendingSuggestion, error) {
	var suggestions []PendingSuggestion
	for _, sg := range m.suggestions {
		if status != "" && sg.Status != status {
			continue
		}
		suggestions = append(suggestions, *sg)
	}
	sort.Slice(suggestions, func(i, j int) bool { return suggestions[i].ID < suggestions[j].ID })
	return suggestions, nil
}

// ResolveSuggestion moves a pending suggestion to a terminal status
func (m *MockRepository) ResolveSuggestion(id, status string) error {
	sg, ok := m.suggestions[id]
	if !ok {
		return domainerror.NotFound("suggestion")
	}
	if sg.Status != SuggestionPending {
		return domainerror.Newf(domainerror.KindConflict, "suggestion %s is already %s", id, sg.Status)
	}
	now := time.Now().UTC()
	sg.Status = status
	sg.ReviewedAt = &now
	return nil
}

// ApproveSuggestion runs the approval cascade against the in-memory maps
func (m *MockRepository) ApproveSuggestion(id string) (*PendingSuggestion, error) {
	m.ApproveSuggestionCalled = true
	if m.ApproveSuggestionErr != nil {
		return nil, m.ApproveSuggestionErr
	}
	sg, ok := m.suggestions[id]
	if !ok {
		return nil, domainerror.NotFound("suggestion")
	}
	if sg.Status != SuggestionPending {
		return nil, domainerror.Newf(domainerror.KindConflict, "suggestion %s is already %s", id, sg.Status)
	}
	if sg.SuggestedAccountID == nil {
		return nil, domainerror.Conflict("suggestion has no account to approve")
	}
	if err := m.UpsertLink(sg.Identifier, sg.Vendor, *sg.SuggestedAccountID,
		LinkMethodUserConfirmed, sg.Confidence); err != nil {
		return nil, err
	}
	if err := m.RecordMatch(*sg.SuggestedAccountID, sg.Name); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sg.Status = SuggestionApproved
	sg.ReviewedAt = &now
	copied := *sg
	return &copied, nil
}

func (m *MockRepository) findSuggestionByKey(key string) *PendingSuggestion {
	for _, sg := range m.suggestions {
		if txnKey(sg.Identifier, sg.Vendor) == key {
			return sg
		}
	}
	return nil
}

func matchesFilters(txn *Transaction, filters TransactionFilters) bool {
	if filters.Vendor != "" && txn.Vendor != filters.Vendor {
		return false
	}
	if !filters.From.IsZero() && txn.Date.Before(filters.From) {
		return false
	}
	if !filters.To.IsZero() && txn.Date.After(filters.To) {
		return false
	}
	if filters.Category != "" && !strings.EqualFold(txn.Category, filters.Category) {
		return false
	}
	return true
}

func sortTransactions(txns []Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.Before(txns[j].Date)
		}
		return txns[i].Identifier < txns[j].Identifier
	})
}

func weekLabel(year, week int) string {
	label := []byte{
		byte('0' + year/1000%10), byte('0' + year/100%10), byte('0' + year/10%10), byte('0' + year%10),
		'-',
		byte('0' + week/10%10), byte('0' + week%10),
	}
	return string(label)
}

package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, 7, d, 0, 0, 0, 0, time.UTC)
}

func TestSaveTransactionUpserts(t *testing.T) {
	s := newTestStorage(t)

	seedTransaction(t, s, "txn-1", "leumi", "ISRACARD TRANSFER", 600.00, day(12))
	seedTransaction(t, s, "txn-1", "leumi", "ISRACARD TRANSFER JULY", 650.00, day(12))

	txn, err := s.GetTransaction("txn-1", "leumi")
	require.NoError(t, err)
	assert.Equal(t, "ISRACARD TRANSFER JULY", txn.Name)
	assert.Equal(t, 650.00, txn.Amount)

	txns, err := s.ListTransactions(TransactionFilters{Vendor: "leumi"})
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestListTransactionsFilters(t *testing.T) {
	s := newTestStorage(t)

	seedTransaction(t, s, "txn-1", "leumi", "EARLY", 100.00, day(1))
	seedTransaction(t, s, "txn-2", "leumi", "MIDDLE", 200.00, day(15))
	seedTransaction(t, s, "txn-3", "isracard", "OTHER VENDOR", 300.00, day(15))

	txns, err := s.ListTransactions(TransactionFilters{
		Vendor: "leumi",
		From:   day(10),
		To:     day(20),
	})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "txn-2", txns[0].Identifier)
}

func TestGetUnmatchedRepayments(t *testing.T) {
	s := newTestStorage(t)

	acct, err := s.CreateAccount("Interactive Brokers", AccountTypeBrokerage)
	require.NoError(t, err)

	seedTransaction(t, s, "repay-1", "leumi", "ISRACARD TRANSFER", 600.00, day(12))
	seedTransaction(t, s, "repay-2", "leumi", "ISRACARD TRANSFER", 400.50, day(19))
	seedTransaction(t, s, "expense-1", "leumi", "SUPERMARKET", -89.90, day(10))

	require.NoError(t, s.UpsertLink("repay-1", "leumi", acct.ID, LinkMethodManual, 1.0))

	unmatched, err := s.GetUnmatchedRepayments("leumi", TransactionFilters{})
	require.NoError(t, err)
	require.Len(t, unmatched, 1)
	assert.Equal(t, "repay-2", unmatched[0].Identifier)
}

func TestGetAvailableExpensesAnnotatesLinkState(t *testing.T) {
	s := newTestStorage(t)

	acct, err := s.CreateAccount("Checking", AccountTypeChecking)
	require.NoError(t, err)

	seedTransaction(t, s, "exp-1", "isracard", "SUPERMARKET", -89.90, day(10))
	seedTransaction(t, s, "exp-2", "isracard", "GAS STATION", -210.00, day(11))

	require.NoError(t, s.UpsertLink("exp-1", "isracard", acct.ID, LinkMethodManual, 1.0))

	candidates, err := s.GetAvailableExpenses("isracard", TransactionFilters{})
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	byID := make(map[string]ExpenseCandidate)
	for _, c := range candidates {
		byID[c.Identifier] = c
	}
	assert.True(t, byID["exp-1"].Matched)
	assert.False(t, byID["exp-2"].Matched)
}

func TestGetMatchingStats(t *testing.T) {
	s := newTestStorage(t)

	acct, err := s.CreateAccount("Checking", AccountTypeChecking)
	require.NoError(t, err)

	seedTransaction(t, s, "txn-1", "leumi", "LINKED", 600.00, day(12))
	seedTransaction(t, s, "txn-2", "leumi", "UNLINKED", 400.50, day(19))
	seedTransaction(t, s, "txn-3", "leumi", "UNLINKED TOO", 199.99, day(20))

	require.NoError(t, s.UpsertLink("txn-1", "leumi", acct.ID, LinkMethodManual, 1.0))

	stats, err := s.GetMatchingStats("leumi")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 2, stats.Unmatched)
	assert.InDelta(t, 600.00, stats.MatchedAmount, 0.001)
	assert.InDelta(t, 600.49, stats.UnmatchedAmount, 0.001)
}

func TestGetMatchingStatsEmptyVendor(t *testing.T) {
	s := newTestStorage(t)

	stats, err := s.GetMatchingStats("nobody")
	require.NoError(t, err)
	assert.Zero(t, stats.Matched)
	assert.Zero(t, stats.Unmatched)
	assert.Zero(t, stats.MatchedAmount)
}

func TestGetWeeklyMatchingStats(t *testing.T) {
	s := newTestStorage(t)

	acct, err := s.CreateAccount("Checking", AccountTypeChecking)
	require.NoError(t, err)

	// Two different weeks of July 2026.
	seedTransaction(t, s, "txn-1", "leumi", "WEEK ONE", 100.00, day(6))
	seedTransaction(t, s, "txn-2", "leumi", "WEEK ONE TOO", 200.00, day(7))
	seedTransaction(t, s, "txn-3", "leumi", "WEEK TWO", 300.00, day(14))

	require.NoError(t, s.UpsertLink("txn-1", "leumi", acct.ID, LinkMethodManual, 1.0))

	weekly, err := s.GetWeeklyMatchingStats("leumi", TransactionFilters{})
	require.NoError(t, err)
	require.Len(t, weekly, 2)

	assert.Equal(t, 1, weekly[0].Matched)
	assert.Equal(t, 1, weekly[0].Unmatched)
	assert.Equal(t, 0, weekly[1].Matched)
	assert.Equal(t, 1, weekly[1].Unmatched)
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkeren/finsight-backend/internal/domain/domainerror"
	"github.com/mkeren/finsight-backend/internal/infrastructure/storage"
)

func TestSuggestWritesHighConfidenceSuggestion(t *testing.T) {
	svc, mock := newTestService(t)

	acct, err := mock.CreateAccount("Interactive Brokers", storage.AccountTypeBrokerage)
	require.NoError(t, err)
	seedTxn(t, mock, "txn-1", "leumi", "ISRACARD LTD INTERACTIVE BROKERS", 600.00, testDate(12))

	outcome, err := svc.SuggestAccountsFor(SuggestRequest{Identifier: "txn-1", Vendor: "leumi"})
	require.NoError(t, err)

	require.NotNil(t, outcome.Suggestion)
	assert.Equal(t, acct.ID, *outcome.Suggestion.SuggestedAccountID)
	assert.Equal(t, storage.SuggestionPending, outcome.Suggestion.Status)
	assert.GreaterOrEqual(t, outcome.Suggestion.Confidence, 0.95)
	assert.False(t, outcome.RequiresConfirmation)
	assert.True(t, mock.UpsertSuggestionCalled)
}

func TestSuggestFlagsMidConfidenceForConfirmation(t *testing.T) {
	svc, mock := newTestService(t)

	_, err := mock.CreateAccount("Vanguard", storage.AccountTypeSavings)
	require.NoError(t, err)
	seedTxn(t, mock, "txn-1", "leumi", "PAYMENT VANGUARD ACCT", 250.00, testDate(12))

	outcome, err := svc.SuggestAccountsFor(SuggestRequest{Identifier: "txn-1", Vendor: "leumi"})
	require.NoError(t, err)

	require.NotNil(t, outcome.Suggestion)
	assert.GreaterOrEqual(t, outcome.Suggestion.Confidence, 0.8)
	assert.Less(t, outcome.Suggestion.Confidence, 0.95)
	assert.True(t, outcome.RequiresConfirmation)
}

func TestSuggestBelowAutoThresholdReturnsCandidatesOnly(t *testing.T) {
	svc, mock := newTestService(t)

	_, err := mock.CreateAccount("VANGUARD", storage.AccountTypeBrokerage)
	require.NoError(t, err)
	// Similar but distorted enough to land between the floor and the
	// auto-suggest threshold.
	seedTxn(t, mock, "txn-1", "leumi", "VANGRD", 250.00, testDate(12))

	outcome, err := svc.SuggestAccountsFor(SuggestRequest{Identifier: "txn-1", Vendor: "leumi"})
	require.NoError(t, err)

	assert.NotEmpty(t, outcome.Candidates)
	assert.Nil(t, outcome.Suggestion)
	assert.False(t, mock.UpsertSuggestionCalled)
}

func TestSuggestNoCandidates(t *testing.T) {
	svc, mock := newTestService(t)

	_, err := mock.CreateAccount("Interactive Brokers", storage.AccountTypeBrokerage)
	require.NoError(t, err)
	seedTxn(t, mock, "txn-1", "leumi", "WOLT TLV", 89.90, testDate(12))

	outcome, err := svc.SuggestAccountsFor(SuggestRequest{Identifier: "txn-1", Vendor: "leumi"})
	require.NoError(t, err)

	assert.Empty(t, outcome.Candidates)
	assert.Nil(t, outcome.Suggestion)
}

func TestSuggestSkipsLinkedTransaction(t *testing.T) {
	svc, mock := newTestService(t)

	acct, err := mock.CreateAccount("Interactive Brokers", storage.AccountTypeBrokerage)
	require.NoError(t, err)
	seedTxn(t, mock, "txn-1", "leumi", "ISRACARD LTD INTERACTIVE BROKERS", 600.00, testDate(12))
	require.NoError(t, mock.UpsertLink("txn-1", "leumi", acct.ID, storage.LinkMethodManual, 1.0))

	outcome, err := svc.SuggestAccountsFor(SuggestRequest{Identifier: "txn-1", Vendor: "leumi"})
	require.NoError(t, err)

	assert.True(t, outcome.Skipped)
	assert.Nil(t, outcome.Suggestion)
}

func TestSuggestDoesNotResurrectResolvedSuggestion(t *testing.T) {
	svc, mock := newTestService(t)

	_, err := mock.CreateAccount("Interactive Brokers", storage.AccountTypeBrokerage)
	require.NoError(t, err)
	seedTxn(t, mock, "txn-1", "leumi", "ISRACARD LTD INTERACTIVE BROKERS", 600.00, testDate(12))

	first, err := svc.SuggestAccountsFor(SuggestRequest{Identifier: "txn-1", Vendor: "leumi"})
	require.NoError(t, err)
	require.NotNil(t, first.Suggestion)
	require.NoError(t, mock.ResolveSuggestion(first.Suggestion.ID, storage.SuggestionRejected))

	// Plain re-analysis leaves the rejection alone.
	second, err := svc.SuggestAccountsFor(SuggestRequest{Identifier: "txn-1", Vendor: "leumi"})
	require.NoError(t, err)
	assert.True(t, second.Skipped)

	// ClearResolved explicitly re-opens it.
	third, err := svc.SuggestAccountsFor(SuggestRequest{
		Identifier: "txn-1", Vendor: "leumi", ClearResolved: true,
	})
	require.NoError(t, err)
	require.NotNil(t, third.Suggestion)
	assert.Equal(t, storage.SuggestionPending, third.Suggestion.Status)
	assert.Equal(t, first.Suggestion.ID, third.Suggestion.ID)
}

func TestSuggestUnknownTransaction(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SuggestAccountsFor(SuggestRequest{Identifier: "missing", Vendor: "leumi"})
	assert.True(t, domainerror.IsKind(err, domainerror.KindNotFound))
}

func TestAnalyzeUnmatched(t *testing.T) {
	svc, mock := newTestService(t)

	_, err := mock.CreateAccount("Interactive Brokers", storage.AccountTypeBrokerage)
	require.NoError(t, err)

	seedTxn(t, mock, "repay-1", "leumi", "ISRACARD LTD INTERACTIVE BROKERS", 600.00, testDate(12))
	seedTxn(t, mock, "repay-2", "leumi", "WOLT TLV", 89.90, testDate(13))

	summary, err := svc.AnalyzeUnmatched("leumi", false)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Analyzed)
	assert.Equal(t, 1, summary.Suggested)
	assert.Equal(t, 1, summary.NoMatch)
	assert.Equal(t, 0, summary.Skipped)
}

func TestAnalyzeUnmatchedRequiresVendor(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AnalyzeUnmatched("", false)
	assert.True(t, domainerror.IsKind(err, domainerror.KindValidation))
}

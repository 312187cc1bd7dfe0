package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkeren/finsight-backend/internal/application/service"
	"github.com/mkeren/finsight-backend/internal/infrastructure/config"
	"github.com/mkeren/finsight-backend/internal/infrastructure/storage"
)

func newTestServer(t *testing.T) (*gin.Engine, *storage.MockRepository) {
	t.Helper()

	cfg := config.LoadFromEnv()
	mock := storage.NewMockRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(cfg, mock, logger)
	server := NewServer(cfg, svc, logger)
	return server.Router(), mock
}

func perform(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func seedAPITxn(t *testing.T, mock *storage.MockRepository, identifier, name string, amount float64) {
	t.Helper()
	require.NoError(t, mock.SaveTransaction(&storage.Transaction{
		Identifier: identifier,
		Vendor:     "leumi",
		Name:       name,
		Amount:     amount,
		Date:       time.Date(2026, 7, 12, 0, 0, 0, 0, time.UTC),
	}))
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	w := perform(t, router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccountEndpoints(t *testing.T) {
	router, _ := newTestServer(t)

	w := perform(t, router, http.MethodPost, "/api/accounts", gin.H{
		"name": "Interactive Brokers",
		"type": "brokerage",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	acct := decode[storage.Account](t, w)
	assert.NotZero(t, acct.ID)

	w = perform(t, router, http.MethodGet, fmt.Sprintf("/api/accounts/%d", acct.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(t, router, http.MethodGet, "/api/accounts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	accounts := decode[[]storage.Account](t, w)
	assert.Len(t, accounts, 1)

	// Duplicate name maps to 409.
	w = perform(t, router, http.MethodPost, "/api/accounts", gin.H{
		"name": "Interactive Brokers",
		"type": "brokerage",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown type maps to 400.
	w = perform(t, router, http.MethodPost, "/api/accounts", gin.H{
		"name": "Oddball",
		"type": "mattress",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, router, http.MethodGet, "/api/accounts/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatternEndpoints(t *testing.T) {
	router, mock := newTestServer(t)

	acct, err := mock.CreateAccount("Interactive Brokers", storage.AccountTypeBrokerage)
	require.NoError(t, err)

	w := perform(t, router, http.MethodPost, fmt.Sprintf("/api/accounts/%d/patterns", acct.ID), gin.H{
		"pattern": "%ISRACARD%",
		"kind":    "substring",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	p := decode[storage.Pattern](t, w)

	// Omitted kind defaults to substring.
	w = perform(t, router, http.MethodPost, fmt.Sprintf("/api/accounts/%d/patterns", acct.ID), gin.H{
		"pattern": "IBKR",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = perform(t, router, http.MethodGet, fmt.Sprintf("/api/accounts/%d/patterns", acct.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	patterns := decode[[]storage.Pattern](t, w)
	assert.Len(t, patterns, 2)

	// Duplicate rule maps to 409.
	w = perform(t, router, http.MethodPost, fmt.Sprintf("/api/accounts/%d/patterns", acct.ID), gin.H{
		"pattern": "%ISRACARD%",
		"kind":    "substring",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown account maps to 404.
	w = perform(t, router, http.MethodPost, "/api/accounts/9999/patterns", gin.H{
		"pattern": "X",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(t, router, http.MethodDelete, fmt.Sprintf("/api/patterns/%d", p.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = perform(t, router, http.MethodDelete, fmt.Sprintf("/api/patterns/%d", p.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeAndActionFlow(t *testing.T) {
	router, mock := newTestServer(t)

	_, err := mock.CreateAccount("Interactive Brokers", storage.AccountTypeBrokerage)
	require.NoError(t, err)
	seedAPITxn(t, mock, "txn-1", "ISRACARD LTD INTERACTIVE BROKERS", 600.00)

	w := perform(t, router, http.MethodPost, "/api/suggestions/analyze", gin.H{
		"identifier": "txn-1",
		"vendor":     "leumi",
	})
	require.Equal(t, http.StatusOK, w.Code)
	outcome := decode[service.SuggestionOutcome](t, w)
	require.NotNil(t, outcome.Suggestion)

	w = perform(t, router, http.MethodPost,
		"/api/suggestions/"+outcome.Suggestion.ID+"/action", gin.H{"action": "approve"})
	require.Equal(t, http.StatusOK, w.Code)
	approved := decode[storage.PendingSuggestion](t, w)
	assert.Equal(t, storage.SuggestionApproved, approved.Status)

	link, err := mock.GetLink("txn-1", "leumi")
	require.NoError(t, err)
	assert.NotNil(t, link)

	// Acting again maps to 409.
	w = perform(t, router, http.MethodPost,
		"/api/suggestions/"+outcome.Suggestion.ID+"/action", gin.H{"action": "reject"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown action maps to 400.
	w = perform(t, router, http.MethodPost,
		"/api/suggestions/"+outcome.Suggestion.ID+"/action", gin.H{"action": "defer"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeUnknownTransaction(t *testing.T) {
	router, _ := newTestServer(t)

	w := perform(t, router, http.MethodPost, "/api/suggestions/analyze", gin.H{
		"identifier": "missing",
		"vendor":     "leumi",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSuggestionsRejectsUnknownStatus(t *testing.T) {
	router, _ := newTestServer(t)

	w := perform(t, router, http.MethodGet, "/api/suggestions?status=done", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLinkEndpoints(t *testing.T) {
	router, mock := newTestServer(t)

	acct, err := mock.CreateAccount("Checking", storage.AccountTypeChecking)
	require.NoError(t, err)
	seedAPITxn(t, mock, "txn-1", "SOMETHING", 100.00)

	w := perform(t, router, http.MethodPost, "/api/links", gin.H{
		"identifier": "txn-1",
		"vendor":     "leumi",
		"account_id": acct.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	link := decode[storage.Link](t, w)
	assert.Equal(t, storage.LinkMethodManual, link.Method)

	w = perform(t, router, http.MethodGet, "/api/links", nil)
	require.Equal(t, http.StatusOK, w.Code)
	links := decode[[]storage.Link](t, w)
	assert.Len(t, links, 1)

	w = perform(t, router, http.MethodDelete, "/api/links/leumi/txn-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = perform(t, router, http.MethodDelete, "/api/links/leumi/txn-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCombinationsEndpoint(t *testing.T) {
	router, mock := newTestServer(t)

	seedAPITxn(t, mock, "repay-1", "ISRACARD TRANSFER", 1000.00)
	seedAPITxn(t, mock, "exp-1", "SUPERMARKET", -600.00)
	seedAPITxn(t, mock, "exp-2", "GAS STATION", -400.50)
	seedAPITxn(t, mock, "exp-3", "RESTAURANT", -399.50)

	w := perform(t, router, http.MethodPost, "/api/reconcile/combinations", gin.H{
		"identifier": "repay-1",
		"vendor":     "leumi",
		"tolerance":  2.00,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Combinations []struct {
			Sum float64 `json:"sum"`
		} `json:"combinations"`
		Truncated bool `json:"truncated"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Combinations)
	assert.False(t, result.Truncated)
}

func TestCombinationsEndpointRejectsBadDate(t *testing.T) {
	router, mock := newTestServer(t)
	seedAPITxn(t, mock, "repay-1", "ISRACARD TRANSFER", 1000.00)

	w := perform(t, router, http.MethodPost, "/api/reconcile/combinations", gin.H{
		"identifier": "repay-1",
		"vendor":     "leumi",
		"from":       "12/07/2026",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsEndpoints(t *testing.T) {
	router, mock := newTestServer(t)
	seedAPITxn(t, mock, "txn-1", "SOMETHING", 100.00)

	w := perform(t, router, http.MethodGet, "/api/stats?vendor=leumi", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[storage.MatchingStats](t, w)
	assert.Equal(t, 1, stats.Unmatched)

	// Vendor is required.
	w = perform(t, router, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, router, http.MethodGet, "/api/stats/weekly?vendor=leumi", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(t, router, http.MethodGet, "/api/stats/weekly?vendor=leumi&from=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpensesEndpoint(t *testing.T) {
	router, mock := newTestServer(t)
	seedAPITxn(t, mock, "exp-1", "SUPERMARKET", -89.90)
	seedAPITxn(t, mock, "repay-1", "ISRACARD TRANSFER", 600.00)

	w := perform(t, router, http.MethodGet, "/api/reconcile/expenses?vendor=leumi", nil)
	require.Equal(t, http.StatusOK, w.Code)
	expenses := decode[[]storage.ExpenseCandidate](t, w)
	assert.Len(t, expenses, 2)

	w = perform(t, router, http.MethodGet, "/api/reconcile/expenses?vendor=leumi&processed_date=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, router, http.MethodGet, "/api/reconcile/expenses", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnmatchedEndpoint(t *testing.T) {
	router, mock := newTestServer(t)
	seedAPITxn(t, mock, "repay-1", "ISRACARD TRANSFER", 600.00)
	seedAPITxn(t, mock, "exp-1", "SUPERMARKET", -89.90)

	w := perform(t, router, http.MethodGet, "/api/reconcile/unmatched?vendor=leumi", nil)
	require.Equal(t, http.StatusOK, w.Code)
	repayments := decode[[]storage.Transaction](t, w)
	require.Len(t, repayments, 1)
	assert.Equal(t, "repay-1", repayments[0].Identifier)
}

package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mkeren/finsight-backend/internal/domain/domainerror"
	"github.com/mkeren/finsight-backend/internal/domain/matcher"
	"github.com/mkeren/finsight-backend/internal/infrastructure/storage"
)

// SuggestRequest asks for account candidates for one transaction.
type SuggestRequest struct {
	Identifier string
	Vendor     string
	// ClearResolved re-opens a transaction whose previous suggestion was
	// rejected or ignored. Without it, resolved transactions are skipped so
	// a nightly re-analysis does not resurrect dismissed proposals.
	ClearResolved bool
}

// SuggestionOutcome is the result of analyzing one transaction.
type SuggestionOutcome struct {
	Candidates []matcher.Candidate `json:"candidates"`
	// Suggestion is set when the top candidate cleared the auto-suggest
	// threshold and a pending row was written.
	Suggestion *storage.PendingSuggestion `json:"suggestion,omitempty"`
	// RequiresConfirmation is set on a written suggestion whose confidence
	// sits below the high-confidence threshold.
	RequiresConfirmation bool `json:"requires_confirmation"`
	// Skipped is set when the transaction was not analyzed at all.
	Skipped    bool   `json:"skipped"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// SuggestAccountsFor analyzes one transaction and, when the best candidate
// clears the auto-suggest threshold, writes a pending suggestion for it.
func (s *Service) SuggestAccountsFor(req SuggestRequest) (*SuggestionOutcome, error) {
	txn, err := s.store.GetTransaction(req.Identifier, req.Vendor)
	if err != nil {
		return nil, err
	}

	if link, err := s.store.GetLink(req.Identifier, req.Vendor); err != nil {
		return nil, err
	} else if link != nil {
		return &SuggestionOutcome{
			Skipped:    true,
			SkipReason: "transaction is already linked",
		}, nil
	}

	existing, err := s.store.GetSuggestionByKey(req.Identifier, req.Vendor)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != storage.SuggestionPending && !req.ClearResolved {
		return &SuggestionOutcome{
			Skipped:    true,
			SkipReason: fmt.Sprintf("suggestion was previously %s", existing.Status),
		}, nil
	}

	candidates, err := s.rankCandidates(txn.Name)
	if err != nil {
		return nil, err
	}

	outcome := &SuggestionOutcome{Candidates: candidates}
	if len(candidates) == 0 {
		s.logger.Debug("no candidates above confidence floor",
			"identifier", req.Identifier, "vendor", req.Vendor)
		return outcome, nil
	}

	top := candidates[0]
	if top.Confidence < s.matcher.Config().AutoSuggestThreshold {
		return outcome, nil
	}

	sg := &storage.PendingSuggestion{
		ID:                 uuid.NewString(),
		Identifier:         txn.Identifier,
		Vendor:             txn.Vendor,
		Name:               txn.Name,
		Amount:             txn.Amount,
		Date:               txn.Date,
		SuggestedAccountID: &top.AccountID,
		Confidence:         top.Confidence,
		MatchReason:        top.Reason,
	}
	if err := s.store.UpsertSuggestion(sg); err != nil {
		return nil, err
	}

	// The store keeps the original row id on upsert, so read the row back.
	written, err := s.store.GetSuggestionByKey(txn.Identifier, txn.Vendor)
	if err != nil {
		return nil, err
	}
	if written == nil {
		return nil, domainerror.Store("suggestion vanished after upsert", nil)
	}

	outcome.Suggestion = written
	outcome.RequiresConfirmation = top.Confidence < s.matcher.Config().HighConfidenceThreshold

	s.logger.Info("suggestion written",
		"identifier", txn.Identifier,
		"vendor", txn.Vendor,
		"account_id", top.AccountID,
		"confidence", top.Confidence,
		"requires_confirmation", outcome.RequiresConfirmation,
	)

	return outcome, nil
}

// AnalysisSummary reports a batch analysis over unmatched repayments.
type AnalysisSummary struct {
	Analyzed  int `json:"analyzed"`
	Suggested int `json:"suggested"`
	Skipped   int `json:"skipped"`
	NoMatch   int `json:"no_match"`
}

// AnalyzeUnmatched runs suggestion analysis over every unmatched repayment
// of a vendor. Individual failures abort the batch; partial progress is
// already persisted and safe to keep.
func (s *Service) AnalyzeUnmatched(vendor string, clearResolved bool) (*AnalysisSummary, error) {
	if vendor == "" {
		return nil, domainerror.Validation("vendor is required")
	}

	repayments, err := s.store.GetUnmatchedRepayments(vendor, storage.TransactionFilters{})
	if err != nil {
		return nil, err
	}

	summary := &AnalysisSummary{}
	for _, txn := range repayments {
		outcome, err := s.SuggestAccountsFor(SuggestRequest{
			Identifier:    txn.Identifier,
			Vendor:        txn.Vendor,
			ClearResolved: clearResolved,
		})
		if err != nil {
			return nil, err
		}

		summary.Analyzed++
		switch {
		case outcome.Skipped:
			summary.Skipped++
		case outcome.Suggestion != nil:
			summary.Suggested++
		default:
			summary.NoMatch++
		}
	}

	s.logger.Info("batch analysis finished",
		"vendor", vendor,
		"analyzed", summary.Analyzed,
		"suggested", summary.Suggested,
		"skipped", summary.Skipped,
		"no_match", summary.NoMatch,
	)

	return summary, nil
}

// rankCandidates loads active accounts and their patterns and scores the
// transaction name against them.
func (s *Service) rankCandidates(transactionName string) ([]matcher.Candidate, error) {
	accounts, err := s.store.ListAccounts(true)
	if err != nil {
		return nil, err
	}

	patterns, err := s.store.ListPatterns(nil)
	if err != nil {
		return nil, err
	}

	matcherAccounts := make([]matcher.Account, 0, len(accounts))
	for _, acct := range accounts {
		matcherAccounts = append(matcherAccounts, matcher.Account{
			ID:     acct.ID,
			Name:   acct.Name,
			Type:   acct.Type,
			Active: acct.Active,
		})
	}

	patternsByAccount := make(map[int64][]matcher.Pattern)
	for _, p := range patterns {
		patternsByAccount[p.AccountID] = append(patternsByAccount[p.AccountID], matcher.Pattern{
			Text:   p.Text,
			Kind:   p.Kind,
			Active: p.Active,
		})
	}

	return s.matcher.RankAccounts(transactionName, matcherAccounts, patternsByAccount), nil
}

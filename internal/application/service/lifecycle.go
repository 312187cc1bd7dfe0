package service

import (
	"github.com/mkeren/finsight-backend/internal/domain/domainerror"
	"github.com/mkeren/finsight-backend/internal/infrastructure/storage"
)

// Review actions a user can take on a pending suggestion.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionIgnore  = "ignore"
)

// ApplyAction resolves a pending suggestion. Approval cascades: the link is
// written and the matching patterns' usage counters are bumped in the same
// store transaction. Reject and ignore only close the suggestion.
func (s *Service) ApplyAction(id, action string) (*storage.PendingSuggestion, error) {
	switch action {
	case ActionApprove:
		sg, err := s.store.ApproveSuggestion(id)
		if err != nil {
			return nil, err
		}
		s.logger.Info("suggestion approved",
			"suggestion_id", id,
			"identifier", sg.Identifier,
			"vendor", sg.Vendor,
			"account_id", *sg.SuggestedAccountID,
		)
		return sg, nil

	case ActionReject, ActionIgnore:
		status := storage.SuggestionRejected
		if action == ActionIgnore {
			status = storage.SuggestionIgnored
		}
		if err := s.store.ResolveSuggestion(id, status); err != nil {
			return nil, err
		}
		s.logger.Info("suggestion resolved", "suggestion_id", id, "status", status)
		return s.store.GetSuggestion(id)

	default:
		return nil, domainerror.Newf(domainerror.KindValidation, "unknown action %q", action)
	}
}

// ListSuggestions returns suggestions filtered by status. An empty status
// returns everything.
func (s *Service) ListSuggestions(status string) ([]storage.PendingSuggestion, error) {
	switch status {
	case "", storage.SuggestionPending, storage.SuggestionApproved,
		storage.SuggestionRejected, storage.SuggestionIgnored:
	default:
		return nil, domainerror.Newf(domainerror.KindValidation, "unknown status %q", status)
	}
	return s.store.ListSuggestions(status)
}

// ManualLink links a transaction to an account directly, bypassing the
// suggestion flow. Any pending suggestion for the transaction is closed as
// ignored so it does not linger in the review queue.
func (s *Service) ManualLink(identifier, vendor string, accountID int64) (*storage.Link, error) {
	if _, err := s.store.GetTransaction(identifier, vendor); err != nil {
		return nil, err
	}
	if _, err := s.store.GetAccount(accountID); err != nil {
		return nil, err
	}

	if err := s.store.UpsertLink(identifier, vendor, accountID, storage.LinkMethodManual, 1.0); err != nil {
		return nil, err
	}

	if sg, err := s.store.GetSuggestionByKey(identifier, vendor); err == nil &&
		sg != nil && sg.Status == storage.SuggestionPending {
		if err := s.store.ResolveSuggestion(sg.ID, storage.SuggestionIgnored); err != nil {
			s.logger.Warn("failed to close superseded suggestion",
				"suggestion_id", sg.ID, "error", err)
		}
	}

	s.logger.Info("manual link written",
		"identifier", identifier, "vendor", vendor, "account_id", accountID)

	return s.store.GetLink(identifier, vendor)
}

// Unlink removes a transaction's link.
func (s *Service) Unlink(identifier, vendor string) error {
	return s.store.DeleteLink(identifier, vendor)
}

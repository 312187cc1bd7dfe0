package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mkeren/finsight-backend/internal/domain/domainerror"
)

// UpsertSuggestion writes the suggestion for its (identifier, vendor) key.
// A fresh analysis for an already-suggested transaction overwrites the
// proposal fields and resets the row to pending; the row keeps its id.
func (s *Storage) UpsertSuggestion(sg *PendingSuggestion) error {
	if sg.ID == "" {
		return domainerror.Validation("suggestion id is required")
	}
	if sg.Identifier == "" || sg.Vendor == "" {
		return domainerror.Validation("transaction identifier and vendor are required")
	}

	_, err := s.db.Exec(`
		INSERT INTO pending_suggestions
			(id, identifier, vendor, name, amount, date, suggested_account_id,
			 confidence, match_reason, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending')
		ON CONFLICT(identifier, vendor) DO UPDATE SET
			name = excluded.name,
			amount = excluded.amount,
			date = excluded.date,
			suggested_account_id = excluded.suggested_account_id,
			confidence = excluded.confidence,
			match_reason = excluded.match_reason,
			status = 'pending',
			reviewed_at = NULL
	`, sg.ID, sg.Identifier, sg.Vendor, sg.Name, sg.Amount, sg.Date,
		sg.SuggestedAccountID, sg.Confidence, sg.MatchReason)
	if err != nil {
		return domainerror.Store("failed to upsert suggestion", err)
	}

	return nil
}

// GetSuggestion retrieves a suggestion by id.
func (s *Storage) GetSuggestion(id string) (*PendingSuggestion, error) {
	row := s.db.QueryRow(suggestionSelect+` WHERE id = ?`, id)
	return scanSuggestion(row)
}

// GetSuggestionByKey retrieves the suggestion for a transaction key, nil
// when no row exists.
func (s *Storage) GetSuggestionByKey(identifier, vendor string) (*PendingSuggestion, error) {
	row := s.db.QueryRow(suggestionSelect+` WHERE identifier = ? AND vendor = ?`, identifier, vendor)
	sg, err := scanSuggestion(row)
	if domainerror.IsKind(err, domainerror.KindNotFound) {
		return nil, nil
	}
	return sg, err
}

// ListSuggestions returns suggestions, filtered by status when non-empty,
// newest first.
func (s *Storage) ListSuggestions(status string) ([]PendingSuggestion, error) {
	query := suggestionSelect
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, domainerror.Store("failed to list suggestions", err)
	}
	defer func() { _ = rows.Close() }()

	var suggestions []PendingSuggestion
	for rows.Next() {
		sg, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, *sg)
	}

	return suggestions, rows.Err()
}

// ResolveSuggestion moves a pending suggestion to a terminal status.
// Acting on an already-resolved suggestion is a conflict, never a silent
// overwrite.
func (s *Storage) ResolveSuggestion(id, status string) error {
	if status != SuggestionApproved && status != SuggestionRejected && status != SuggestionIgnored {
		return domainerror.Newf(domainerror.KindValidation, "invalid terminal status %q", status)
	}

	current, err := s.GetSuggestion(id)
	if err != nil {
		return err
	}
	if current.Status != SuggestionPending {
		return domainerror.Newf(domainerror.KindConflict,
			"suggestion %s is already %s", id, current.Status)
	}

	_, err = s.db.Exec(`
		UPDATE pending_suggestions SET status = ?, reviewed_at = ?
		WHERE id = ? AND status = 'pending'
	`, status, time.Now().UTC(), id)
	if err != nil {
		return domainerror.Store("failed to resolve suggestion", err)
	}

	return nil
}

// ApproveSuggestion runs the approval cascade atomically: mark the row
// approved, upsert the confirmed link, and bump the matching patterns'
// usage counters. A failure anywhere rolls back the whole transition.
func (s *Storage) ApproveSuggestion(id string) (*PendingSuggestion, error) {
	sg, err := s.GetSuggestion(id)
	if err != nil {
		return nil, err
	}
	if sg.Status != SuggestionPending {
		return nil, domainerror.Newf(domainerror.KindConflict,
			"suggestion %s is already %s", id, sg.Status)
	}
	if sg.SuggestedAccountID == nil {
		return nil, domainerror.Conflict("suggestion has no account to approve")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, domainerror.Store("failed to begin approval transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	reviewedAt := time.Now().UTC()
	result, err := tx.Exec(`
		UPDATE pending_suggestions SET status = 'approved', reviewed_at = ?
		WHERE id = ? AND status = 'pending'
	`, reviewedAt, id)
	if err != nil {
		return nil, domainerror.Store("failed to approve suggestion", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, domainerror.Store("failed to read approval result", err)
	}
	if affected == 0 {
		// Lost a race with a concurrent resolution.
		return nil, domainerror.Newf(domainerror.KindConflict, "suggestion %s is no longer pending", id)
	}

	if err := upsertLink(tx, sg.Identifier, sg.Vendor, *sg.SuggestedAccountID,
		LinkMethodUserConfirmed, sg.Confidence); err != nil {
		return nil, err
	}

	if err := recordMatch(tx, *sg.SuggestedAccountID, sg.Name); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, domainerror.Store("failed to commit approval", err)
	}

	sg.Status = SuggestionApproved
	sg.ReviewedAt = &reviewedAt
	return sg, nil
}

const suggestionSelect = `
	SELECT id, identifier, vendor, name, amount, date, suggested_account_id,
	       confidence, match_reason, status, created_at, reviewed_at
	FROM pending_suggestions`

func scanSuggestion(row scanner) (*PendingSuggestion, error) {
	sg := &PendingSuggestion{}
	var accountID sql.NullInt64
	var reason sql.NullString
	var reviewedAt sql.NullTime
	err := row.Scan(&sg.ID, &sg.Identifier, &sg.Vendor, &sg.Name, &sg.Amount, &sg.Date,
		&accountID, &sg.Confidence, &reason, &sg.Status, &sg.CreatedAt, &reviewedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerror.NotFound("suggestion")
	}
	if err != nil {
		return nil, domainerror.Store("failed to scan suggestion", err)
	}
	if accountID.Valid {
		v := accountID.Int64
		sg.SuggestedAccountID = &v
	}
	sg.MatchReason = reason.String
	if reviewedAt.Valid {
		t := reviewedAt.Time
		sg.ReviewedAt = &t
	}
	return sg, nil
}

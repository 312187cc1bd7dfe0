package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mkeren/finsight-backend/internal/domain/domainerror"
	"github.com/mkeren/finsight-backend/internal/domain/pattern"
)

// ListPatterns returns patterns ordered by account and creation, narrowed to
// one account when accountID is set.
func (s *Storage) ListPatterns(accountID *int64) ([]Pattern, error) {
	query := `
		SELECT id, account_id, pattern, kind, active, match_count, last_matched_at, created_at
		FROM account_patterns`
	var args []any

	if accountID != nil {
		query += ` WHERE account_id = ?`
		args = append(args, *accountID)
	}
	query += ` ORDER BY account_id ASC, id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, domainerror.Store("failed to list patterns", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []Pattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, *p)
	}

	return patterns, rows.Err()
}

// CreatePattern adds a matching rule for an account. Duplicate
// (account, text) pairs conflict; unknown kinds fail validation.
func (s *Storage) CreatePattern(accountID int64, text string, kind pattern.Kind) (*Pattern, error) {
	if text == "" {
		return nil, domainerror.Validation("pattern text is required")
	}
	if !kind.Valid() {
		return nil, domainerror.Newf(domainerror.KindValidation, "unknown pattern kind %q", kind)
	}

	result, err := s.db.Exec(`
		INSERT INTO account_patterns (account_id, pattern, kind) VALUES (?, ?, ?)
	`, accountID, text, string(kind))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainerror.Newf(domainerror.KindConflict,
				"pattern %q already exists for account %d", text, accountID)
		}
		return nil, domainerror.Store("failed to create pattern", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, domainerror.Store("failed to read pattern id", err)
	}

	row := s.db.QueryRow(`
		SELECT id, account_id, pattern, kind, active, match_count, last_matched_at, created_at
		FROM account_patterns WHERE id = ?
	`, id)
	return scanPattern(row)
}

// DeletePattern removes a rule by id.
func (s *Storage) DeletePattern(id int64) error {
	result, err := s.db.Exec(`DELETE FROM account_patterns WHERE id = ?`, id)
	if err != nil {
		return domainerror.Store("failed to delete pattern", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domainerror.Store("failed to read delete result", err)
	}
	if affected == 0 {
		return domainerror.NotFound("pattern")
	}
	return nil
}

// RecordMatch increments the usage counter and stamps last_matched_at on
// every active pattern of the account whose rule matches the transaction
// name. Called only from the approval path.
func (s *Storage) RecordMatch(accountID int64, transactionName string) error {
	return recordMatch(s.db, accountID, transactionName)
}

// recordMatch is the querier-generic implementation so the approve
// transaction can run it inside its sql.Tx. Rule evaluation happens in Go
// because sqlite cannot test the regex kind.
func recordMatch(q querier, accountID int64, transactionName string) error {
	rows, err := q.Query(`
		SELECT id, pattern, kind FROM account_patterns
		WHERE account_id = ? AND active = 1
	`, accountID)
	if err != nil {
		return domainerror.Store("failed to load patterns for match recording", err)
	}

	var matchedIDs []int64
	for rows.Next() {
		var id int64
		var text, kind string
		if err := rows.Scan(&id, &text, &kind); err != nil {
			_ = rows.Close()
			return domainerror.Store("failed to scan pattern", err)
		}
		if pattern.Matches(pattern.Kind(kind), text, transactionName) {
			matchedIDs = append(matchedIDs, id)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return domainerror.Store("failed to iterate patterns", err)
	}
	_ = rows.Close()

	now := time.Now().UTC()
	for _, id := range matchedIDs {
		_, err := q.Exec(`
			UPDATE account_patterns
			SET match_count = match_count + 1, last_matched_at = ?
			WHERE id = ?
		`, now, id)
		if err != nil {
			return domainerror.Store("failed to record pattern match", err)
		}
	}

	return nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPattern(row scanner) (*Pattern, error) {
	p := &Pattern{}
	var kind string
	var lastMatched sql.NullTime
	err := row.Scan(&p.ID, &p.AccountID, &p.Text, &kind, &p.Active, &p.MatchCount, &lastMatched, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerror.NotFound("pattern")
	}
	if err != nil {
		return nil, domainerror.Store("failed to scan pattern", err)
	}
	p.Kind = pattern.Kind(kind)
	if lastMatched.Valid {
		t := lastMatched.Time
		p.LastMatchedAt = &t
	}
	return p, nil
}

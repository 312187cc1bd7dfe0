package storage

import (
	"database/sql"
	"errors"

	"github.com/mkeren/finsight-backend/internal/domain/domainerror"
)

// UpsertLink writes the confirmed association for (identifier, vendor).
// Re-linking overwrites account/method/confidence; the store's conflict
// resolution keeps exactly one row per key.
func (s *Storage) UpsertLink(identifier, vendor string, accountID int64, method string, confidence float64) error {
	return upsertLink(s.db, identifier, vendor, accountID, method, confidence)
}

func upsertLink(q querier, identifier, vendor string, accountID int64, method string, confidence float64) error {
	if identifier == "" || vendor == "" {
		return domainerror.Validation("transaction identifier and vendor are required")
	}
	if !ValidLinkMethod(method) {
		return domainerror.Newf(domainerror.KindValidation, "unknown link method %q", method)
	}
	if confidence < 0 || confidence > 1 {
		return domainerror.Validation("confidence must be between 0 and 1")
	}

	_, err := q.Exec(`
		INSERT INTO transaction_links (identifier, vendor, account_id, method, confidence)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(identifier, vendor) DO UPDATE SET
			account_id = excluded.account_id,
			method = excluded.method,
			confidence = excluded.confidence
	`, identifier, vendor, accountID, method, confidence)
	if err != nil {
		return domainerror.Store("failed to upsert link", err)
	}

	return nil
}

// GetLink retrieves the link for a transaction key, nil when absent.
func (s *Storage) GetLink(identifier, vendor string) (*Link, error) {
	link := &Link{}
	err := s.db.QueryRow(`
		SELECT identifier, vendor, account_id, method, confidence, created_at
		FROM transaction_links WHERE identifier = ? AND vendor = ?
	`, identifier, vendor).Scan(&link.Identifier, &link.Vendor, &link.AccountID,
		&link.Method, &link.Confidence, &link.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domainerror.Store("failed to load link", err)
	}

	return link, nil
}

// ListLinks returns links joined with transaction snapshot fields and the
// account display name, newest first.
func (s *Storage) ListLinks(accountID *int64) ([]Link, error) {
	query := `
		SELECT l.identifier, l.vendor, l.account_id, l.method, l.confidence, l.created_at,
		       COALESCE(t.name, ''), COALESCE(t.amount, 0), COALESCE(t.date, l.created_at),
		       COALESCE(a.name, '')
		FROM transaction_links l
		LEFT JOIN transactions t ON t.identifier = l.identifier AND t.vendor = l.vendor
		LEFT JOIN accounts a ON a.id = l.account_id`
	var args []any

	if accountID != nil {
		query += ` WHERE l.account_id = ?`
		args = append(args, *accountID)
	}
	query += ` ORDER BY l.created_at DESC, l.identifier ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, domainerror.Store("failed to list links", err)
	}
	defer func() { _ = rows.Close() }()

	var links []Link
	for rows.Next() {
		var link Link
		if err := rows.Scan(&link.Identifier, &link.Vendor, &link.AccountID,
			&link.Method, &link.Confidence, &link.CreatedAt,
			&link.TransactionName, &link.Amount, &link.Date, &link.AccountName); err != nil {
			return nil, domainerror.Store("failed to scan link", err)
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

// DeleteLink removes the association for a transaction key. Pattern usage
// counters are not decremented.
func (s *Storage) DeleteLink(identifier, vendor string) error {
	result, err := s.db.Exec(`
		DELETE FROM transaction_links WHERE identifier = ? AND vendor = ?
	`, identifier, vendor)
	if err != nil {
		return domainerror.Store("failed to delete link", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domainerror.Store("failed to read delete result", err)
	}
	if affected == 0 {
		return domainerror.NotFound("link")
	}
	return nil
}

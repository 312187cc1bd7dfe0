package storage

import (
	"database/sql"
	"errors"

	"github.com/mkeren/finsight-backend/internal/domain/domainerror"
)

// SaveTransaction upserts a scraped transaction row. The scraping
// collaborator is the normal caller; tests use it for seeding.
func (s *Storage) SaveTransaction(txn *Transaction) error {
	if txn.Identifier == "" || txn.Vendor == "" {
		return domainerror.Validation("transaction identifier and vendor are required")
	}

	_, err := s.db.Exec(`
		INSERT INTO transactions (identifier, vendor, name, amount, date, category)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(identifier, vendor) DO UPDATE SET
			name = excluded.name,
			amount = excluded.amount,
			date = excluded.date,
			category = excluded.category
	`, txn.Identifier, txn.Vendor, txn.Name, txn.Amount, txn.Date, txn.Category)
	if err != nil {
		return domainerror.Store("failed to save transaction", err)
	}

	return nil
}

// GetTransaction retrieves a transaction by its composite key.
func (s *Storage) GetTransaction(identifier, vendor string) (*Transaction, error) {
	txn := &Transaction{}
	var category sql.NullString
	err := s.db.QueryRow(`
		SELECT identifier, vendor, name, amount, date, category
		FROM transactions WHERE identifier = ? AND vendor = ?
	`, identifier, vendor).Scan(&txn.Identifier, &txn.Vendor, &txn.Name, &txn.Amount, &txn.Date, &category)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerror.NotFound("transaction")
	}
	if err != nil {
		return nil, domainerror.Store("failed to load transaction", err)
	}
	txn.Category = category.String

	return txn, nil
}

// ListTransactions returns transactions matching the filters, ordered by
// (date, identifier).
func (s *Storage) ListTransactions(filters TransactionFilters) ([]Transaction, error) {
	query := `
		SELECT identifier, vendor, name, amount, date, category
		FROM transactions WHERE 1=1`
	var args []any

	if filters.Vendor != "" {
		query += ` AND vendor = ?`
		args = append(args, filters.Vendor)
	}
	if !filters.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, filters.From)
	}
	if !filters.To.IsZero() {
		query += ` AND date <= ?`
		args = append(args, filters.To)
	}
	if filters.Category != "" {
		query += ` AND category = ?`
		args = append(args, filters.Category)
	}
	query += ` ORDER BY date ASC, identifier ASC`

	return s.queryTransactions(query, args...)
}

// GetUnmatchedRepayments returns positive-amount transactions for the vendor
// in the date range that carry no link yet.
func (s *Storage) GetUnmatchedRepayments(vendor string, filters TransactionFilters) ([]Transaction, error) {
	query := `
		SELECT t.identifier, t.vendor, t.name, t.amount, t.date, t.category
		FROM transactions t
		LEFT JOIN transaction_links l
			ON l.identifier = t.identifier AND l.vendor = t.vendor
		WHERE t.vendor = ? AND t.amount > 0 AND l.identifier IS NULL`
	args := []any{vendor}

	if !filters.From.IsZero() {
		query += ` AND t.date >= ?`
		args = append(args, filters.From)
	}
	if !filters.To.IsZero() {
		query += ` AND t.date <= ?`
		args = append(args, filters.To)
	}
	query += ` ORDER BY t.date ASC, t.identifier ASC`

	return s.queryTransactions(query, args...)
}

// GetAvailableExpenses returns expense candidates for the vendor in the
// date range, each annotated with whether a link already exists for it.
func (s *Storage) GetAvailableExpenses(vendor string, filters TransactionFilters) ([]ExpenseCandidate, error) {
	query := `
		SELECT t.identifier, t.vendor, t.name, t.amount, t.date, t.category,
		       CASE WHEN l.identifier IS NULL THEN 0 ELSE 1 END AS matched
		FROM transactions t
		LEFT JOIN transaction_links l
			ON l.identifier = t.identifier AND l.vendor = t.vendor
		WHERE t.vendor = ?`
	args := []any{vendor}

	if !filters.From.IsZero() {
		query += ` AND t.date >= ?`
		args = append(args, filters.From)
	}
	if !filters.To.IsZero() {
		query += ` AND t.date <= ?`
		args = append(args, filters.To)
	}
	if filters.Category != "" {
		query += ` AND t.category = ?`
		args = append(args, filters.Category)
	}
	query += ` ORDER BY t.date ASC, t.identifier ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, domainerror.Store("failed to list expense candidates", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []ExpenseCandidate
	for rows.Next() {
		var c ExpenseCandidate
		var category sql.NullString
		if err := rows.Scan(&c.Identifier, &c.Vendor, &c.Name, &c.Amount, &c.Date, &category, &c.Matched); err != nil {
			return nil, domainerror.Store("failed to scan expense candidate", err)
		}
		c.Category = category.String
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}

// GetMatchingStats counts linked vs unlinked transactions for one vendor.
func (s *Storage) GetMatchingStats(vendor string) (*MatchingStats, error) {
	stats := &MatchingStats{Vendor: vendor}
	err := s.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN l.identifier IS NOT NULL THEN 1 END),
			COUNT(CASE WHEN l.identifier IS NULL THEN 1 END),
			COALESCE(SUM(CASE WHEN l.identifier IS NOT NULL THEN t.amount END), 0),
			COALESCE(SUM(CASE WHEN l.identifier IS NULL THEN t.amount END), 0)
		FROM transactions t
		LEFT JOIN transaction_links l
			ON l.identifier = t.identifier AND l.vendor = t.vendor
		WHERE t.vendor = ?
	`, vendor).Scan(&stats.Matched, &stats.Unmatched, &stats.MatchedAmount, &stats.UnmatchedAmount)
	if err != nil {
		return nil, domainerror.Store("failed to compute matching stats", err)
	}

	return stats, nil
}

// GetWeeklyMatchingStats buckets matched/unmatched counts by ISO week.
func (s *Storage) GetWeeklyMatchingStats(vendor string, filters TransactionFilters) ([]WeeklyMatchingStats, error) {
	query := `
		SELECT strftime('%Y-%W', t.date) AS week,
		       COUNT(CASE WHEN l.identifier IS NOT NULL THEN 1 END),
		       COUNT(CASE WHEN l.identifier IS NULL THEN 1 END)
		FROM transactions t
		LEFT JOIN transaction_links l
			ON l.identifier = t.identifier AND l.vendor = t.vendor
		WHERE t.vendor = ?`
	args := []any{vendor}

	if !filters.From.IsZero() {
		query += ` AND t.date >= ?`
		args = append(args, filters.From)
	}
	if !filters.To.IsZero() {
		query += ` AND t.date <= ?`
		args = append(args, filters.To)
	}
	query += ` GROUP BY week ORDER BY week ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, domainerror.Store("failed to compute weekly stats", err)
	}
	defer func() { _ = rows.Close() }()

	var weekly []WeeklyMatchingStats
	for rows.Next() {
		var w WeeklyMatchingStats
		if err := rows.Scan(&w.Week, &w.Matched, &w.Unmatched); err != nil {
			return nil, domainerror.Store("failed to scan weekly stats", err)
		}
		weekly = append(weekly, w)
	}

	return weekly, rows.Err()
}

func (s *Storage) queryTransactions(query string, args ...any) ([]Transaction, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, domainerror.Store("failed to query transactions", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []Transaction
	for rows.Next() {
		var txn Transaction
		var category sql.NullString
		if err := rows.Scan(&txn.Identifier, &txn.Vendor, &txn.Name, &txn.Amount, &txn.Date, &category); err != nil {
			return nil, domainerror.Store("failed to scan transaction", err)
		}
		txn.Category = category.String
		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

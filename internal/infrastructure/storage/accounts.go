package storage

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/mkeren/finsight-backend/internal/domain/domainerror"
)

// CreateAccount inserts a new account and returns it with its id set.
func (s *Storage) CreateAccount(name, accountType string) (*Account, error) {
	if name == "" {
		return nil, domainerror.Validation("account name is required")
	}
	if !ValidAccountType(accountType) {
		return nil, domainerror.Newf(domainerror.KindValidation, "unknown account type %q", accountType)
	}

	result, err := s.db.Exec(`
		INSERT INTO accounts (name, type) VALUES (?, ?)
	`, name, accountType)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainerror.Newf(domainerror.KindConflict, "account %q already exists", name)
		}
		return nil, domainerror.Store("failed to create account", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, domainerror.Store("failed to read account id", err)
	}

	return s.GetAccount(id)
}

// GetAccount retrieves an account by id.
func (s *Storage) GetAccount(id int64) (*Account, error) {
	acct := &Account{}
	err := s.db.QueryRow(`
		SELECT id, name, type, active, created_at
		FROM accounts WHERE id = ?
	`, id).Scan(&acct.ID, &acct.Name, &acct.Type, &acct.Active, &acct.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerror.NotFound("account")
	}
	if err != nil {
		return nil, domainerror.Store("failed to load account", err)
	}

	return acct, nil
}

// ListAccounts returns accounts ordered by name, optionally active only.
func (s *Storage) ListAccounts(activeOnly bool) ([]Account, error) {
	query := `SELECT id, name, type, active, created_at FROM accounts`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, domainerror.Store("failed to list accounts", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []Account
	for rows.Next() {
		var acct Account
		if err := rows.Scan(&acct.ID, &acct.Name, &acct.Type, &acct.Active, &acct.CreatedAt); err != nil {
			return nil, domainerror.Store("failed to scan account", err)
		}
		accounts = append(accounts, acct)
	}

	return accounts, rows.Err()
}

// isUniqueViolation reports whether err is a sqlite unique-constraint error.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

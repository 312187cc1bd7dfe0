package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkeren/finsight-backend/internal/domain/domainerror"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedTransaction(t *testing.T, s *Storage, identifier, vendor, name string, amount float64, date time.Time) {
	t.Helper()
	require.NoError(t, s.SaveTransaction(&Transaction{
		Identifier: identifier,
		Vendor:     vendor,
		Name:       name,
		Amount:     amount,
		Date:       date,
	}))
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := NewStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening must not re-run applied migrations.
	s, err = NewStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	var version int
	err = s.db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, len(allMigrations), version)
}

func TestCreateAndGetAccount(t *testing.T) {
	s := newTestStorage(t)

	acct, err := s.CreateAccount("Interactive Brokers", AccountTypeBrokerage)
	require.NoError(t, err)
	assert.NotZero(t, acct.ID)
	assert.True(t, acct.Active)

	got, err := s.GetAccount(acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "Interactive Brokers", got.Name)
	assert.Equal(t, AccountTypeBrokerage, got.Type)
}

func TestCreateAccountDuplicateNameConflicts(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.CreateAccount("Vanguard", AccountTypeBrokerage)
	require.NoError(t, err)

	_, err = s.CreateAccount("Vanguard", AccountTypeSavings)
	assert.True(t, domainerror.IsKind(err, domainerror.KindConflict))
}

func TestCreateAccountRejectsUnknownType(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.CreateAccount("Oddball", "mattress")
	assert.True(t, domainerror.IsKind(err, domainerror.KindValidation))
}

func TestGetAccountNotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetAccount(9999)
	assert.True(t, domainerror.IsKind(err, domainerror.KindNotFound))
}

func TestListAccountsActiveOnly(t *testing.T) {
	s := newTestStorage(t)

	a, err := s.CreateAccount("Alpha", AccountTypeChecking)
	require.NoError(t, err)
	_, err = s.CreateAccount("Beta", AccountTypeSavings)
	require.NoError(t, err)

	_, err = s.db.Exec(`UPDATE accounts SET active = 0 WHERE id = ?`, a.ID)
	require.NoError(t, err)

	all, err := s.ListAccounts(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := s.ListAccounts(true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Beta", active[0].Name)
}

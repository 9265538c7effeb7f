package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/enums"
	"github.com/ordercash/ordercash-backend/pkg/pagination"
)

func setupAccountsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	accounts := `
CREATE TABLE IF NOT EXISTS accounts (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  payment_method_id TEXT NOT NULL,
  name TEXT NOT NULL,
  balance NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (tenant_id, payment_method_id)
);`
	transactions := `
CREATE TABLE IF NOT EXISTS account_transactions (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  account_id TEXT NOT NULL,
  type TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  description TEXT NOT NULL,
  reference_type TEXT NOT NULL,
  reference_id TEXT,
  occurred_at DATETIME NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(accounts).Error)
	require.NoError(t, db.Exec(transactions).Error)
	return db
}

func newAccount(t *testing.T, db *gorm.DB, tenantID uuid.UUID, balance decimal.Decimal) *models.Account {
	t.Helper()

	account := &models.Account{
		TenantID:        tenantID,
		PaymentMethodID: uuid.New(),
		Name:            "Cash",
		Balance:         balance,
	}
	account.ID = uuid.New()
	require.NoError(t, db.Create(account).Error)
	return account
}

func reloadBalance(t *testing.T, db *gorm.DB, accountID uuid.UUID) decimal.Decimal {
	t.Helper()

	var account models.Account
	require.NoError(t, db.Where("id = ?", accountID).First(&account).Error)
	return account.Balance
}

func TestLedgerRecord_creditAndDebit(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)
	led, err := NewLedger(repo, nil)
	require.NoError(t, err)

	tenantID := uuid.New()
	account := newAccount(t, db, tenantID, decimal.Zero)

	paymentID := uuid.New()
	applied, err := led.Record(context.Background(), db, Entry{
		TenantID:        tenantID,
		PaymentMethodID: account.PaymentMethodID,
		Type:            enums.TransactionTypeCredit,
		Amount:          decimal.NewFromInt(100000),
		Description:     "payment received",
		ReferenceType:   enums.ReferenceTypePayment,
		ReferenceID:     paymentID,
	})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, reloadBalance(t, db, account.ID).Equal(decimal.NewFromInt(100000)))

	applied, err = led.Record(context.Background(), db, Entry{
		TenantID:        tenantID,
		PaymentMethodID: account.PaymentMethodID,
		Type:            enums.TransactionTypeDebit,
		Amount:          decimal.NewFromInt(30000),
		Description:     "supplier expense",
		ReferenceType:   enums.ReferenceTypeExpense,
		ReferenceID:     uuid.New(),
	})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, reloadBalance(t, db, account.ID).Equal(decimal.NewFromInt(70000)))

	txns, err := repo.FindTransactionsByReference(context.Background(), tenantID, enums.ReferenceTypePayment, paymentID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, enums.TransactionTypeCredit, txns[0].Type)
}

func TestLedgerRecord_skipsWhenNoAccount(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)
	led, err := NewLedger(repo, nil)
	require.NoError(t, err)

	applied, err := led.Record(context.Background(), db, Entry{
		TenantID:        uuid.New(),
		PaymentMethodID: uuid.New(),
		Type:            enums.TransactionTypeCredit,
		Amount:          decimal.NewFromInt(500),
		Description:     "payment received",
		ReferenceType:   enums.ReferenceTypePayment,
		ReferenceID:     uuid.New(),
	})
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestLedgerReverse_restoresBalanceAndRemovesEntries(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)
	led, err := NewLedger(repo, nil)
	require.NoError(t, err)

	tenantID := uuid.New()
	account := newAccount(t, db, tenantID, decimal.Zero)

	paymentID := uuid.New()
	_, err = led.Record(context.Background(), db, Entry{
		TenantID:        tenantID,
		PaymentMethodID: account.PaymentMethodID,
		Type:            enums.TransactionTypeCredit,
		Amount:          decimal.NewFromInt(30000),
		Description:     "payment received",
		ReferenceType:   enums.ReferenceTypePayment,
		ReferenceID:     paymentID,
	})
	require.NoError(t, err)

	applied, err := led.Reverse(context.Background(), db, tenantID, enums.ReferenceTypePayment, paymentID)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, reloadBalance(t, db, account.ID).IsZero())

	txns, err := repo.FindTransactionsByReference(context.Background(), tenantID, enums.ReferenceTypePayment, paymentID)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestLedgerReverse_noEntriesIsSkip(t *testing.T) {
	db := setupAccountsTestDB(t)
	led, err := NewLedger(NewRepository(db), nil)
	require.NoError(t, err)

	applied, err := led.Reverse(context.Background(), db, uuid.New(), enums.ReferenceTypePayment, uuid.New())
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestRepositoryListTransactions_pagination(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)

	tenantID := uuid.New()
	account := newAccount(t, db, tenantID, decimal.Zero)

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		txn := &models.AccountTransaction{
			TenantID:      tenantID,
			AccountID:     account.ID,
			Type:          enums.TransactionTypeCredit,
			Amount:        decimal.NewFromInt(int64(100 * (i + 1))),
			Description:   "payment received",
			ReferenceType: enums.ReferenceTypePayment,
			OccurredAt:    now.Add(time.Duration(i) * time.Minute),
			CreatedAt:     now.Add(time.Duration(i) * time.Minute),
		}
		txn.ID = uuid.New()
		require.NoError(t, db.Create(txn).Error)
	}

	first, next, err := repo.ListTransactions(context.Background(), tenantID, account.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotEmpty(t, next)
	assert.True(t, first[0].Amount.Equal(decimal.NewFromInt(300)))

	second, last, err := repo.ListTransactions(context.Background(), tenantID, account.ID, pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Empty(t, last)
	assert.True(t, second[0].Amount.Equal(decimal.NewFromInt(100)))
}

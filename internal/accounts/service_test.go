package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/enums"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/pagination"
)

type stubAccountsRepo struct {
	account *models.Account
	created *models.Account

	create           func(ctx context.Context, account *models.Account) (*models.Account, error)
	findByID         func(ctx context.Context, tenantID, id uuid.UUID) (*models.Account, error)
	listTransactions func(ctx context.Context, tenantID, accountID uuid.UUID, params pagination.Params) ([]models.AccountTransaction, string, error)
}

func (s *stubAccountsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubAccountsRepo) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if s.create != nil {
		return s.create(ctx, account)
	}
	s.created = account
	return account, nil
}

func (s *stubAccountsRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Account, error) {
	if s.findByID != nil {
		return s.findByID(ctx, tenantID, id)
	}
	if s.account != nil && s.account.ID == id && s.account.TenantID == tenantID {
		return s.account, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAccountsRepo) FindByPaymentMethod(ctx context.Context, tenantID, paymentMethodID uuid.UUID) (*models.Account, error) {
	panic("not implemented")
}

func (s *stubAccountsRepo) FindByPaymentMethodForUpdate(ctx context.Context, tenantID, paymentMethodID uuid.UUID) (*models.Account, error) {
	panic("not implemented")
}

func (s *stubAccountsRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Account, error) {
	if s.account != nil && s.account.TenantID == tenantID {
		return []models.Account{*s.account}, nil
	}
	return nil, nil
}

func (s *stubAccountsRepo) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	panic("not implemented")
}

func (s *stubAccountsRepo) CreateTransaction(ctx context.Context, txn *models.AccountTransaction) error {
	panic("not implemented")
}

func (s *stubAccountsRepo) FindTransactionsByReference(ctx context.Context, tenantID uuid.UUID, refType enums.ReferenceType, refID uuid.UUID) ([]models.AccountTransaction, error) {
	panic("not implemented")
}

func (s *stubAccountsRepo) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	panic("not implemented")
}

func (s *stubAccountsRepo) ListTransactions(ctx context.Context, tenantID, accountID uuid.UUID, params pagination.Params) ([]models.AccountTransaction, string, error) {
	if s.listTransactions != nil {
		return s.listTransactions(ctx, tenantID, accountID, params)
	}
	return nil, "", nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func TestServiceOpen_success(t *testing.T) {
	repo := &stubAccountsRepo{}
	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	tenantID := uuid.New()
	methodID := uuid.New()
	account, err := svc.Open(context.Background(), OpenInput{
		TenantID:        tenantID,
		PaymentMethodID: methodID,
		Name:            "  Cash  ",
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if account.Name != "Cash" {
		t.Fatalf("expected trimmed name, got %q", account.Name)
	}
	if !account.Balance.IsZero() {
		t.Fatalf("expected zero opening balance, got %s", account.Balance)
	}
	if repo.created == nil || repo.created.PaymentMethodID != methodID {
		t.Fatal("expected account persisted with payment method")
	}
}

func TestServiceOpen_validation(t *testing.T) {
	svc, err := NewService(&stubAccountsRepo{}, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Open(context.Background(), OpenInput{PaymentMethodID: uuid.New(), Name: "Cash"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.Open(context.Background(), OpenInput{TenantID: uuid.New(), PaymentMethodID: uuid.New()})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
}

func TestServiceOpen_duplicateMethod(t *testing.T) {
	repo := &stubAccountsRepo{
		create: func(ctx context.Context, account *models.Account) (*models.Account, error) {
			return nil, errors.New(`UNIQUE constraint failed: accounts.tenant_id, accounts.payment_method_id`)
		},
	}
	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Open(context.Background(), OpenInput{
		TenantID:        uuid.New(),
		PaymentMethodID: uuid.New(),
		Name:            "Cash",
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestServiceGet_notFound(t *testing.T) {
	svc, err := NewService(&stubAccountsRepo{}, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Get(context.Background(), uuid.New(), uuid.New())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceListTransactions_requiresAccount(t *testing.T) {
	svc, err := NewService(&stubAccountsRepo{}, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.ListTransactions(context.Background(), ListTransactionsInput{
		TenantID:  uuid.New(),
		AccountID: uuid.New(),
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

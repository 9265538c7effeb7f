package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/pkg/db"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the account read surface plus provisioning.
type Service interface {
	Open(ctx context.Context, input OpenInput) (*models.Account, error)
	Get(ctx context.Context, tenantID, accountID uuid.UUID) (*models.Account, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]models.Account, error)
	ListTransactions(ctx context.Context, input ListTransactionsInput) (*TransactionPage, error)
}

// OpenInput creates the mirrored account behind a payment method.
type OpenInput struct {
	TenantID        uuid.UUID
	PaymentMethodID uuid.UUID
	Name            string
}

// ListTransactionsInput pages through an account's journal.
type ListTransactionsInput struct {
	TenantID  uuid.UUID
	AccountID uuid.UUID
	Limit     int
	Cursor    string
}

// TransactionPage is one page of journal entries.
type TransactionPage struct {
	Transactions []models.AccountTransaction
	NextCursor   string
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the accounts service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Open(ctx context.Context, input OpenInput) (*models.Account, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.PaymentMethodID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method id required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account name required")
	}

	var created *models.Account
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		account := &models.Account{
			TenantID:        input.TenantID,
			PaymentMethodID: input.PaymentMethodID,
			Name:            name,
			Balance:         decimal.Zero,
		}
		account.ID = uuid.New()
		out, err := repo.Create(ctx, account)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "payment method already has an account")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
		}
		created = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, tenantID, accountID uuid.UUID) (*models.Account, error) {
	if tenantID == uuid.Nil || accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and account id required")
	}
	account, err := s.repo.FindByID(ctx, tenantID, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return account, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID) ([]models.Account, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	accounts, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accounts")
	}
	return accounts, nil
}

func (s *service) ListTransactions(ctx context.Context, input ListTransactionsInput) (*TransactionPage, error) {
	if input.TenantID == uuid.Nil || input.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and account id required")
	}
	if _, err := s.Get(ctx, input.TenantID, input.AccountID); err != nil {
		return nil, err
	}
	txns, next, err := s.repo.ListTransactions(ctx, input.TenantID, input.AccountID, pagination.Params{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list journal entries")
	}
	return &TransactionPage{Transactions: txns, NextCursor: next}, nil
}

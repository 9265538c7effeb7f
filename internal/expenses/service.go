package expenses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/internal/accounts"
	"github.com/ordercash/ordercash-backend/internal/sequence"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/enums"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/pagination"
)

const defaultCategory = "general"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records money paid out to suppliers. Each expense takes its number
// from the per-tenant expenses series and debits the paying account's ledger.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Expense, error)
	Get(ctx context.Context, tenantID, expenseID uuid.UUID) (*models.Expense, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) (*ExpenseList, error)
}

// CreateInput registers an outgoing payment.
type CreateInput struct {
	TenantID        uuid.UUID
	ActorID         uuid.UUID
	SupplierID      *uuid.UUID
	PaymentMethodID uuid.UUID
	Category        string
	Description     string
	Amount          decimal.Decimal
}

// ExpenseList is one page of expenses.
type ExpenseList struct {
	Expenses   []models.Expense
	NextCursor string
}

type service struct {
	repo       Repository
	ledger     accounts.Ledger
	tx         txRunner
	seq        sequence.Allocator
	seqRetries int
}

// NewService builds an expenses service with the required dependencies.
func NewService(repo Repository, ledger accounts.Ledger, tx txRunner, seq sequence.Allocator, seqRetries int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("expenses repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("account ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if seq == nil {
		return nil, fmt.Errorf("sequence allocator required")
	}
	if seqRetries <= 0 {
		seqRetries = 3
	}
	return &service{
		repo:       repo,
		ledger:     ledger,
		tx:         tx,
		seq:        seq,
		seqRetries: seqRetries,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Expense, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.PaymentMethodID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method id required")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense description required")
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense amount must be positive")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = defaultCategory
	}

	var created *models.Expense
	var err error
	for attempt := 0; attempt < s.seqRetries; attempt++ {
		created = nil
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			number, err := s.seq.Next(ctx, tx, input.TenantID, enums.SequenceSeriesExpenses)
			if err != nil {
				return err
			}

			expense := &models.Expense{
				TenantID:        input.TenantID,
				Number:          number,
				SupplierID:      input.SupplierID,
				PaymentMethodID: input.PaymentMethodID,
				Category:        category,
				Description:     description,
				Amount:          input.Amount,
			}
			expense.ID = uuid.New()
			if input.ActorID != uuid.Nil {
				actor := input.ActorID
				expense.RegisteredBy = &actor
			}
			if _, err := repo.Create(ctx, expense); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create expense")
			}

			if _, err := s.ledger.Record(ctx, tx, accounts.Entry{
				TenantID:        input.TenantID,
				PaymentMethodID: input.PaymentMethodID,
				Type:            enums.TransactionTypeDebit,
				Amount:          input.Amount,
				Description:     fmt.Sprintf("expense #%d: %s", number, description),
				ReferenceType:   enums.ReferenceTypeExpense,
				ReferenceID:     expense.ID,
			}); err != nil {
				return err
			}

			created = expense
			return nil
		})
		if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, tenantID, expenseID uuid.UUID) (*models.Expense, error) {
	if tenantID == uuid.Nil || expenseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and expense id required")
	}
	expense, err := s.repo.FindByID(ctx, tenantID, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load expense")
	}
	return expense, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) (*ExpenseList, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	rows, next, err := s.repo.List(ctx, tenantID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}
	return &ExpenseList{Expenses: rows, NextCursor: next}, nil
}

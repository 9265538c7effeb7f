package suppliers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/internal/expenses"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages supplier reference data. Deletion is refused while any
// expense still references the supplier; the check is explicit rather than a
// database cascade so the caller gets a proper conflict.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Supplier, error)
	Get(ctx context.Context, tenantID, supplierID uuid.UUID) (*models.Supplier, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]models.Supplier, error)
	Delete(ctx context.Context, tenantID, supplierID uuid.UUID) error
}

// CreateInput registers a supplier.
type CreateInput struct {
	TenantID uuid.UUID
	Name     string
	Email    *string
	Phone    *string
}

type service struct {
	repo     Repository
	expenses expenses.Repository
	tx       txRunner
}

// NewService builds a suppliers service with the required dependencies.
func NewService(repo Repository, expensesRepo expenses.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("suppliers repository required")
	}
	if expensesRepo == nil {
		return nil, fmt.Errorf("expenses repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, expenses: expensesRepo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Supplier, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name required")
	}

	supplier := &models.Supplier{
		TenantID: input.TenantID,
		Name:     name,
		Email:    input.Email,
		Phone:    input.Phone,
	}
	supplier.ID = uuid.New()
	if _, err := s.repo.Create(ctx, supplier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create supplier")
	}
	return supplier, nil
}

func (s *service) Get(ctx context.Context, tenantID, supplierID uuid.UUID) (*models.Supplier, error) {
	if tenantID == uuid.Nil || supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and supplier id required")
	}
	supplier, err := s.repo.FindByID(ctx, tenantID, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return supplier, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID) ([]models.Supplier, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	suppliers, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}
	return suppliers, nil
}

func (s *service) Delete(ctx context.Context, tenantID, supplierID uuid.UUID) error {
	if tenantID == uuid.Nil || supplierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant and supplier id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		expensesRepo := s.expenses.WithTx(tx)

		if _, err := repo.FindByID(ctx, tenantID, supplierID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
		}

		count, err := expensesRepo.CountBySupplier(ctx, tenantID, supplierID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count supplier expenses")
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "supplier is referenced by expenses").
				WithDetails(map[string]any{"expenses": count})
		}

		if err := repo.Delete(ctx, tenantID, supplierID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete supplier")
		}
		return nil
	})
}

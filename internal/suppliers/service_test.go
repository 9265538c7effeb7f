package suppliers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/internal/expenses"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/pagination"
)

type stubSuppliersRepo struct {
	supplier *models.Supplier
	deleted  bool
}

func (s *stubSuppliersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubSuppliersRepo) Create(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error) {
	s.supplier = supplier
	return supplier, nil
}

func (s *stubSuppliersRepo) FindByID(ctx context.Context, tenantID, supplierID uuid.UUID) (*models.Supplier, error) {
	if s.supplier != nil && s.supplier.ID == supplierID && s.supplier.TenantID == tenantID {
		return s.supplier, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSuppliersRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Supplier, error) {
	if s.supplier != nil {
		return []models.Supplier{*s.supplier}, nil
	}
	return nil, nil
}

func (s *stubSuppliersRepo) Delete(ctx context.Context, tenantID, supplierID uuid.UUID) error {
	s.deleted = true
	return nil
}

type stubExpensesRepo struct {
	count int64
}

func (s *stubExpensesRepo) WithTx(tx *gorm.DB) expenses.Repository {
	return s
}

func (s *stubExpensesRepo) Create(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	panic("not implemented")
}

func (s *stubExpensesRepo) FindByID(ctx context.Context, tenantID, expenseID uuid.UUID) (*models.Expense, error) {
	panic("not implemented")
}

func (s *stubExpensesRepo) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.Expense, string, error) {
	panic("not implemented")
}

func (s *stubExpensesRepo) CountBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) (int64, error) {
	return s.count, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *stubSuppliersRepo, expensesRepo *stubExpensesRepo) Service {
	t.Helper()

	svc, err := NewService(repo, expensesRepo, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func seedSupplier(tenantID uuid.UUID) *models.Supplier {
	supplier := &models.Supplier{TenantID: tenantID, Name: "Paper Co"}
	supplier.ID = uuid.New()
	return supplier
}

func TestDelete_removesUnreferencedSupplier(t *testing.T) {
	tenantID := uuid.New()
	repo := &stubSuppliersRepo{supplier: seedSupplier(tenantID)}
	svc := newTestService(t, repo, &stubExpensesRepo{})

	if err := svc.Delete(context.Background(), tenantID, repo.supplier.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !repo.deleted {
		t.Fatal("expected supplier removed")
	}
}

func TestDelete_refusedWhileReferencedByExpenses(t *testing.T) {
	tenantID := uuid.New()
	repo := &stubSuppliersRepo{supplier: seedSupplier(tenantID)}
	svc := newTestService(t, repo, &stubExpensesRepo{count: 3})

	err := svc.Delete(context.Background(), tenantID, repo.supplier.ID)
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if repo.deleted {
		t.Fatal("expected supplier kept")
	}
}

func TestDelete_notFound(t *testing.T) {
	svc := newTestService(t, &stubSuppliersRepo{}, &stubExpensesRepo{})

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreate_requiresName(t *testing.T) {
	svc := newTestService(t, &stubSuppliersRepo{}, &stubExpensesRepo{})

	_, err := svc.Create(context.Background(), CreateInput{TenantID: uuid.New(), Name: "  "})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_trimsName(t *testing.T) {
	repo := &stubSuppliersRepo{}
	svc := newTestService(t, repo, &stubExpensesRepo{})

	supplier, err := svc.Create(context.Background(), CreateInput{TenantID: uuid.New(), Name: "  Paper Co  "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if supplier.Name != "Paper Co" {
		t.Fatalf("expected trimmed name, got %q", supplier.Name)
	}
}

package customers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/pkg/db/models"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
)

type stubCustomersRepo struct {
	customer *models.Customer
}

func (s *stubCustomersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubCustomersRepo) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	s.customer = customer
	return customer, nil
}

func (s *stubCustomersRepo) FindByID(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error) {
	if s.customer != nil && s.customer.ID == customerID && s.customer.TenantID == tenantID {
		return s.customer, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCustomersRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Customer, error) {
	if s.customer != nil {
		return []models.Customer{*s.customer}, nil
	}
	return nil, nil
}

func TestCreateTrimsNameAndAssignsID(t *testing.T) {
	repo := &stubCustomersRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	tenantID := uuid.New()
	customer, err := svc.Create(context.Background(), CreateInput{
		TenantID: tenantID,
		Name:     "  Acme Retail  ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if customer.Name != "Acme Retail" {
		t.Fatalf("expected trimmed name, got %q", customer.Name)
	}
	if customer.ID == uuid.Nil {
		t.Fatal("expected a generated customer id")
	}
	if repo.customer == nil {
		t.Fatal("expected customer persisted through repository")
	}
}

func TestCreateRejectsBlankName(t *testing.T) {
	svc, err := NewService(&stubCustomersRepo{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{TenantID: uuid.New(), Name: "   "})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRequiresTenant(t *testing.T) {
	svc, err := NewService(&stubCustomersRepo{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{Name: "Acme"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetUnknownCustomerReturnsNotFound(t *testing.T) {
	svc, err := NewService(&stubCustomersRepo{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Get(context.Background(), uuid.New(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestGetScopesByTenant(t *testing.T) {
	repo := &stubCustomersRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	tenantID := uuid.New()
	created, err := svc.Create(context.Background(), CreateInput{TenantID: tenantID, Name: "Acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(context.Background(), tenantID, created.ID); err != nil {
		t.Fatalf("Get same tenant: %v", err)
	}

	_, err = svc.Get(context.Background(), uuid.New(), created.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected cross-tenant lookup to miss, got %v", err)
	}
}

func TestListReturnsTenantCustomers(t *testing.T) {
	repo := &stubCustomersRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	tenantID := uuid.New()
	if _, err := svc.Create(context.Background(), CreateInput{TenantID: tenantID, Name: "Acme"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	customers, err := svc.List(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(customers) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(customers))
	}
}

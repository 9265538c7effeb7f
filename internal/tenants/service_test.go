package tenants

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/internal/paymentmethods"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/enums"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
)

type stubTenantsRepo struct {
	tenant  *models.Tenant
	created *models.Tenant
}

func (s *stubTenantsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubTenantsRepo) Create(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error) {
	s.created = tenant
	return tenant, nil
}

func (s *stubTenantsRepo) FindByID(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	if s.tenant != nil && s.tenant.ID == tenantID {
		return s.tenant, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTenantsRepo) FindBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	if s.tenant != nil && s.tenant.Slug == slug {
		return s.tenant, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubMethodsService struct {
	created []paymentmethods.CreateInput
}

func (s *stubMethodsService) Create(ctx context.Context, input paymentmethods.CreateInput) (*models.PaymentMethod, error) {
	s.created = append(s.created, input)
	method := &models.PaymentMethod{TenantID: input.TenantID, Name: input.Name, Kind: input.Kind}
	method.ID = uuid.New()
	return method, nil
}

func (s *stubMethodsService) Get(ctx context.Context, tenantID, methodID uuid.UUID) (*models.PaymentMethod, error) {
	panic("not implemented")
}

func (s *stubMethodsService) List(ctx context.Context, tenantID uuid.UUID) ([]models.PaymentMethod, error) {
	panic("not implemented")
}

func TestProvision_seedsDefaultMethods(t *testing.T) {
	repo := &stubTenantsRepo{}
	methods := &stubMethodsService{}
	svc, err := NewService(repo, methods)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	tenant, err := svc.Provision(context.Background(), ProvisionInput{
		Name: "Imprenta Sol",
		Slug: "imprenta-sol",
	})
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if repo.created == nil || repo.created.Slug != "imprenta-sol" {
		t.Fatal("expected tenant persisted")
	}
	if len(methods.created) != 2 {
		t.Fatalf("expected 2 seeded methods, got %d", len(methods.created))
	}
	for _, input := range methods.created {
		if input.TenantID != tenant.ID {
			t.Fatal("expected seeded methods scoped to the tenant")
		}
	}
	if methods.created[0].Kind != enums.PaymentMethodKindCash {
		t.Fatalf("expected cash seeded first, got %s", methods.created[0].Kind)
	}
}

func TestProvision_normalizesSlug(t *testing.T) {
	repo := &stubTenantsRepo{}
	svc, err := NewService(repo, &stubMethodsService{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	tenant, err := svc.Provision(context.Background(), ProvisionInput{
		Name: "Imprenta Sol",
		Slug: "  IMPRENTA-SOL  ",
	})
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if tenant.Slug != "imprenta-sol" {
		t.Fatalf("expected normalized slug, got %q", tenant.Slug)
	}
}

func TestProvision_rejectsInvalidSlug(t *testing.T) {
	svc, err := NewService(&stubTenantsRepo{}, &stubMethodsService{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	for _, slug := range []string{"", "has space", "UPPER!", "-leading"} {
		if _, err := svc.Provision(context.Background(), ProvisionInput{Name: "x", Slug: slug}); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("slug %q: expected validation error, got %v", slug, err)
		}
	}
}

func TestGet_notFound(t *testing.T) {
	svc, err := NewService(&stubTenantsRepo{}, &stubMethodsService{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Get(context.Background(), uuid.New())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

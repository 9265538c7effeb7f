package tenants

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/internal/paymentmethods"
	"github.com/ordercash/ordercash-backend/pkg/db"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/enums"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// defaultMethods are seeded for every new tenant so the ledger has accounts
// to mirror onto from the first payment.
var defaultMethods = []struct {
	name string
	kind enums.PaymentMethodKind
}{
	{"Cash", enums.PaymentMethodKindCash},
	{"Bank transfer", enums.PaymentMethodKindTransfer},
}

// Service provisions tenants and resolves tenant identity.
type Service interface {
	Provision(ctx context.Context, input ProvisionInput) (*models.Tenant, error)
	Get(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error)
}

// ProvisionInput creates a tenant with its seed reference data.
type ProvisionInput struct {
	Name string
	Slug string
}

type service struct {
	repo    Repository
	methods paymentmethods.Service
}

// NewService builds the tenants service.
func NewService(repo Repository, methods paymentmethods.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tenants repository required")
	}
	if methods == nil {
		return nil, fmt.Errorf("payment methods service required")
	}
	return &service{repo: repo, methods: methods}, nil
}

func (s *service) Provision(ctx context.Context, input ProvisionInput) (*models.Tenant, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant name required")
	}
	slug := strings.TrimSpace(strings.ToLower(input.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase letters, digits and dashes")
	}

	tenant := &models.Tenant{
		Name:   name,
		Slug:   slug,
		Active: true,
	}
	tenant.ID = uuid.New()
	if _, err := s.repo.Create(ctx, tenant); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tenant")
	}

	for _, seed := range defaultMethods {
		if _, err := s.methods.Create(ctx, paymentmethods.CreateInput{
			TenantID: tenant.ID,
			Name:     seed.name,
			Kind:     seed.kind,
		}); err != nil {
			return nil, err
		}
	}
	return tenant, nil
}

func (s *service) Get(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	tenant, err := s.repo.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}
	return tenant, nil
}

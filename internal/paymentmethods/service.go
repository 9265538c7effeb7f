package paymentmethods

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/internal/accounts"
	"github.com/ordercash/ordercash-backend/pkg/db"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/enums"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
)

const cacheScope = "payment_methods"

// cache is the slice of the redis client the service needs. The cache is
// strictly an accelerator; misses and redis failures fall through to the DB.
type cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

// Service exposes the payment method reference data.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.PaymentMethod, error)
	Get(ctx context.Context, tenantID, methodID uuid.UUID) (*models.PaymentMethod, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]models.PaymentMethod, error)
}

// CreateInput registers a payment method and opens its mirrored account.
type CreateInput struct {
	TenantID uuid.UUID
	Name     string
	Kind     enums.PaymentMethodKind
}

type service struct {
	repo     Repository
	accounts accounts.Service
	cache    cache
	cacheTTL time.Duration
}

// NewService builds the payment methods service. Cache may be nil.
func NewService(repo Repository, accountsSvc accounts.Service, c cache, ttl time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment methods repository required")
	}
	if accountsSvc == nil {
		return nil, fmt.Errorf("accounts service required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		repo:     repo,
		accounts: accountsSvc,
		cache:    c,
		cacheTTL: ttl,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.PaymentMethod, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method name required")
	}
	kind := input.Kind
	if kind == "" {
		kind = enums.PaymentMethodKindCash
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method kind")
	}

	method := &models.PaymentMethod{
		TenantID: input.TenantID,
		Name:     name,
		Kind:     kind,
		Active:   true,
	}
	method.ID = uuid.New()
	if _, err := s.repo.Create(ctx, method); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment method name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment method")
	}

	if _, err := s.accounts.Open(ctx, accounts.OpenInput{
		TenantID:        input.TenantID,
		PaymentMethodID: method.ID,
		Name:            name,
	}); err != nil {
		return nil, err
	}

	s.invalidate(ctx, input.TenantID)
	return method, nil
}

func (s *service) Get(ctx context.Context, tenantID, methodID uuid.UUID) (*models.PaymentMethod, error) {
	if tenantID == uuid.Nil || methodID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and payment method id required")
	}
	method, err := s.repo.FindByID(ctx, tenantID, methodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment method not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment method")
	}
	return method, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID) ([]models.PaymentMethod, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}

	if cached, ok := s.fromCache(ctx, tenantID); ok {
		return cached, nil
	}

	methods, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment methods")
	}
	s.toCache(ctx, tenantID, methods)
	return methods, nil
}

func (s *service) fromCache(ctx context.Context, tenantID uuid.UUID) ([]models.PaymentMethod, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.cache.CacheKey(cacheScope, tenantID.String()))
	if err != nil {
		return nil, false
	}
	var methods []models.PaymentMethod
	if err := json.Unmarshal([]byte(raw), &methods); err != nil {
		return nil, false
	}
	return methods, true
}

func (s *service) toCache(ctx context.Context, tenantID uuid.UUID, methods []models.PaymentMethod) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(methods)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, s.cache.CacheKey(cacheScope, tenantID.String()), string(payload), s.cacheTTL)
}

func (s *service) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, s.cache.CacheKey(cacheScope, tenantID.String()))
}

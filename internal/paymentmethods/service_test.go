package paymentmethods

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/internal/accounts"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/enums"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
)

type stubMethodsRepo struct {
	methods []models.PaymentMethod

	created   *models.PaymentMethod
	createErr error
	listCalls int
}

func (s *stubMethodsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubMethodsRepo) Create(ctx context.Context, method *models.PaymentMethod) (*models.PaymentMethod, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = method
	return method, nil
}

func (s *stubMethodsRepo) FindByID(ctx context.Context, tenantID, methodID uuid.UUID) (*models.PaymentMethod, error) {
	for i := range s.methods {
		if s.methods[i].ID == methodID && s.methods[i].TenantID == tenantID {
			return &s.methods[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubMethodsRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.PaymentMethod, error) {
	s.listCalls++
	return s.methods, nil
}

type stubAccountsService struct {
	opened []accounts.OpenInput
}

func (s *stubAccountsService) Open(ctx context.Context, input accounts.OpenInput) (*models.Account, error) {
	s.opened = append(s.opened, input)
	account := &models.Account{TenantID: input.TenantID, PaymentMethodID: input.PaymentMethodID, Name: input.Name}
	account.ID = uuid.New()
	return account, nil
}

func (s *stubAccountsService) Get(ctx context.Context, tenantID, accountID uuid.UUID) (*models.Account, error) {
	panic("not implemented")
}

func (s *stubAccountsService) List(ctx context.Context, tenantID uuid.UUID) ([]models.Account, error) {
	panic("not implemented")
}

func (s *stubAccountsService) ListTransactions(ctx context.Context, input accounts.ListTransactionsInput) (*accounts.TransactionPage, error) {
	panic("not implemented")
}

type stubCache struct {
	data map[string]string
	sets int
	dels int
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string]string)}
}

func (s *stubCache) Get(ctx context.Context, key string) (string, error) {
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return "", gorm.ErrRecordNotFound
}

func (s *stubCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.sets++
	s.data[key] = value.(string)
	return nil
}

func (s *stubCache) Del(ctx context.Context, keys ...string) error {
	s.dels++
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *stubCache) CacheKey(parts ...string) string {
	key := "oc:cache"
	for _, part := range parts {
		key += ":" + part
	}
	return key
}

func TestCreate_opensAccountAndInvalidatesCache(t *testing.T) {
	repo := &stubMethodsRepo{}
	accountsSvc := &stubAccountsService{}
	cache := newStubCache()
	svc, err := NewService(repo, accountsSvc, cache, time.Minute)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	tenantID := uuid.New()
	method, err := svc.Create(context.Background(), CreateInput{
		TenantID: tenantID,
		Name:     "Bank transfer",
		Kind:     enums.PaymentMethodKindTransfer,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if repo.created == nil || repo.created.Name != "Bank transfer" {
		t.Fatal("expected method persisted")
	}
	if len(accountsSvc.opened) != 1 || accountsSvc.opened[0].PaymentMethodID != method.ID {
		t.Fatal("expected mirrored account opened for the method")
	}
	if cache.dels != 1 {
		t.Fatal("expected tenant cache invalidated")
	}
}

func TestCreate_defaultsKindToCash(t *testing.T) {
	repo := &stubMethodsRepo{}
	svc, err := NewService(repo, &stubAccountsService{}, nil, time.Minute)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	method, err := svc.Create(context.Background(), CreateInput{
		TenantID: uuid.New(),
		Name:     "Register",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if method.Kind != enums.PaymentMethodKindCash {
		t.Fatalf("expected cash kind, got %s", method.Kind)
	}
}

func TestCreate_rejectsUnknownKind(t *testing.T) {
	svc, err := NewService(&stubMethodsRepo{}, &stubAccountsService{}, nil, time.Minute)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{
		TenantID: uuid.New(),
		Name:     "Crypto",
		Kind:     enums.PaymentMethodKind("crypto"),
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestList_populatesAndServesFromCache(t *testing.T) {
	tenantID := uuid.New()
	method := models.PaymentMethod{TenantID: tenantID, Name: "Cash", Kind: enums.PaymentMethodKindCash}
	method.ID = uuid.New()
	repo := &stubMethodsRepo{methods: []models.PaymentMethod{method}}
	cache := newStubCache()
	svc, err := NewService(repo, &stubAccountsService{}, cache, time.Minute)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	first, err := svc.List(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(first) != 1 || repo.listCalls != 1 || cache.sets != 1 {
		t.Fatalf("expected DB hit plus cache fill, listCalls=%d sets=%d", repo.listCalls, cache.sets)
	}

	second, err := svc.List(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected cached read, listCalls=%d", repo.listCalls)
	}
	if len(second) != 1 || second[0].ID != method.ID {
		t.Fatal("expected cached payload to round-trip")
	}
}

func TestList_ignoresCorruptCacheEntries(t *testing.T) {
	tenantID := uuid.New()
	repo := &stubMethodsRepo{}
	cache := newStubCache()
	cache.data[cache.CacheKey("payment_methods", tenantID.String())] = "{not json"
	svc, err := NewService(repo, &stubAccountsService{}, cache, time.Minute)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.List(context.Background(), tenantID); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatal("expected fallthrough to the repository")
	}
}

func TestList_worksWithoutCache(t *testing.T) {
	tenantID := uuid.New()
	method := models.PaymentMethod{TenantID: tenantID, Name: "Cash"}
	method.ID = uuid.New()
	repo := &stubMethodsRepo{methods: []models.PaymentMethod{method}}
	svc, err := NewService(repo, &stubAccountsService{}, nil, 0)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	methods, err := svc.List(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(methods) != 1 {
		t.Fatalf("expected 1 method, got %d", len(methods))
	}
}

func TestCachePayloadShape(t *testing.T) {
	method := models.PaymentMethod{Name: "Cash", Kind: enums.PaymentMethodKindCash}
	method.ID = uuid.New()
	payload, err := json.Marshal([]models.PaymentMethod{method})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded []models.PaymentMethod
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded[0].ID != method.ID || decoded[0].Kind != method.Kind {
		t.Fatal("expected cache payload to round-trip")
	}
}

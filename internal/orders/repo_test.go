package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/enums"
	"github.com/ordercash/ordercash-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  number INTEGER NOT NULL,
  customer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  operational_status TEXT NOT NULL DEFAULT 'pending',
  subtotal NUMERIC NOT NULL,
  tax_rate NUMERIC NOT NULL DEFAULT 0,
  tax_amount NUMERIC NOT NULL DEFAULT 0,
  discount NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  balance NUMERIC NOT NULL,
  registered_by TEXT,
  notes TEXT,
  cancellation_reason TEXT,
  delivered_at DATETIME,
  completed_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (tenant_id, number)
);`
	items := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  description TEXT NOT NULL,
  quantity NUMERIC NOT NULL,
  unit_price NUMERIC NOT NULL,
  amount NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	payments := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  payment_method_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  registered_by TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	history := `
CREATE TABLE IF NOT EXISTS order_status_histories (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  field TEXT NOT NULL,
  from_status TEXT NOT NULL,
  to_status TEXT NOT NULL,
  actor_id TEXT,
  reason TEXT,
  created_at DATETIME
);`
	for _, stmt := range []string{ordersTable, items, payments, history} {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func seedOrder(t *testing.T, conn *gorm.DB, tenantID uuid.UUID, number int64, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		TenantID:          tenantID,
		Number:            number,
		CustomerID:        uuid.New(),
		Status:            status,
		OperationalStatus: enums.OperationalStatusPending,
		Subtotal:          decimal.NewFromInt(1000),
		Total:             decimal.NewFromInt(1000),
		Balance:           decimal.NewFromInt(1000),
		CreatedAt:         createdAt,
	}
	order.ID = uuid.New()
	require.NoError(t, conn.Create(order).Error)
	return order
}

func TestRepository_FindByIDPreloadsItemsAndPayments(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	tenantID := uuid.New()

	order := seedOrder(t, conn, tenantID, 1, enums.OrderStatusActive, time.Now().UTC())

	item := models.OrderItem{
		TenantID:    tenantID,
		OrderID:     order.ID,
		Description: "business cards",
		Quantity:    decimal.NewFromInt(500),
		UnitPrice:   decimal.NewFromInt(2),
		Amount:      decimal.NewFromInt(1000),
	}
	item.ID = uuid.New()
	require.NoError(t, repo.CreateItems(ctx, []models.OrderItem{item}))

	payment := models.Payment{
		TenantID:        tenantID,
		OrderID:         order.ID,
		PaymentMethodID: uuid.New(),
		Amount:          decimal.NewFromInt(400),
	}
	payment.ID = uuid.New()
	require.NoError(t, conn.Create(&payment).Error)

	found, err := repo.FindByID(ctx, tenantID, order.ID)
	require.NoError(t, err)
	assert.Len(t, found.Items, 1)
	assert.Len(t, found.Payments, 1)
	assert.Equal(t, "business cards", found.Items[0].Description)

	_, err = repo.FindByID(ctx, uuid.New(), order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_FindByIDForUpdate(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	tenantID := uuid.New()

	order := seedOrder(t, conn, tenantID, 2, enums.OrderStatusActive, time.Now().UTC())

	found, err := repo.FindByIDForUpdate(context.Background(), tenantID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
}

func TestRepository_ListFiltersByStatus(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	tenantID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	seedOrder(t, conn, tenantID, 10, enums.OrderStatusActive, base)
	seedOrder(t, conn, tenantID, 11, enums.OrderStatusCompleted, base.Add(time.Minute))
	seedOrder(t, conn, tenantID, 12, enums.OrderStatusActive, base.Add(2*time.Minute))

	status := enums.OrderStatusActive
	list, err := repo.List(ctx, tenantID, pagination.Params{}, ListFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, list.Orders, 2)
	for _, row := range list.Orders {
		assert.Equal(t, enums.OrderStatusActive, row.Status)
	}
}

func TestRepository_ListPaginates(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	tenantID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	seedOrder(t, conn, tenantID, 20, enums.OrderStatusActive, base)
	seedOrder(t, conn, tenantID, 21, enums.OrderStatusActive, base.Add(time.Minute))
	seedOrder(t, conn, tenantID, 22, enums.OrderStatusActive, base.Add(2*time.Minute))

	first, err := repo.List(ctx, tenantID, pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.NotEmpty(t, first.NextCursor)
	assert.Equal(t, int64(22), first.Orders[0].Number)
	assert.Equal(t, int64(21), first.Orders[1].Number)

	second, err := repo.List(ctx, tenantID, pagination.Params{Limit: 2, Cursor: first.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Equal(t, int64(20), second.Orders[0].Number)
	assert.Empty(t, second.NextCursor)
}

func TestRepository_ListScopedToTenant(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	tenantID := uuid.New()

	seedOrder(t, conn, tenantID, 30, enums.OrderStatusActive, time.Now().UTC())
	seedOrder(t, conn, uuid.New(), 30, enums.OrderStatusActive, time.Now().UTC())

	list, err := repo.List(ctx, tenantID, pagination.Params{}, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, list.Orders, 1)
}

func TestRepository_CountPayments(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	tenantID := uuid.New()

	order := seedOrder(t, conn, tenantID, 40, enums.OrderStatusActive, time.Now().UTC())

	count, err := repo.CountPayments(ctx, order.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	for i := 0; i < 2; i++ {
		payment := models.Payment{
			TenantID:        tenantID,
			OrderID:         order.ID,
			PaymentMethodID: uuid.New(),
			Amount:          decimal.NewFromInt(100),
		}
		payment.ID = uuid.New()
		require.NoError(t, conn.Create(&payment).Error)
	}

	count, err = repo.CountPayments(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRepository_StatusHistoryRoundTrip(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	tenantID := uuid.New()

	order := seedOrder(t, conn, tenantID, 50, enums.OrderStatusActive, time.Now().UTC())

	first := &models.OrderStatusHistory{
		TenantID:   tenantID,
		OrderID:    order.ID,
		Field:      "status",
		FromStatus: "",
		ToStatus:   "active",
		CreatedAt:  time.Now().UTC().Add(-time.Minute),
	}
	first.ID = uuid.New()
	require.NoError(t, repo.CreateStatusHistory(ctx, first))

	reason := "payment deleted"
	second := &models.OrderStatusHistory{
		TenantID:   tenantID,
		OrderID:    order.ID,
		Field:      "status",
		FromStatus: "completed",
		ToStatus:   "active",
		Reason:     &reason,
		CreatedAt:  time.Now().UTC(),
	}
	second.ID = uuid.New()
	require.NoError(t, repo.CreateStatusHistory(ctx, second))

	entries, err := repo.FindStatusHistory(ctx, tenantID, order.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "active", entries[0].ToStatus)
	require.NotNil(t, entries[1].Reason)
	assert.Equal(t, reason, *entries[1].Reason)
}

func TestRepository_ReplaceItemsLifecycle(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	tenantID := uuid.New()

	order := seedOrder(t, conn, tenantID, 60, enums.OrderStatusActive, time.Now().UTC())

	item := models.OrderItem{
		TenantID:    tenantID,
		OrderID:     order.ID,
		Description: "flyers",
		Quantity:    decimal.NewFromInt(100),
		UnitPrice:   decimal.NewFromInt(10),
		Amount:      decimal.NewFromInt(1000),
	}
	item.ID = uuid.New()
	require.NoError(t, repo.CreateItems(ctx, []models.OrderItem{item}))

	require.NoError(t, repo.DeleteItems(ctx, order.ID))

	remaining, err := repo.FindItems(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

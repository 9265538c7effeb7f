package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateItems(ctx context.Context, items []models.OrderItem) error
	DeleteItems(ctx context.Context, orderID uuid.UUID) error
	FindByID(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error)
	CountPayments(ctx context.Context, orderID uuid.UUID) (int64, error)
	CreateStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	FindStatusHistory(ctx context.Context, tenantID, orderID uuid.UUID) ([]models.OrderStatusHistory, error)
}

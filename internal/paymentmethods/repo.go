package paymentmethods

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/pkg/db/models"
)

// Repository persists the tenant's payment method reference data.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, method *models.PaymentMethod) (*models.PaymentMethod, error)
	FindByID(ctx context.Context, tenantID, methodID uuid.UUID) (*models.PaymentMethod, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.PaymentMethod, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payment methods repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, method *models.PaymentMethod) (*models.PaymentMethod, error) {
	if err := r.db.WithContext(ctx).Create(method).Error; err != nil {
		return nil, err
	}
	return method, nil
}

func (r *repository) FindByID(ctx context.Context, tenantID, methodID uuid.UUID) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, methodID).
		First(&method).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&methods).Error
	if err != nil {
		return nil, err
	}
	return methods, nil
}

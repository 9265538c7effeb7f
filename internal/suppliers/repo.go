package suppliers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/pkg/db/models"
)

// Repository persists supplier reference data.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error)
	FindByID(ctx context.Context, tenantID, supplierID uuid.UUID) (*models.Supplier, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Supplier, error)
	Delete(ctx context.Context, tenantID, supplierID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a suppliers repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error) {
	if err := r.db.WithContext(ctx).Create(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

func (r *repository) FindByID(ctx context.Context, tenantID, supplierID uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, supplierID).
		First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&suppliers).Error
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (r *repository) Delete(ctx context.Context, tenantID, supplierID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, supplierID).
		Delete(&models.Supplier{}).Error
}

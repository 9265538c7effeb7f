package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/pkg/db/models"
)

// Repository persists customer reference data.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	FindByID(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Customer, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a customers repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *repository) FindByID(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/pkg/db"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
)

// Repository persists payments and resolves payment method references.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindByID(ctx context.Context, tenantID, paymentID uuid.UUID) (*models.Payment, error)
	FindByIDForUpdate(ctx context.Context, tenantID, paymentID uuid.UUID) (*models.Payment, error)
	ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]models.Payment, error)
	Update(ctx context.Context, paymentID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, paymentID uuid.UUID) error
	FindPaymentMethod(ctx context.Context, tenantID, methodID uuid.UUID) (*models.PaymentMethod, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *repository) FindByID(ctx context.Context, tenantID, paymentID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, paymentID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, tenantID, paymentID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := db.ForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, paymentID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repository) Update(ctx context.Context, paymentID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, paymentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", paymentID).
		Delete(&models.Payment{}).Error
}

func (r *repository) FindPaymentMethod(ctx context.Context, tenantID, methodID uuid.UUID) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, methodID).
		First(&method).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

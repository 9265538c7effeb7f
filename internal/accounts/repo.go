package accounts

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/pkg/db"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/enums"
	"github.com/ordercash/ordercash-backend/pkg/pagination"
)

// Repository persists accounts and their journal.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Account, error)
	FindByPaymentMethod(ctx context.Context, tenantID, paymentMethodID uuid.UUID) (*models.Account, error)
	FindByPaymentMethodForUpdate(ctx context.Context, tenantID, paymentMethodID uuid.UUID) (*models.Account, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Account, error)
	AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error
	CreateTransaction(ctx context.Context, txn *models.AccountTransaction) error
	FindTransactionsByReference(ctx context.Context, tenantID uuid.UUID, refType enums.ReferenceType, refID uuid.UUID) ([]models.AccountTransaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	ListTransactions(ctx context.Context, tenantID, accountID uuid.UUID, params pagination.Params) ([]models.AccountTransaction, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an accounts repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

func (r *repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindByPaymentMethod(ctx context.Context, tenantID, paymentMethodID uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND payment_method_id = ?", tenantID, paymentMethodID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindByPaymentMethodForUpdate(ctx context.Context, tenantID, paymentMethodID uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := db.ForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND payment_method_id = ?", tenantID, paymentMethodID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("balance", gorm.Expr("balance + ?", delta)).Error
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.AccountTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) FindTransactionsByReference(ctx context.Context, tenantID uuid.UUID, refType enums.ReferenceType, refID uuid.UUID) ([]models.AccountTransaction, error) {
	var txns []models.AccountTransaction
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ?", tenantID, refType, refID).
		Order("created_at ASC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.AccountTransaction{}).Error
}

func (r *repository) ListTransactions(ctx context.Context, tenantID, accountID uuid.UUID, params pagination.Params) ([]models.AccountTransaction, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND account_id = ?", tenantID, accountID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var txns []models.AccountTransaction
	if err := query.Find(&txns).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return txns, next, nil
}

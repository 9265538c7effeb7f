package expenses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/pagination"
)

// Repository persists expenses.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	FindByID(ctx context.Context, tenantID, expenseID uuid.UUID) (*models.Expense, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.Expense, string, error)
	CountBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an expenses repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	if err := r.db.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, err
	}
	return expense, nil
}

func (r *repository) FindByID(ctx context.Context, tenantID, expenseID uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, expenseID).
		First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.Expense, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
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

	var rows []models.Expense
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

func (r *repository) CountBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Where("tenant_id = ? AND supplier_id = ?", tenantID, supplierID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

package sequence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/pkg/db"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/enums"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
)

// Allocator hands out per-tenant monotonic numbers. Next must run inside the
// caller's transaction so the allocated number commits or rolls back together
// with the row that uses it.
type Allocator interface {
	Next(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, series enums.SequenceSeries) (int64, error)
}

type allocator struct{}

// NewAllocator exposes the default row-locking allocator.
func NewAllocator() Allocator {
	return allocator{}
}

func (allocator) Next(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, series enums.SequenceSeries) (int64, error) {
	if tx == nil {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for sequence allocation")
	}
	if tenantID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if !series.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "unknown sequence series")
	}

	var seq models.TenantSequence
	err := db.ForUpdate(tx.WithContext(ctx)).
		Where("tenant_id = ? AND series = ?", tenantID, series).
		First(&seq).Error
	if err == nil {
		next := seq.LastValue + 1
		res := tx.WithContext(ctx).
			Model(&models.TenantSequence{}).
			Where("id = ?", seq.ID).
			Update("last_value", next)
		if res.Error != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "advance sequence")
		}
		return next, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sequence")
	}

	// Lazy seed on first use. Losing the insert race means another writer
	// seeded the row between our read and write; the caller retries.
	seq = models.TenantSequence{
		TenantID:  tenantID,
		Series:    series,
		LastValue: 1,
	}
	if err := tx.WithContext(ctx).Create(&seq).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return 0, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sequence seeded concurrently")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed sequence")
	}
	return 1, nil
}

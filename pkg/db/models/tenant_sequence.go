package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ordercash/ordercash-backend/pkg/enums"
)

// TenantSequence holds the last allocated number for a per-tenant series.
// Allocation locks the row, so gaps only appear when a surrounding
// transaction rolls back after the increment.
type TenantSequence struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  uuid.UUID            `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uniq_tenant_sequences_tenant_series"`
	Series    enums.SequenceSeries `gorm:"column:series;type:text;not null;uniqueIndex:uniq_tenant_sequences_tenant_series"`
	LastValue int64                `gorm:"column:last_value;not null;default:0"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

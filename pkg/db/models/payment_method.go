package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ordercash/ordercash-backend/pkg/enums"
)

// PaymentMethod is a tenant-defined way of settling orders (cash, wire, card).
// Each method may carry a mirrored cash account.
type PaymentMethod struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  uuid.UUID               `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uniq_payment_methods_tenant_name"`
	Name      string                  `gorm:"column:name;not null;uniqueIndex:uniq_payment_methods_tenant_name"`
	Kind      enums.PaymentMethodKind `gorm:"column:kind;type:text;not null;default:'cash'"`
	Active    bool                    `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment records money received against an order through one payment method.
type Payment struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID        uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;index"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	PaymentMethodID uuid.UUID       `gorm:"column:payment_method_id;type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(14,2);not null"`
	RegisteredBy    *uuid.UUID      `gorm:"column:registered_by;type:uuid"`
	Notes           *string         `gorm:"column:notes"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

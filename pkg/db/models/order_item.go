package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a priced line on an order. Amount is Quantity times UnitPrice,
// persisted so totals never depend on re-multiplication.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID    uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;index"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	Description string          `gorm:"column:description;not null"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:decimal(14,3);not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:decimal(14,2);not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(14,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ordercash/ordercash-backend/pkg/enums"
)

// Order is the order-to-cash aggregate root. Total derives from the line item
// subtotal plus tax minus discount; Balance is Total minus the sum of live
// payments and is kept in step inside the same transaction as any money
// movement.
type Order struct {
	ID                 uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID           uuid.UUID               `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uniq_orders_tenant_number"`
	Number             int64                   `gorm:"column:number;not null;uniqueIndex:uniq_orders_tenant_number"`
	CustomerID         uuid.UUID               `gorm:"column:customer_id;type:uuid;not null;index"`
	Status             enums.OrderStatus       `gorm:"column:status;type:text;not null;default:'active'"`
	OperationalStatus  enums.OperationalStatus `gorm:"column:operational_status;type:text;not null;default:'pending'"`
	Subtotal           decimal.Decimal         `gorm:"column:subtotal;type:decimal(14,2);not null"`
	TaxRate            decimal.Decimal         `gorm:"column:tax_rate;type:decimal(6,4);not null;default:0"`
	TaxAmount          decimal.Decimal         `gorm:"column:tax_amount;type:decimal(14,2);not null;default:0"`
	Discount           decimal.Decimal         `gorm:"column:discount;type:decimal(14,2);not null;default:0"`
	Total              decimal.Decimal         `gorm:"column:total;type:decimal(14,2);not null"`
	Balance            decimal.Decimal         `gorm:"column:balance;type:decimal(14,2);not null"`
	RegisteredBy       *uuid.UUID              `gorm:"column:registered_by;type:uuid"`
	Notes              *string                 `gorm:"column:notes"`
	CancellationReason *string                 `gorm:"column:cancellation_reason"`
	DeliveredAt        *time.Time              `gorm:"column:delivered_at"`
	CompletedAt        *time.Time              `gorm:"column:completed_at"`
	CancelledAt        *time.Time              `gorm:"column:cancelled_at"`
	Items              []OrderItem             `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments           []Payment               `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

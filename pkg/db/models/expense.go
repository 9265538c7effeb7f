package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is money paid out to a supplier; it debits the paying account.
type Expense struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID        uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uniq_expenses_tenant_number"`
	Number          int64           `gorm:"column:number;not null;uniqueIndex:uniq_expenses_tenant_number"`
	SupplierID      *uuid.UUID      `gorm:"column:supplier_id;type:uuid;index"`
	PaymentMethodID uuid.UUID       `gorm:"column:payment_method_id;type:uuid;not null;index"`
	Category        string          `gorm:"column:category;not null;default:'general'"`
	Description     string          `gorm:"column:description;not null"`
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(14,2);not null"`
	RegisteredBy    *uuid.UUID      `gorm:"column:registered_by;type:uuid"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

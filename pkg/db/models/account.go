package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ordercash/ordercash-backend/pkg/enums"
)

// Account is the cash ledger behind one payment method. Balance always equals
// the signed sum of its transactions.
type Account struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID        uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uniq_accounts_tenant_method"`
	PaymentMethodID uuid.UUID       `gorm:"column:payment_method_id;type:uuid;not null;uniqueIndex:uniq_accounts_tenant_method"`
	Name            string          `gorm:"column:name;not null"`
	Balance         decimal.Decimal `gorm:"column:balance;type:decimal(14,2);not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// AccountTransaction is one journal line against an account. Credit raises the
// balance, debit lowers it; Reference points at the payment or expense that
// produced the line.
type AccountTransaction struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID      uuid.UUID             `gorm:"column:tenant_id;type:uuid;not null;index"`
	AccountID     uuid.UUID             `gorm:"column:account_id;type:uuid;not null;index"`
	Type          enums.TransactionType `gorm:"column:type;type:text;not null"`
	Amount        decimal.Decimal       `gorm:"column:amount;type:decimal(14,2);not null"`
	Description   string                `gorm:"column:description;not null"`
	ReferenceType enums.ReferenceType   `gorm:"column:reference_type;type:text;not null"`
	ReferenceID   *uuid.UUID            `gorm:"column:reference_id;type:uuid;index"`
	OccurredAt    time.Time             `gorm:"column:occurred_at;not null"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
}

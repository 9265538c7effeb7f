package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatusHistory is an append-only trail of status changes on an order,
// covering both the commercial and the operational machines.
type OrderStatusHistory struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID   uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index"`
	OrderID    uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	Field      string     `gorm:"column:field;not null"`
	FromStatus string     `gorm:"column:from_status;not null"`
	ToStatus   string     `gorm:"column:to_status;not null"`
	ActorID    *uuid.UUID `gorm:"column:actor_id;type:uuid"`
	Reason     *string    `gorm:"column:reason"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

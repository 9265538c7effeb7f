package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ordercash/ordercash-backend/pkg/enums"
)

// ItemInput is one requested line on an order.
type ItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// CreateInput captures the data required to open an order.
type CreateInput struct {
	TenantID   uuid.UUID
	ActorID    uuid.UUID
	CustomerID uuid.UUID
	TaxRate    decimal.Decimal
	Discount   decimal.Decimal
	Notes      *string
	Items      []ItemInput
}

// ReplaceItemsInput swaps an order's line items for a new set.
type ReplaceItemsInput struct {
	TenantID uuid.UUID
	ActorID  uuid.UUID
	OrderID  uuid.UUID
	Items    []ItemInput
}

// CancelInput voids an order that has no payments against it.
type CancelInput struct {
	TenantID uuid.UUID
	ActorID  uuid.UUID
	OrderID  uuid.UUID
	Reason   string
}

// SetOperationalStatusInput moves an order one step along the pipeline.
type SetOperationalStatusInput struct {
	TenantID uuid.UUID
	ActorID  uuid.UUID
	OrderID  uuid.UUID
	Target   enums.OperationalStatus
}

// ListFilters describe the inputs supported by the orders list.
type ListFilters struct {
	Status            *enums.OrderStatus
	OperationalStatus *enums.OperationalStatus
	CustomerID        *uuid.UUID
	DateFrom          *time.Time
	DateTo            *time.Time
}

// OrderSummary exposes the aggregated fields returned in the orders list.
type OrderSummary struct {
	ID                uuid.UUID               `json:"id"`
	Number            int64                   `json:"number"`
	CustomerID        uuid.UUID               `json:"customer_id"`
	Status            enums.OrderStatus       `json:"status"`
	OperationalStatus enums.OperationalStatus `json:"operational_status"`
	Total             decimal.Decimal         `json:"total"`
	Balance           decimal.Decimal         `json:"balance"`
	CreatedAt         time.Time               `json:"created_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ordercash/ordercash-backend/api/responses"
	"github.com/ordercash/ordercash-backend/api/validators"
	"github.com/ordercash/ordercash-backend/internal/orders"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/enums"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/logger"
)

type orderItemRequest struct {
	Description string          `json:"description" validate:"required,min=1,max=500"`
	Quantity    decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type orderCreateRequest struct {
	CustomerID uuid.UUID          `json:"customer_id" validate:"required"`
	TaxRate    decimal.Decimal    `json:"tax_rate"`
	Discount   decimal.Decimal    `json:"discount"`
	Notes      *string            `json:"notes,omitempty"`
	Items      []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type orderReplaceItemsRequest struct {
	Items []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type orderCancelRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

type operationalStatusRequest struct {
	Target string `json:"target" validate:"required"`
}

type orderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

type orderPaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	PaymentMethodID uuid.UUID       `json:"payment_method_id"`
	Amount          decimal.Decimal `json:"amount"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type orderResponse struct {
	ID                 uuid.UUID               `json:"id"`
	Number             int64                   `json:"number"`
	CustomerID         uuid.UUID               `json:"customer_id"`
	Status             enums.OrderStatus       `json:"status"`
	OperationalStatus  enums.OperationalStatus `json:"operational_status"`
	Subtotal           decimal.Decimal         `json:"subtotal"`
	TaxRate            decimal.Decimal         `json:"tax_rate"`
	TaxAmount          decimal.Decimal         `json:"tax_amount"`
	Discount           decimal.Decimal         `json:"discount"`
	Total              decimal.Decimal         `json:"total"`
	Balance            decimal.Decimal         `json:"balance"`
	Notes              *string                 `json:"notes,omitempty"`
	CancellationReason *string                 `json:"cancellation_reason,omitempty"`
	DeliveredAt        *time.Time              `json:"delivered_at,omitempty"`
	CompletedAt        *time.Time              `json:"completed_at,omitempty"`
	CancelledAt        *time.Time              `json:"cancelled_at,omitempty"`
	Items              []orderItemResponse     `json:"items"`
	Payments           []orderPaymentResponse  `json:"payments"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}

type orderStatusHistoryResponse struct {
	Field      string     `json:"field"`
	FromStatus string     `json:"from_status"`
	ToStatus   string     `json:"to_status"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	Reason     *string    `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		ID:                 order.ID,
		Number:             order.Number,
		CustomerID:         order.CustomerID,
		Status:             order.Status,
		OperationalStatus:  order.OperationalStatus,
		Subtotal:           order.Subtotal,
		TaxRate:            order.TaxRate,
		TaxAmount:          order.TaxAmount,
		Discount:           order.Discount,
		Total:              order.Total,
		Balance:            order.Balance,
		Notes:              order.Notes,
		CancellationReason: order.CancellationReason,
		DeliveredAt:        order.DeliveredAt,
		CompletedAt:        order.CompletedAt,
		CancelledAt:        order.CancelledAt,
		Items:              make([]orderItemResponse, 0, len(order.Items)),
		Payments:           make([]orderPaymentResponse, 0, len(order.Payments)),
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}
	for _, payment := range order.Payments {
		resp.Payments = append(resp.Payments, orderPaymentResponse{
			ID:              payment.ID,
			PaymentMethodID: payment.PaymentMethodID,
			Amount:          payment.Amount,
			Notes:           payment.Notes,
			CreatedAt:       payment.CreatedAt,
		})
	}
	return resp
}

func toItemInputs(items []orderItemRequest) []orders.ItemInput {
	inputs := make([]orders.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, orders.ItemInput{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return inputs
}

// OrdersCreate opens an order: items are priced, totals computed and the
// tenant's next order number allocated in one transaction.
func OrdersCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req orderCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), orders.CreateInput{
			TenantID:   tenantID,
			ActorID:    actorFromRequest(r),
			CustomerID: req.CustomerID,
			TaxRate:    req.TaxRate,
			Discount:   req.Discount,
			Notes:      req.Notes,
			Items:      toItemInputs(req.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toOrderResponse(order))
	}
}

// OrdersGet returns one order with its items and payments.
func OrdersGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), tenantID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

// OrdersList returns a cursor page of order summaries, optionally filtered by
// status, operational status, customer and creation window.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := buildOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), tenantID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// OrdersReplaceItems swaps the order's line items, recomputes totals and
// rebases the balance against what is already paid.
func OrdersReplaceItems(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req orderReplaceItemsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ReplaceItems(r.Context(), orders.ReplaceItemsInput{
			TenantID: tenantID,
			ActorID:  actorFromRequest(r),
			OrderID:  orderID,
			Items:    toItemInputs(req.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

// OrdersCancel voids an order that has no payments against it.
func OrdersCancel(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req orderCancelRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Cancel(r.Context(), orders.CancelInput{
			TenantID: tenantID,
			ActorID:  actorFromRequest(r),
			OrderID:  orderID,
			Reason:   validators.SanitizeString(req.Reason, 500),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

// OrdersSetOperationalStatus steps the fulfillment pipeline one stage at a
// time; delivery also settles the commercial status when the order is paid.
func OrdersSetOperationalStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req operationalStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOperationalStatus(req.Target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown operational status"))
			return
		}

		order, err := svc.SetOperationalStatus(r.Context(), orders.SetOperationalStatusInput{
			TenantID: tenantID,
			ActorID:  actorFromRequest(r),
			OrderID:  orderID,
			Target:   target,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

// OrdersHistory returns the order's status trail, oldest first.
func OrdersHistory(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.History(r.Context(), tenantID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderStatusHistoryResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, orderStatusHistoryResponse{
				Field:      row.Field,
				FromStatus: row.FromStatus,
				ToStatus:   row.ToStatus,
				ActorID:    row.ActorID,
				Reason:     row.Reason,
				CreatedAt:  row.CreatedAt,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

func buildOrderFilters(r *http.Request) (orders.ListFilters, error) {
	filters := orders.ListFilters{}
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(q.Get("operational_status")); raw != "" {
		status, err := enums.ParseOperationalStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown operational status filter")
		}
		filters.OperationalStatus = &status
	}
	if raw := strings.TrimSpace(q.Get("customer_id")); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer filter")
		}
		filters.CustomerID = &customerID
	}
	if raw := strings.TrimSpace(q.Get("date_from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date_from filter")
		}
		filters.DateFrom = &from
	}
	if raw := strings.TrimSpace(q.Get("date_to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date_to filter")
		}
		filters.DateTo = &to
	}

	return filters, nil
}

package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ordercash/ordercash-backend/api/responses"
	"github.com/ordercash/ordercash-backend/api/validators"
	"github.com/ordercash/ordercash-backend/internal/payments"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/logger"
)

type paymentApplyRequest struct {
	PaymentMethodID uuid.UUID       `json:"payment_method_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	Notes           *string         `json:"notes,omitempty"`
}

type paymentEditRequest struct {
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	PaymentMethodID *uuid.UUID       `json:"payment_method_id,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
}

type paymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	OrderID         uuid.UUID       `json:"order_id"`
	PaymentMethodID uuid.UUID       `json:"payment_method_id"`
	Amount          decimal.Decimal `json:"amount"`
	RegisteredBy    *uuid.UUID      `json:"registered_by,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func toPaymentResponse(payment *models.Payment) paymentResponse {
	return paymentResponse{
		ID:              payment.ID,
		OrderID:         payment.OrderID,
		PaymentMethodID: payment.PaymentMethodID,
		Amount:          payment.Amount,
		RegisteredBy:    payment.RegisteredBy,
		Notes:           payment.Notes,
		CreatedAt:       payment.CreatedAt,
		UpdatedAt:       payment.UpdatedAt,
	}
}

// PaymentsApply records money received against an order. The order balance,
// its settled status and the receiving account move in the same transaction.
func PaymentsApply(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
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

		var req paymentApplyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Apply(r.Context(), payments.ApplyInput{
			TenantID:        tenantID,
			ActorID:         actorFromRequest(r),
			OrderID:         orderID,
			PaymentMethodID: req.PaymentMethodID,
			Amount:          req.Amount,
			Notes:           req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toPaymentResponse(payment))
	}
}

// PaymentsListByOrder returns every live payment on an order.
func PaymentsListByOrder(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
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

		rows, err := svc.ListByOrder(r.Context(), tenantID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]paymentResponse, 0, len(rows))
		for i := range rows {
			out = append(out, toPaymentResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// PaymentsGet returns one payment.
func PaymentsGet(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paymentID, err := parseUUIDParam(r, "paymentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Get(r.Context(), tenantID, paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toPaymentResponse(payment))
	}
}

// PaymentsEdit corrects a recorded payment. Amount changes replay against the
// order balance; the account ledger is reversed and re-recorded.
func PaymentsEdit(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paymentID, err := parseUUIDParam(r, "paymentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req paymentEditRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Edit(r.Context(), payments.EditInput{
			TenantID:        tenantID,
			ActorID:         actorFromRequest(r),
			PaymentID:       paymentID,
			Amount:          req.Amount,
			PaymentMethodID: req.PaymentMethodID,
			Notes:           req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toPaymentResponse(payment))
	}
}

// PaymentsDelete removes a payment, restoring the order balance and reversing
// the account ledger entry.
func PaymentsDelete(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paymentID, err := parseUUIDParam(r, "paymentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), payments.DeleteInput{
			TenantID:  tenantID,
			ActorID:   actorFromRequest(r),
			PaymentID: paymentID,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

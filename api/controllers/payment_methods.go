package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ordercash/ordercash-backend/api/responses"
	"github.com/ordercash/ordercash-backend/api/validators"
	"github.com/ordercash/ordercash-backend/internal/paymentmethods"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/enums"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/logger"
)

type paymentMethodCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
	Kind string `json:"kind,omitempty"`
}

type paymentMethodResponse struct {
	ID        uuid.UUID               `json:"id"`
	Name      string                  `json:"name"`
	Kind      enums.PaymentMethodKind `json:"kind"`
	Active    bool                    `json:"active"`
	CreatedAt time.Time               `json:"created_at"`
}

func toPaymentMethodResponse(method *models.PaymentMethod) paymentMethodResponse {
	return paymentMethodResponse{
		ID:        method.ID,
		Name:      method.Name,
		Kind:      method.Kind,
		Active:    method.Active,
		CreatedAt: method.CreatedAt,
	}
}

// PaymentMethodsCreate registers a payment method and opens its mirrored
// account.
func PaymentMethodsCreate(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment methods service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req paymentMethodCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := paymentmethods.CreateInput{
			TenantID: tenantID,
			Name:     req.Name,
		}
		if req.Kind != "" {
			kind, err := enums.ParsePaymentMethodKind(req.Kind)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown payment method kind"))
				return
			}
			input.Kind = kind
		}

		method, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toPaymentMethodResponse(method))
	}
}

// PaymentMethodsList returns the tenant's methods, cached briefly in Redis.
func PaymentMethodsList(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment methods service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]paymentMethodResponse, 0, len(rows))
		for i := range rows {
			out = append(out, toPaymentMethodResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// PaymentMethodsGet returns one method.
func PaymentMethodsGet(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment methods service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		methodID, err := parseUUIDParam(r, "methodID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := svc.Get(r.Context(), tenantID, methodID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toPaymentMethodResponse(method))
	}
}

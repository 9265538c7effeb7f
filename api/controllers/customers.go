package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ordercash/ordercash-backend/api/responses"
	"github.com/ordercash/ordercash-backend/api/validators"
	"github.com/ordercash/ordercash-backend/internal/customers"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/logger"
)

type customerCreateRequest struct {
	Name  string  `json:"name" validate:"required,min=1,max=200"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Notes *string `json:"notes,omitempty"`
}

type customerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toCustomerResponse(customer *models.Customer) customerResponse {
	return customerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		Email:     customer.Email,
		Phone:     customer.Phone,
		Notes:     customer.Notes,
		CreatedAt: customer.CreatedAt,
	}
}

// CustomersCreate registers a customer.
func CustomersCreate(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req customerCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Create(r.Context(), customers.CreateInput{
			TenantID: tenantID,
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Notes:    req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toCustomerResponse(customer))
	}
}

// CustomersList returns the tenant's customers.
func CustomersList(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
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

		out := make([]customerResponse, 0, len(rows))
		for i := range rows {
			out = append(out, toCustomerResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// CustomersGet returns one customer.
func CustomersGet(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := parseUUIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Get(r.Context(), tenantID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toCustomerResponse(customer))
	}
}

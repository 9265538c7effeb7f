package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ordercash/ordercash-backend/api/responses"
	"github.com/ordercash/ordercash-backend/api/validators"
	"github.com/ordercash/ordercash-backend/internal/suppliers"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/logger"
)

type supplierCreateRequest struct {
	Name  string  `json:"name" validate:"required,min=1,max=200"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=40"`
}

type supplierResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toSupplierResponse(supplier *models.Supplier) supplierResponse {
	return supplierResponse{
		ID:        supplier.ID,
		Name:      supplier.Name,
		Email:     supplier.Email,
		Phone:     supplier.Phone,
		CreatedAt: supplier.CreatedAt,
	}
}

// SuppliersCreate registers a supplier.
func SuppliersCreate(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "suppliers service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req supplierCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplier, err := svc.Create(r.Context(), suppliers.CreateInput{
			TenantID: tenantID,
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toSupplierResponse(supplier))
	}
}

// SuppliersList returns the tenant's suppliers.
func SuppliersList(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "suppliers service unavailable"))
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

		out := make([]supplierResponse, 0, len(rows))
		for i := range rows {
			out = append(out, toSupplierResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// SuppliersGet returns one supplier.
func SuppliersGet(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "suppliers service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := parseUUIDParam(r, "supplierID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplier, err := svc.Get(r.Context(), tenantID, supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toSupplierResponse(supplier))
	}
}

// SuppliersDelete removes a supplier not referenced by any expense.
func SuppliersDelete(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "suppliers service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := parseUUIDParam(r, "supplierID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), tenantID, supplierID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

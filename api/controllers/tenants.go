package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ordercash/ordercash-backend/api/responses"
	"github.com/ordercash/ordercash-backend/api/validators"
	"github.com/ordercash/ordercash-backend/internal/tenants"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/logger"
)

type tenantProvisionRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
	Slug string `json:"slug" validate:"required,min=1,max=80"`
}

type tenantResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toTenantResponse(tenant *models.Tenant) tenantResponse {
	return tenantResponse{
		ID:        tenant.ID,
		Name:      tenant.Name,
		Slug:      tenant.Slug,
		Active:    tenant.Active,
		CreatedAt: tenant.CreatedAt,
	}
}

// TenantsProvision creates a tenant with its default payment methods and
// accounts. This is a platform operation, not scoped to the caller's tenant.
func TenantsProvision(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenants service unavailable"))
			return
		}

		var req tenantProvisionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tenant, err := svc.Provision(r.Context(), tenants.ProvisionInput{
			Name: req.Name,
			Slug: req.Slug,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toTenantResponse(tenant))
	}
}

// TenantsGetCurrent returns the caller's own tenant.
func TenantsGetCurrent(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenants service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tenant, err := svc.Get(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toTenantResponse(tenant))
	}
}

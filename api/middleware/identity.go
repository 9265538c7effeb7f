package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ordercash/ordercash-backend/api/responses"
	"github.com/ordercash/ordercash-backend/pkg/authz"
	pkgauth "github.com/ordercash/ordercash-backend/pkg/auth"
	"github.com/ordercash/ordercash-backend/pkg/config"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/logger"
)

const devTenantHeader = "X-Tenant-Id"

// Identity validates a bearer token and seeds the request context with the
// caller's user, tenant and capabilities. Tokens are issued upstream; this
// service only verifies and reads them.
//
// When allowHeaderTenant is set (dev environments only), requests without
// credentials may name their tenant via X-Tenant-Id instead.
func Identity(cfg config.JWTConfig, allowHeaderTenant bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				if allowHeaderTenant {
					if ctx, ok := devContext(r); ok {
						next.ServeHTTP(w, r.WithContext(ctx))
						return
					}
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.TenantID == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token carries no tenant"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID)
			ctx = WithTenantID(ctx, claims.TenantID)
			ctx = WithCapabilities(ctx, claims.Capabilities)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":   claims.UserID.String(),
					"tenant_id": claims.TenantID.String(),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// devContext seeds identity from headers for unauthenticated local requests.
func devContext(r *http.Request) (context.Context, bool) {
	tenantID, err := uuid.Parse(strings.TrimSpace(r.Header.Get(devTenantHeader)))
	if err != nil || tenantID == uuid.Nil {
		return nil, false
	}

	ctx := WithTenantID(r.Context(), tenantID)
	if userID, err := uuid.Parse(strings.TrimSpace(r.Header.Get("X-User-Id"))); err == nil {
		ctx = WithUserID(ctx, userID)
	}
	ctx = WithCapabilities(ctx, []string{authz.Wildcard})
	return ctx, true
}

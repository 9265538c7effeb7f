package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/ordercash/ordercash-backend/pkg/authz"
)

type contextKey string

const (
	ctxUserID       contextKey = "user_id"
	ctxTenantID     contextKey = "tenant_id"
	ctxCapabilities contextKey = "capabilities"
)

func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func TenantIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxTenantID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func CapabilitiesFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxCapabilities).([]string); ok {
		return v
	}
	return nil
}

// SubjectFromContext assembles the permission subject for the current request.
func SubjectFromContext(ctx context.Context) authz.Subject {
	return authz.Subject{
		UserID:       UserIDFromContext(ctx),
		TenantID:     TenantIDFromContext(ctx),
		Capabilities: CapabilitiesFromContext(ctx),
	}
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithTenantID injects the tenant identifier into the context for downstream handlers.
func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTenantID, tenantID)
}

// WithCapabilities injects the caller's capability claims into the context.
func WithCapabilities(ctx context.Context, capabilities []string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCapabilities, capabilities)
}

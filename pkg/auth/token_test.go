package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ordercash/ordercash-backend/pkg/config"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "ordercash",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	userID := uuid.New()
	tenantID := uuid.New()

	payload := AccessTokenPayload{
		UserID:       userID,
		TenantID:     tenantID,
		Capabilities: []string{"orders:write", "payments:write"},
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.TenantID != tenantID {
		t.Fatalf("expected tenant_id %s, got %s", tenantID, claims.TenantID)
	}
	if len(claims.Capabilities) != 2 || claims.Capabilities[0] != "orders:write" {
		t.Fatalf("capabilities not preserved: %v", claims.Capabilities)
	}

	// RegisteredClaims is embedded, so access fields directly.
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(cfg.TokenTTL())
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "ordercash",
		ExpirationMinutes: 10,
	}
	payload := AccessTokenPayload{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
	}

	token, err := MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token+"x")
	if err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "ordercash",
		ExpirationMinutes: 15,
	}
	payload := AccessTokenPayload{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
	}

	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMintAccessTokenMissingTenant(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "ordercash",
		ExpirationMinutes: 5,
	}
	payload := AccessTokenPayload{
		UserID: uuid.New(),
	}

	if _, err := MintAccessToken(cfg, time.Now(), payload); err == nil {
		t.Fatal("expected missing tenant error")
	}
}

package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/ordercash/ordercash-backend/api/responses"
	"github.com/ordercash/ordercash-backend/pkg/config"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is the health check surface shared by the database and cache clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OrderCash-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the database and cache respond. A nil
// dependency is skipped so dev setups without Redis still come up.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OrderCash-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency unavailable").
						WithDetails(map[string]any{"dependency": name}))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

// ReadinessDeps builds the dependency set checked by HealthReady. Nil entries
// are tolerated.
func ReadinessDeps(db Pinger, cache Pinger) map[string]Pinger {
	deps := map[string]Pinger{}
	if db != nil {
		deps["database"] = db
	}
	if cache != nil {
		deps["cache"] = cache
	}
	return deps
}

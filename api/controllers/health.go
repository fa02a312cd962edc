package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/artisanmarket/storefront/api/responses"
	"github.com/artisanmarket/storefront/pkg/config"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether a backing resource is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Artisan-Env", cfg.App.Env)
		responses.WriteSuccess(r.Context(), w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency. Nil pingers are skipped, so
// a remote-records deployment without a database reports only redis.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Artisan-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		var failed bool
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				failed = true
				checks[name] = "unavailable"
				if logg != nil {
					logg.Warn(logg.WithFields(r.Context(), map[string]any{"dependency": name, "error": err.Error()}), "health.dependency_down")
				}
				continue
			}
			checks[name] = "ok"
		}

		if failed {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(r.Context(), w, map[string]any{"status": "ready", "checks": checks})
	}
}

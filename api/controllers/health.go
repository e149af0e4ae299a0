package controllers

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/multierr"

	"github.com/serviqo/serviqo-backend/api/responses"
	"github.com/serviqo/serviqo-backend/pkg/config"
	pkgerrors "github.com/serviqo/serviqo-backend/pkg/errors"
	"github.com/serviqo/serviqo-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Serviqo-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency and reports all failures, not just
// the first one.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Serviqo-Env", cfg.App.Env)

		var failures error
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				failures = multierr.Append(failures, fmt.Errorf("%s: %w", name, err))
			}
		}

		if failures != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, failures, "dependency unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

// ReadinessDeps builds the dependency map for HealthReady.
func ReadinessDeps(dbP pinger, redisP pinger) map[string]pinger {
	return map[string]pinger{
		"postgres": dbP,
		"redis":    redisP,
	}
}

package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/angelmondragon/ecofinds-backend/api/responses"
	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

const readyTimeout = 2 * time.Second

// Pinger is satisfied by every storage backend the store can persist to.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-EcoFinds-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every registered dependency and reports 503 when any fails.
func HealthReady(cfg *config.Config, logg *logger.Logger, pingers map[string]Pinger) http.HandlerFunc {
	names := make([]string, 0, len(pingers))
	for name := range pingers {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-EcoFinds-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		failures := map[string]string{}
		for _, name := range names {
			p := pingers[name]
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				failures[name] = err.Error()
			}
		}
		if len(failures) > 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(failures))
			return
		}

		checks := make(map[string]string, len(names))
		for _, name := range names {
			checks[name] = "ok"
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

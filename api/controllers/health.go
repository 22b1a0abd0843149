package controllers

import (
	"context"
	"net/http"

	"github.com/meridianprocure/storefront-backend/api/responses"
	"github.com/meridianprocure/storefront-backend/pkg/config"
	pkgerrors "github.com/meridianprocure/storefront-backend/pkg/errors"
	"github.com/meridianprocure/storefront-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Meridian-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, db pinger, cache pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-Meridian-Env", cfg.App.Env)

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

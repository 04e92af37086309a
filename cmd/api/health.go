package main

import (
	"context"
	"net/http"
	"time"
)

// healthCheckHandler godoc
//
//	@Summary		Health check
//	@Description	Reports the service version and whether the database answers.
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		503	{object}	map[string]string
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":   "ok",
		"env":      app.config.env,
		"version":  version,
		"database": "ok",
	}

	status := http.StatusOK
	if app.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := app.db.Ping(ctx); err != nil {
			app.logger.Warnw("health: database ping failed", "error", err.Error())
			data["status"] = "degraded"
			data["database"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	if err := app.jsonResponse(w, status, data); err != nil {
		app.internalServerError(w, r, err)
	}
}

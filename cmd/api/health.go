// cmd/api/health.go
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/kmilodenisglez/task-backend/internal/store/cache"
)

const (
	serviceName   = "task-backend"
	statusHealthy = "healthy"
	statusFailing = "unhealthy"
	healthTimeout = 2 * time.Second
)

type healthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type healthReport struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Env       string                 `json:"env"`
	Checks    map[string]healthCheck `json:"checks,omitempty"`
}

func (app *application) newHealthReport() healthReport {
	return healthReport{
		Status:    statusHealthy,
		Timestamp: time.Now().UTC(),
		Service:   serviceName,
		Version:   version,
		Env:       app.config.Env,
	}
}

func (app *application) rootHandler(w http.ResponseWriter, r *http.Request) {
	app.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "Task API is running",
		"version": version,
	})
}

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	app.jsonResponse(w, http.StatusOK, app.newHealthReport())
}

// detailedHealthHandler comprueba cada servicio y responde 503 si alguno no
// está disponible.
func (app *application) detailedHealthHandler(w http.ResponseWriter, r *http.Request) {
	report := app.newHealthReport()
	report.Checks = make(map[string]healthCheck)

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	report.Checks["database"] = app.runCheck(ctx, "database", app.store.Health.PingContext)
	if app.rdb != nil {
		report.Checks["cache"] = app.runCheck(ctx, "cache", func(ctx context.Context) error {
			return cache.Ping(ctx, app.rdb)
		})
	}

	status := http.StatusOK
	for _, c := range report.Checks {
		if c.Status != statusHealthy {
			report.Status = statusFailing
			status = http.StatusServiceUnavailable
		}
	}

	app.jsonResponse(w, status, report)
}

func (app *application) runCheck(ctx context.Context, name string, check func(context.Context) error) healthCheck {
	if err := check(ctx); err != nil {
		app.logger.Error("health check failed", "check", name, "error", err.Error())
		return healthCheck{Status: statusFailing, Message: name + " connection failed"}
	}
	return healthCheck{Status: statusHealthy, Message: name + " connection successful"}
}

// cmd/api/middleware.go
package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/kmilodenisglez/task-backend/internal/auth"
	"github.com/kmilodenisglez/task-backend/internal/ratelimiter"
	"github.com/kmilodenisglez/task-backend/internal/store"
)

type ctxKey string

const (
	userCtxKey      ctxKey = "user"
	taskCtxKey      ctxKey = "task"
	requestIDCtxKey ctxKey = "request_id"
)

const requestIDHeader = "X-Request-ID"

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey).(string)
	return id
}

// requestLogger asigna un id a cada petición y registra su inicio y su resultado.
func (app *application) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDCtxKey, id)

		log := app.logger.With(
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", ratelimiter.ClientIP(r),
		)
		log.Debug("request started")

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []any{"status", status, "duration_ms", time.Since(start).Milliseconds()}
			if status >= http.StatusInternalServerError {
				log.Error("request completed", attrs...)
				return
			}
			log.Info("request completed", attrs...)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

// RateLimiterMiddleware admite o rechaza cada petición según la IP del cliente.
// Las rutas bajo el prefijo exento nunca se cuentan.
func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	cfg := app.config.RateLimit
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cfg.ExemptPrefix != "" && strings.HasPrefix(r.URL.Path, cfg.ExemptPrefix) {
			next.ServeHTTP(w, r)
			return
		}

		ip := ratelimiter.ClientIP(r)
		allowed, info := app.rateLimiter.Allow(ratelimiter.Key(cfg.KeyPrefix, ip), cfg.RequestsPerTimeFrame, cfg.TimeFrame)
		if !allowed {
			app.logger.Warn("rate limit exceeded",
				"client_ip", ip,
				"path", r.URL.Path,
				"retry_after", info.RetryAfter,
			)
			app.rateLimitExceededResponse(w, r, info)
			return
		}

		if cfg.HeadersOnSuccess {
			setRateLimitHeaders(w, info)
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extrae las credenciales de una cabecera "Authorization: Bearer".
// Cualquier otra cosa devuelve "".
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthTokenMiddleware obtiene el usuario a partir del token y lo guarda en el
// contexto de la petición. Aquí no se consulta la base de datos.
func (app *application) AuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := app.authenticator.CurrentUser(bearerToken(r))
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userCtxKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getCurrentUser(r *http.Request) *auth.CurrentUser {
	user, _ := r.Context().Value(userCtxKey).(*auth.CurrentUser)
	return user
}

// tasksContextMiddleware carga la tarea indicada por el parámetro taskID de la URL.
func (app *application) tasksContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
		if err != nil {
			app.notFoundResponse(w, r, "Task not found")
			return
		}

		task, err := app.store.Tasks.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				app.notFoundResponse(w, r, "Task not found")
				return
			}
			app.internalServerError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), taskCtxKey, task)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getTaskFromCtx(r *http.Request) *store.Task {
	task, _ := r.Context().Value(taskCtxKey).(*store.Task)
	return task
}

// checkTaskOwnership solo deja pasar al dueño de la tarea cargada.
func (app *application) checkTaskOwnership(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := getCurrentUser(r)
		task := getTaskFromCtx(r)
		if user == nil || task == nil || task.UserID != user.ID {
			app.forbiddenResponse(w, r, "Not authorized to access this task")
			return
		}
		next.ServeHTTP(w, r)
	})
}

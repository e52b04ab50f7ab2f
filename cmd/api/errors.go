// cmd/api/errors.go
package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kmilodenisglez/task-backend/internal/auth"
	"github.com/kmilodenisglez/task-backend/internal/ratelimiter"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Error("internal error",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestIDFromContext(r.Context()),
		"error", err.Error(),
	)
	app.writeJSONError(w, http.StatusInternalServerError, "Internal server error")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.writeJSONError(w, http.StatusBadRequest, validationMessage(err))
}

func (app *application) conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.writeJSONError(w, http.StatusConflict, message)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.writeJSONError(w, http.StatusNotFound, message)
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.writeJSONError(w, http.StatusForbidden, message)
}

func (app *application) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	app.writeJSONError(w, http.StatusUnauthorized, "Invalid credentials")
}

// unauthorizedErrorResponse traduce un fallo de autenticación a uno de tres
// mensajes genéricos. Un token caducado y uno falsificado se ven iguales.
func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	message := "Invalid or expired token"
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated):
		message = "Not authenticated"
	case errors.Is(err, auth.ErrMissingSubject):
		message = "Invalid token: missing user ID"
	}

	app.logger.Debug("authentication failed", "path", r.URL.Path, "reason", err.Error())

	w.Header().Set("WWW-Authenticate", "Bearer")
	app.writeJSONError(w, http.StatusUnauthorized, message)
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, info ratelimiter.Info) {
	setRateLimitHeaders(w, info)
	w.Header().Set("Retry-After", strconv.Itoa(info.RetryAfter))

	writeJSON(w, http.StatusTooManyRequests, map[string]any{
		"message":     "Rate limit exceeded",
		"retry_after": info.RetryAfter,
		"limit":       info.Limit,
	})
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimiter.Info) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
}

// cmd/api/auth.go
package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/kmilodenisglez/task-backend/internal/auth"
	"github.com/kmilodenisglez/task-backend/internal/mailer"
	"github.com/kmilodenisglez/task-backend/internal/store"
)

type RegisterUserPayload struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,password"`
	Name     *string `json:"name" validate:"omitempty,max=255"`
}

type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID    int64   `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        userResponse `json:"user"`
}

func newUserResponse(u *store.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload RegisterUserPayload
	if err := app.readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	hash, err := auth.HashPassword(payload.Password, app.config.Auth.BcryptCost)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	user := &store.User{
		Email:        payload.Email,
		Name:         payload.Name,
		PasswordHash: hash,
	}
	if err := app.store.Users.Create(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			app.conflictResponse(w, r, "Email already registered")
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	resp, err := app.issueToken(user)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Info("user registered", "user_id", user.ID)
	app.sendWelcomeMail(user)

	app.jsonResponse(w, http.StatusCreated, resp)
}

func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := app.readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.store.Users.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.invalidCredentialsResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if !auth.VerifyPassword(payload.Password, user.PasswordHash) {
		app.invalidCredentialsResponse(w, r)
		return
	}

	resp, err := app.issueToken(user)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, resp)
}

func (app *application) meHandler(w http.ResponseWriter, r *http.Request) {
	current := getCurrentUser(r)

	user, err := app.getUser(r.Context(), current.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, "User not found")
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, newUserResponse(user))
}

func (app *application) issueToken(user *store.User) (tokenResponse, error) {
	token, err := app.authenticator.CreateAccessToken(auth.AccessClaims(user.ID, user.Email), 0)
	if err != nil {
		return tokenResponse{}, err
	}
	return tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        newUserResponse(user),
	}, nil
}

// getUser consulta primero la caché de usuarios si está configurada. Los
// errores de caché se registran y responde la base de datos.
func (app *application) getUser(ctx context.Context, id int64) (*store.User, error) {
	if app.cacheStorage.Users == nil {
		return app.store.Users.GetByID(ctx, id)
	}

	user, err := app.cacheStorage.Users.Get(ctx, id)
	if err != nil {
		app.logger.Warn("user cache read failed", "user_id", id, "error", err.Error())
	}
	if user != nil {
		return user, nil
	}

	user, err = app.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := app.cacheStorage.Users.Set(ctx, user); err != nil {
		app.logger.Warn("user cache write failed", "user_id", id, "error", err.Error())
	}
	return user, nil
}

// sendWelcomeMail se ejecuta en segundo plano; el cliente ya tiene su respuesta.
func (app *application) sendWelcomeMail(user *store.User) {
	if app.mailer == nil {
		return
	}

	name := user.Email
	if user.Name != nil && *user.Name != "" {
		name = *user.Name
	}
	data := map[string]string{"Name": name, "Email": user.Email}

	app.background(func() {
		if _, err := app.mailer.Send(mailer.WelcomeTemplate, name, user.Email, data); err != nil {
			app.logger.Error("welcome mail failed", "user_id", user.ID, "error", err.Error())
		}
	})
}

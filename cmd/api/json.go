// cmd/api/json.go
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())
	if err := Validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return passwordPolicy(fl.Field().String()) == ""
	}); err != nil {
		panic(err)
	}
}

const (
	passwordSpecials = `!@#$%^&*()_+-=[]{}|;:,.<>?`
	// bcrypt rechaza contraseñas más largas, contadas en bytes.
	maxPasswordBytes = 72
)

// passwordPolicy devuelve la primera regla que pw no cumple, o "" si es válida.
// La longitud mínima se cuenta en caracteres; letras y dígitos solo ASCII.
func passwordPolicy(pw string) string {
	if utf8.RuneCountInString(pw) < 8 {
		return "Password must be at least 8 characters long"
	}
	if len(pw) > maxPasswordBytes {
		return fmt.Sprintf("Password must be at most %d bytes long", maxPasswordBytes)
	}

	var upper, lower, digit, special bool
	for _, c := range pw {
		switch {
		case 'A' <= c && c <= 'Z':
			upper = true
		case 'a' <= c && c <= 'z':
			lower = true
		case '0' <= c && c <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, c):
			special = true
		}
	}

	switch {
	case !upper:
		return "Password must contain at least one uppercase letter"
	case !lower:
		return "Password must contain at least one lowercase letter"
	case !digit:
		return "Password must contain at least one number"
	case !special:
		return "Password must contain at least one special character"
	}
	return ""
}

// validationMessage convierte el primer error del validador en un mensaje
// para el cliente.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "password":
		return passwordPolicy(fmt.Sprint(fe.Value()))
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Invalid email format"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func (app *application) writeJSONError(w http.ResponseWriter, status int, message string) error {
	type envelope struct {
		Detail string `json:"detail"`
	}
	return writeJSON(w, status, envelope{Detail: message})
}

func (app *application) jsonResponse(w http.ResponseWriter, status int, data any) error {
	type envelope struct {
		Data any `json:"data"`
	}
	return writeJSON(w, status, envelope{Data: data})
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func (app *application) readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(data); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case errors.As(err, &maxErr):
			return fmt.Errorf("body must not be larger than %d bytes", maxErr.Limit)
		default:
			return fmt.Errorf("malformed JSON body: %w", err)
		}
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

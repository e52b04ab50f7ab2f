// internal/auth/errors.go
package auth

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrMissingSubject   = errors.New("invalid token: missing user ID")

	// ErrExpiredToken nunca sale del paquete por DecodeAccessToken ni por
	// CurrentUser; solo etiqueta los resultados de Inspect.
	ErrExpiredToken = errors.New("token expired")

	ErrEmptySecret          = errors.New("auth: secret key is required")
	ErrUnsupportedAlgorithm = errors.New("auth: unsupported signing algorithm")
)

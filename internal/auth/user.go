// internal/auth/user.go
package auth

import "strconv"

// CurrentUser es la identidad obtenida de un token de acceso válido. Vive lo
// que dura una petición.
type CurrentUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email,omitempty"`
}

// AccessClaims son los claims que se emiten para un usuario al registrarse o
// iniciar sesión.
func AccessClaims(userID int64, email string) map[string]any {
	claims := map[string]any{"sub": strconv.FormatInt(userID, 10)}
	if email != "" {
		claims["email"] = email
	}
	return claims
}

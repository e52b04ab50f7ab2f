// internal/auth/password.go
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword devuelve un hash bcrypt con sal de plain. Un coste fuera del
// rango de bcrypt se sustituye por bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword indica si plain corresponde a hash. Una entrada vacía o un
// hash mal formado devuelven false.
func VerifyPassword(plain, hash string) bool {
	if plain == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

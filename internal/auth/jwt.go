// internal/auth/jwt.go
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAlgorithm = "HS256"
	DefaultTokenTTL  = 30 * time.Minute
)

// JWTAuthenticator emite y valida tokens de acceso firmados con HMAC. No tiene
// estado mutable; una sola instancia sirve a todas las peticiones.
type JWTAuthenticator struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTAuthenticator(secret, algorithm string, ttl time.Duration) (*JWTAuthenticator, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &JWTAuthenticator{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock devuelve una copia de a que lee la hora de now.
func (a *JWTAuthenticator) WithClock(now func() time.Time) *JWTAuthenticator {
	cp := *a
	cp.now = now
	return &cp
}


// CreateAccessToken copia claims, añade "exp" = ahora + ttl y firma el
// resultado. Un ttl cero usa el valor configurado; uno negativo genera un
// token ya caducado.
func (a *JWTAuthenticator) CreateAccessToken(claims map[string]any, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = a.ttl
	}

	toEncode := make(jwt.MapClaims, len(claims)+1)
	for k, v := range claims {
		toEncode[k] = v
	}
	toEncode["exp"] = jwt.NewNumericDate(a.now().Add(ttl))

	token := jwt.NewWithClaims(a.method, toEncode)
	return token.SignedString(a.secret)
}

// Status etiqueta el resultado de inspeccionar un token.
type Status int

const (
	StatusValid Status = iota
	StatusAbsent
	StatusExpired
	StatusMalformed
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusAbsent:
		return "absent"
	case StatusExpired:
		return "expired"
	default:
		return "malformed"
	}
}

// Result es lo que encontró Inspect. Claims solo se rellena con StatusValid.
type Result struct {
	Status Status
	Claims jwt.MapClaims
	Err    error
}

// Inspect analiza y verifica tokenString conservando el motivo del fallo.
// Solo se acepta el algoritmo configurado y "exp" es obligatorio.
func (a *JWTAuthenticator) Inspect(tokenString string) Result {
	if tokenString == "" {
		return Result{Status: StatusAbsent, Err: ErrNotAuthenticated}
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, a.keyFunc,
		jwt.WithValidMethods([]string{a.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	switch {
	case err == nil:
		return Result{Status: StatusValid, Claims: claims}
	case errors.Is(err, jwt.ErrTokenExpired):
		return Result{Status: StatusExpired, Err: ErrExpiredToken}
	default:
		return Result{Status: StatusMalformed, Err: err}
	}
}

func (a *JWTAuthenticator) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return a.secret, nil
}

// DecodeAccessToken devuelve los claims verificados de tokenString, o
// ErrInvalidToken sea cual sea el motivo del fallo.
func (a *JWTAuthenticator) DecodeAccessToken(tokenString string) (jwt.MapClaims, error) {
	res := a.Inspect(tokenString)
	if res.Status != StatusValid {
		return nil, ErrInvalidToken
	}
	return res.Claims, nil
}

// CurrentUser obtiene la identidad que lleva tokenString.
func (a *JWTAuthenticator) CurrentUser(tokenString string) (*CurrentUser, error) {
	if tokenString == "" {
		return nil, ErrNotAuthenticated
	}

	claims, err := a.DecodeAccessToken(tokenString)
	if err != nil {
		return nil, err
	}

	sub, ok := claims["sub"]
	if !ok || sub == nil || sub == "" {
		return nil, ErrMissingSubject
	}

	id, ok := parseSubject(sub)
	if !ok {
		return nil, ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	return &CurrentUser{ID: id, Email: email}, nil
}

func parseSubject(sub any) (int64, bool) {
	switch v := sub.(type) {
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		id, err := v.Int64()
		return id, err == nil
	default:
		return 0, false
	}
}

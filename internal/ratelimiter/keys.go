// internal/ratelimiter/keys.go
package ratelimiter

import (
	"net"
	"net/http"
	"strings"
)

const (
	DefaultKeyPrefix = "ip"
	UnknownClient    = "unknown"
)

// ClientIP devuelve la dirección del cliente, dando preferencia a las cabeceras
// del proxy: la primera entrada de X-Forwarded-For, luego X-Real-IP y por
// último la dirección remota.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return UnknownClient
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return addr
	}
	return host
}

// Key construye la clave del limitador "<prefix>:<ip>".
func Key(prefix, ip string) string {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return prefix + ":" + ip
}

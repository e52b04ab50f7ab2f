// internal/store/cache/storage.go
package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/kmilodenisglez/task-backend/internal/store"
)

const DefaultUserTTL = time.Minute

type Storage struct {
	Users UserCacher
}

// UserCacher guarda los usuarios consultados recientemente para no ir a la
// base de datos. Un fallo de caché es (nil, nil).
type UserCacher interface {
	Get(context.Context, int64) (*store.User, error)
	Set(context.Context, *store.User) error
}

func NewRedisStorage(rdb *redis.Client, ttl time.Duration) Storage {
	if ttl <= 0 {
		ttl = DefaultUserTTL
	}
	return Storage{
		Users: &UserStore{rdb: rdb, ttl: ttl},
	}
}

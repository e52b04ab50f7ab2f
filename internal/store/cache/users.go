// internal/store/cache/users.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/kmilodenisglez/task-backend/internal/store"
)

type UserStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func userKey(id int64) string {
	return fmt.Sprintf("user-%d", id)
}

func (s *UserStore) Get(ctx context.Context, userID int64) (*store.User, error) {
	data, err := s.rdb.Get(ctx, userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user store.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Set(ctx context.Context, user *store.User) error {
	if user.ID == 0 {
		return errors.New("cache: user without id")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, userKey(user.ID), data, s.ttl).Err()
}

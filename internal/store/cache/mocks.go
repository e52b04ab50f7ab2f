// internal/store/cache/mocks.go
package cache

import (
	"context"
	"sync"

	"github.com/kmilodenisglez/task-backend/internal/store"
)

func NewMockStore() Storage {
	return Storage{Users: NewMockUserCache()}
}

// MockUserCache es un UserCacher en memoria que además cuenta las consultas.
type MockUserCache struct {
	mu    sync.Mutex
	users map[int64]store.User
	Hits  int
	Miss  int
}

func NewMockUserCache() *MockUserCache {
	return &MockUserCache{users: make(map[int64]store.User)}
}

func (m *MockUserCache) Get(_ context.Context, id int64) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		m.Miss++
		return nil, nil
	}
	m.Hits++
	return &u, nil
}

func (m *MockUserCache) Set(_ context.Context, user *store.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = *user
	return nil
}

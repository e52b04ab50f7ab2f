// internal/store/mocks.go
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// NewMockStore devuelve un Storage respaldado por mapas en memoria.
func NewMockStore() Storage {
	return Storage{
		Users:  NewMockUserStore(),
		Tasks:  NewMockTaskStore(),
		Health: &MockHealth{},
	}
}

type MockHealth struct {
	Err error
}

func (m *MockHealth) PingContext(context.Context) error { return m.Err }

type MockUserStore struct {
	mu     sync.Mutex
	users  map[int64]User
	nextID int64
}

func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[int64]User)}
}

func (m *MockUserStore) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.Email = normalizeEmail(user.Email)
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	m.nextID++
	now := time.Now().UTC()
	user.ID = m.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = *user
	return nil
}

func (m *MockUserStore) GetByID(_ context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MockUserStore) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = normalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockUserStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type MockTaskStore struct {
	mu     sync.Mutex
	tasks  map[int64]Task
	nextID int64
}

func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{tasks: make(map[int64]Task)}
}

func (m *MockTaskStore) Create(_ context.Context, task *Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	now := time.Now().UTC()
	task.ID = m.nextID
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	m.tasks[task.ID] = *task
	return nil
}

func (m *MockTaskStore) GetByID(_ context.Context, id int64) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MockTaskStore) List(_ context.Context, userID int64, filter TaskFilter) ([]Task, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filter = filter.normalized()
	search := strings.ToLower(filter.Search)

	matched := []Task{}
	for _, t := range m.tasks {
		if t.UserID != userID {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		if search != "" && !taskContains(t, search) {
			continue
		}
		if filter.CreatedAfter != nil && t.CreatedAt.Before(*filter.CreatedAfter) {
			continue
		}
		matched = append(matched, t)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	if filter.Skip >= total {
		return []Task{}, total, nil
	}
	end := min(filter.Skip+filter.Limit, total)
	return matched[filter.Skip:end], total, nil
}

func taskContains(t Task, search string) bool {
	if strings.Contains(strings.ToLower(t.Title), search) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), search)
}

func (m *MockTaskStore) Update(_ context.Context, task *Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.tasks[task.ID]
	if !ok {
		return ErrNotFound
	}
	current.Title = task.Title
	current.Description = task.Description
	current.Completed = task.Completed
	current.UpdatedAt = time.Now().UTC()
	m.tasks[task.ID] = current
	task.UpdatedAt = current.UpdatedAt
	return nil
}

func (m *MockTaskStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *MockTaskStore) Stats(_ context.Context, userID int64, since time.Time) (*TaskStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total, completed, recent int
	for _, t := range m.tasks {
		if t.UserID != userID {
			continue
		}
		total++
		if t.Completed {
			completed++
		}
		if !t.CreatedAt.Before(since) {
			recent++
		}
	}
	return newTaskStats(total, completed, recent), nil
}

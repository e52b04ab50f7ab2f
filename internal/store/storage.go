// internal/store/storage.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("resource not found")
	QueryTimeoutDuration = time.Second * 5
)

// Storage agrupa los repositorios que usa la API. Los handlers solo ven las
// interfaces, así los tests pueden usar NewMockStore.
type Storage struct {
	Users interface {
		Create(context.Context, *User) error
		GetByID(context.Context, int64) (*User, error)
		GetByEmail(context.Context, string) (*User, error)
	}
	Tasks interface {
		Create(context.Context, *Task) error
		GetByID(context.Context, int64) (*Task, error)
		List(context.Context, int64, TaskFilter) ([]Task, int, error)
		Update(context.Context, *Task) error
		Delete(context.Context, int64) error
		Stats(context.Context, int64, time.Time) (*TaskStats, error)
	}
	Health interface {
		PingContext(context.Context) error
	}
}

func NewStorage(db *sql.DB) Storage {
	return Storage{
		Users:  &UserStore{db: db},
		Tasks:  &TaskStore{db: db},
		Health: db,
	}
}

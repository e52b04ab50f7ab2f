package db

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	goose.SetBaseFS(migrationsFS)
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	migrations, err := goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, int64(1), migrations[0].Version)
	assert.Equal(t, int64(2), migrations[1].Version)
}

func TestMigrationsCreateSchema(t *testing.T) {
	users, err := migrationsFS.ReadFile("migrations/00001_create_users.sql")
	require.NoError(t, err)
	assert.Contains(t, string(users), "email         VARCHAR(255) NOT NULL UNIQUE")

	tasks, err := migrationsFS.ReadFile("migrations/00002_create_tasks.sql")
	require.NoError(t, err)
	assert.Contains(t, string(tasks), "REFERENCES users (id) ON DELETE CASCADE")
	assert.Contains(t, string(tasks), "title       VARCHAR(100) NOT NULL")
}

func TestGooseLogger(t *testing.T) {
	var buf bytes.Buffer
	l := gooseLogger{logger: slog.New(slog.NewTextHandler(&buf, nil))}

	l.Printf("OK %s", "00001_create_users.sql")
	l.Fatalf("failed %d", 2)

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "OK 00001_create_users.sql")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "component=migrations")
}

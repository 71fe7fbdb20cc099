package pg_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/socialkit/pkg/pg"
)

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, pg.IsDuplicateKeyError(dup))
	assert.False(t, pg.IsDuplicateKeyError(fk))
	assert.True(t, pg.IsForeignKeyViolationError(fk))
	assert.False(t, pg.IsForeignKeyViolationError(nil))
	assert.True(t, pg.IsNotFoundError(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFoundError(errors.New("other")))
	assert.False(t, pg.IsDuplicateKeyError(nil))
}

func TestMigrate_Preconditions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()
		err := pg.Migrate(ctx, nil, pg.Config{}, fstest.MapFS{}, slog.Default())
		assert.ErrorIs(t, err, pg.ErrMigrationPathNotProvided)
		assert.ErrorIs(t, err, pg.ErrFailedToApplyMigrations)
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()
		fsys := fstest.MapFS{"other/00001_x.sql": &fstest.MapFile{Data: []byte("-- +goose Up")}}
		err := pg.Migrate(ctx, nil, pg.Config{MigrationsPath: "migrations"}, fsys, slog.Default())
		assert.ErrorIs(t, err, pg.ErrMigrationsDirNotFound)
	})
}

func TestConnect_EmptyConnectionString(t *testing.T) {
	t.Parallel()
	_, err := pg.Connect(context.Background(), pg.Config{})
	assert.ErrorIs(t, err, pg.ErrEmptyConnectionString)
}

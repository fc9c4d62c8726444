package sqlstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/phrazzld/paramstore/internal/platform/logger"
	"github.com/phrazzld/paramstore/internal/platform/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log, buf := logger.NewTestLogger(t)

	require.NoError(t, sqlstore.Migrate(ctx, db, sqlstore.DriverSQLite, sqlstore.MigrateUp, log))
	version, err := sqlstore.SchemaVersion(ctx, db, sqlstore.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	// Up is idempotent.
	require.NoError(t, sqlstore.Migrate(ctx, db, sqlstore.DriverSQLite, sqlstore.MigrateUp, log))

	require.NoError(t, sqlstore.Migrate(ctx, db, sqlstore.DriverSQLite, sqlstore.MigrateDown, log))
	version, err = sqlstore.SchemaVersion(ctx, db, sqlstore.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	require.NoError(t, sqlstore.Migrate(ctx, db, sqlstore.DriverSQLite, sqlstore.MigrateStatus, log))
	assert.NotEmpty(t, buf.Messages("INFO"), "goose output is routed to the logger")

	err = sqlstore.Migrate(ctx, db, sqlstore.DriverSQLite, "sideways", log)
	assert.ErrorContains(t, err, "unknown migration command")
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := sqlstore.Open(context.Background(), "mysql", "root@/db")
	assert.ErrorContains(t, err, "unsupported database driver")

	err = sqlstore.Migrate(context.Background(), nil, "mysql", sqlstore.MigrateUp, nil)
	assert.ErrorContains(t, err, "unsupported database driver")
}

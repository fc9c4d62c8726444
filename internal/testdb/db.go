package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/paramstore/internal/platform/sqlstore"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds database setup in tests.
const TestTimeout = 10 * time.Second

// URLEnvVar names the Postgres URL used for integration runs.
const URLEnvVar = "PARAMSTORE_TEST_DB_URL"

// Target describes the database a test runs against.
type Target struct {
	DB     *sql.DB
	Driver string
	URL    string
}

// Open returns a migrated database closed at test cleanup.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	return OpenTarget(t).DB
}

// OpenTarget is Open that also reports the driver and URL, for code under
// test that opens its own connection.
func OpenTarget(t *testing.T) Target {
	t.Helper()

	target := Target{Driver: sqlstore.DriverSQLite}
	if url := os.Getenv(URLEnvVar); url != "" {
		target.Driver = sqlstore.DriverPostgres
		target.URL = url
	} else {
		target.URL = "file:" + filepath.Join(t.TempDir(), "paramstore.db")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := sqlstore.Open(ctx, target.Driver, target.URL)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close test database: %v", err)
		}
	})

	if target.Driver == sqlstore.DriverPostgres {
		require.NoError(t, sqlstore.Migrate(ctx, db, target.Driver, sqlstore.MigrateReset, nil))
	}
	require.NoError(t, sqlstore.Migrate(ctx, db, target.Driver, sqlstore.MigrateUp, nil),
		"failed to migrate test database")

	target.DB = db
	return target
}

// RunInTx runs fn in a transaction that is always rolled back.
func RunInTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("warning: failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}

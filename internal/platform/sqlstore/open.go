package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver
)

// Supported database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

var sqlitePragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_pragma=journal_mode(WAL)",
}

// Open connects with the given driver and verifies the connection.
func Open(ctx context.Context, driver, url string) (*sql.DB, error) {
	dsn := url
	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		dsn = SQLiteDSN(url)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverPostgres {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// SQLiteDSN appends the connection pragmas the store relies on (foreign key
// enforcement for cascading deletes, a busy timeout and WAL journaling).
func SQLiteDSN(url string) string {
	var missing []string
	for _, p := range sqlitePragmas {
		name := p[len("_pragma="):strings.IndexByte(p, '(')]
		if !strings.Contains(url, name) {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + strings.Join(missing, "&")
}

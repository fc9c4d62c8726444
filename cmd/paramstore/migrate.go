package main

import (
	"context"

	"github.com/phrazzld/paramstore/internal/platform/sqlstore"
)

func runMigrate(ctx context.Context, c *cli, args []string) error {
	var configPath string
	fs := c.flagSet("migrate", &configPath)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError("migrate needs exactly one of up, down, status or version")
	}
	command := fs.Arg(0)
	switch command {
	case sqlstore.MigrateUp, sqlstore.MigrateDown, sqlstore.MigrateStatus, sqlstore.MigrateVersion:
	default:
		return usageError("unknown migrate command %q", command)
	}

	cfg, log, db, err := openDatabase(ctx, configPath, c.stderr)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := sqlstore.Migrate(ctx, db, cfg.Database.Driver, command, log); err != nil {
		return err
	}

	version, err := sqlstore.SchemaVersion(ctx, db, cfg.Database.Driver)
	if err != nil {
		return err
	}
	switch command {
	case sqlstore.MigrateUp, sqlstore.MigrateDown:
		c.printf("Migration %s completed, schema version %d\n", command, version)
	default:
		c.printf("Schema version %d\n", version)
	}
	return nil
}

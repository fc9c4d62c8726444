package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/phrazzld/paramstore/internal/envelope"
	"github.com/phrazzld/paramstore/internal/service"
)

func runRotateKey(ctx context.Context, c *cli, args []string) error {
	var (
		configPath string
		oldKey     string
		backupFile string
	)
	fs := c.flagSet("rotate-key", &configPath)
	fs.StringVar(&oldKey, "old-key", "", "key in use before the rotation; selects step 2")
	fs.StringVar(&backupFile, "backup-file", "", "file receiving the outgoing key (default from configuration)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return usageError("rotate-key takes no positional arguments")
	}

	app, err := newApplication(ctx, configPath, c.stderr)
	if err != nil {
		return err
	}
	defer app.close()

	if !app.keyring.Configured() {
		return fail("No encryption key configured. Set parameter.encryption_key first")
	}
	if fs.Changed("old-key") {
		return applyRotation(ctx, c, app, oldKey)
	}
	if backupFile == "" {
		backupFile = app.config.Parameter.EncryptionKeyBackupFile
	}
	return prepareRotation(ctx, c, app, backupFile)
}

func prepareRotation(ctx context.Context, c *cli, app *application, backupFile string) error {
	c.printf("Step 1: preparing key rotation\n")

	plan, err := app.service.PrepareRotation(ctx, backupFile)
	if err != nil {
		return err
	}
	c.printf("Found %d encrypted parameters\n", plan.EncryptedCount)
	c.printf("Current key saved to %s\n\n", plan.BackupFile)
	c.printf("NEW ENCRYPTION KEY: %s\n\n", plan.NewKey.String())
	c.printf("NEXT STEPS:\n")
	c.printf("  1. Set parameter.encryption_key (PARAMSTORE_PARAMETER_ENCRYPTION_KEY) to the new key\n")
	c.printf("  2. Run: paramstore rotate-key --old-key <previous key>\n")
	c.printf("  3. Keep %s until the rotation has completed\n", plan.BackupFile)
	return nil
}

func applyRotation(ctx context.Context, c *cli, app *application, encodedOldKey string) error {
	c.printf("Step 2: re-encrypting parameters\n")

	oldKey, err := envelope.ParseKey(encodedOldKey)
	if err != nil {
		return fail("Invalid old key provided")
	}

	result, err := app.service.ApplyRotation(ctx, oldKey)
	switch {
	case errors.Is(err, service.ErrSameKey):
		return fail("Old key and new key are identical. Configure the new key before step 2")
	case err != nil:
		return err
	}
	if result.Total == 0 {
		c.printf("No encrypted parameters found, nothing to rotate\n")
		return nil
	}

	c.printf("Processing %d encrypted parameters\n", result.Total)
	c.printf("Successfully re-encrypted %d/%d parameters\n", result.Succeeded, result.Total)
	if len(result.Failures) > 0 {
		for _, f := range result.Failures {
			reason := "failed to write"
			if errors.Is(f.Err, domain.ErrDecryption) {
				reason = "failed to decrypt with old key"
			}
			fmt.Fprintf(c.stderr, "  %s: %s\n", f.Slug, reason)
		}
		return fail("Failed to re-encrypt %d parameters", len(result.Failures))
	}
	c.printf("Rotation completed successfully\n")
	return nil
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phrazzld/paramstore/internal/config"
	"github.com/phrazzld/paramstore/internal/envelope"
	"github.com/phrazzld/paramstore/internal/service"
	"github.com/phrazzld/paramstore/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-that-is-long-enough-for-testing"

type env struct {
	dir string
	db  string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	return &env{dir: dir, db: filepath.Join(dir, "params.db")}
}

// config writes a configuration file using key, which may be empty.
func (e *env) config(t *testing.T, key string) string {
	t.Helper()
	body := fmt.Sprintf(`server:
  log_level: error
database:
  driver: sqlite
  url: %s
auth:
  jwt_secret: %s
parameter:
  encryption_key: %q
  encryption_key_backup_file: %s
`, e.db, testJWTSecret, key, filepath.Join(e.dir, "backup.json"))

	f, err := os.CreateTemp(e.dir, "config-*.yaml")
	require.NoError(t, err)
	_, err = f.WriteString(body)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	res := runCLI(t, args...)
	require.Equal(t, exitOK, res.code, "stdout: %s\nstderr: %s", res.stdout, res.stderr)
	return res.stdout
}

func TestUsage(t *testing.T) {
	t.Parallel()

	res := runCLI(t)
	assert.Equal(t, exitUsage, res.code)
	assert.Contains(t, res.stderr, "Usage: paramstore")

	res = runCLI(t, "help")
	assert.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, "rotate-key")

	res = runCLI(t, "frobnicate")
	assert.Equal(t, exitUsage, res.code)
	assert.Contains(t, res.stderr, `unknown command "frobnicate"`)
}

func TestMigrate(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	cfg := e.config(t, "")

	assert.Contains(t, mustRun(t, "migrate", "up", "--config", cfg), "Migration up completed")
	assert.Contains(t, mustRun(t, "migrate", "version", "--config", cfg), "Schema version")

	res := runCLI(t, "migrate", "sideways", "--config", cfg)
	assert.Equal(t, exitUsage, res.code)

	res = runCLI(t, "migrate", "--config", cfg)
	assert.Equal(t, exitUsage, res.code)
}

func TestLoadAndDump(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	cfg := e.config(t, "")
	mustRun(t, "migrate", "up", "--config", cfg)

	out := mustRun(t, "load", "--config", cfg, "--json",
		`[{"name": "Max users", "value_type": "INT", "value": "10",
		   "validators": [{"validator_type": "MinValueValidator", "validator_params": {"limit_value": 1}}]}]`)
	assert.Contains(t, out, "Successfully loaded 1 parameter(s)")

	yamlFile := filepath.Join(e.dir, "params.yml")
	require.NoError(t, os.WriteFile(yamlFile, []byte("- name: Site name\n  value: Acme\n  is_global: true\n"), 0o600))
	assert.Contains(t, mustRun(t, "load", "--config", cfg, "--file", yamlFile), "Successfully loaded 1 parameter(s)")

	mustRun(t, "load", "--config", cfg, "--no-update", "--json", `[{"name": "Max users", "value": "99"}]`)

	dumpFile := filepath.Join(e.dir, "dump.json")
	out = mustRun(t, "dump", dumpFile, "--config", cfg)
	assert.Contains(t, out, "Successfully exported 2 parameter(s) to "+dumpFile)

	data, err := os.ReadFile(dumpFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n    {"), string(data))

	var records []service.Record
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "MAX_USERS", records[0].Slug)
	assert.Equal(t, "10", records[0].Value)
	// The --no-update run still replaced the validator list with its own empty one.
	assert.Empty(t, records[0].Validators)
	assert.Equal(t, "SITE_NAME", records[1].Slug)
	assert.True(t, records[1].IsGlobal)

	compact := filepath.Join(e.dir, "compact.json")
	mustRun(t, "dump", compact, "--indent", "0", "--config", cfg)
	data, err = os.ReadFile(compact)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n")
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	cfg := e.config(t, "")
	mustRun(t, "migrate", "up", "--config", cfg)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no source", []string{"load", "--config", cfg}, exitUsage},
		{"both sources", []string{"load", "--config", cfg, "--file", "x.json", "--json", "[]"}, exitUsage},
		{"missing file", []string{"load", "--config", cfg, "--file", filepath.Join(e.dir, "absent.json")}, exitError},
		{"bad JSON", []string{"load", "--config", cfg, "--json", "{"}, exitError},
		{"unknown type", []string{"load", "--config", cfg, "--json", `[{"name": "X", "value_type": "NOPE"}]`}, exitError},
		{"dump without file", []string{"dump", "--config", cfg}, exitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)
			assert.Equal(t, tt.code, res.code, res.stderr)
		})
	}
}

func TestRotateKey(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	oldKey, err := envelope.GenerateKey()
	require.NoError(t, err)
	oldCfg := e.config(t, oldKey.String())
	mustRun(t, "migrate", "up", "--config", oldCfg)
	mustRun(t, "load", "--config", oldCfg, "--json",
		`[{"name": "Api secret", "value": "hunter2", "enable_cypher": true},
		  {"name": "Public", "value": "open"}]`)

	out := mustRun(t, "rotate-key", "--config", oldCfg)
	assert.Contains(t, out, "Step 1")
	assert.Contains(t, out, "Found 1 encrypted parameters")
	assert.Contains(t, out, "NEXT STEPS:")

	var newKey string
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "NEW ENCRYPTION KEY: "); ok {
			newKey = rest
		}
	}
	require.NotEmpty(t, newKey, out)
	_, err = envelope.ParseKey(newKey)
	require.NoError(t, err)

	backup, err := service.ReadBackupFile(filepath.Join(e.dir, "backup.json"))
	require.NoError(t, err)
	require.Len(t, backup.Keys, 1)
	assert.Equal(t, oldKey.String(), backup.Keys[0].Key)

	newCfg := e.config(t, newKey)

	res := runCLI(t, "rotate-key", "--config", newCfg, "--old-key", "not-a-key")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, "Invalid old key provided")

	res = runCLI(t, "rotate-key", "--config", newCfg, "--old-key", newKey)
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, "Old key and new key are identical")

	out = mustRun(t, "rotate-key", "--config", newCfg, "--old-key", oldKey.String())
	assert.Contains(t, out, "Step 2")
	assert.Contains(t, out, "Processing 1 encrypted parameters")
	assert.Contains(t, out, "Successfully re-encrypted 1/1 parameters")
	assert.Contains(t, out, "Rotation completed successfully")

	dumpFile := filepath.Join(e.dir, "after.json")
	mustRun(t, "dump", dumpFile, "--config", newCfg)
	data, err := os.ReadFile(dumpFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"value": "hunter2"`)

	res = runCLI(t, "rotate-key", "--config", newCfg, "--old-key", oldKey.String())
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, "Failed to re-encrypt 1 parameters")
	assert.Contains(t, res.stderr, "API_SECRET: failed to decrypt with old key")
}

func TestRotateKeyWithoutKey(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	cfg := e.config(t, "")
	mustRun(t, "migrate", "up", "--config", cfg)

	res := runCLI(t, "rotate-key", "--config", cfg)
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, "No encryption key configured")
}

func TestRotateKeyWithoutEncryptedParameters(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	key, err := envelope.GenerateKey()
	require.NoError(t, err)
	cfg := e.config(t, key.String())
	mustRun(t, "migrate", "up", "--config", cfg)

	out := mustRun(t, "rotate-key", "--config", cfg)
	assert.Contains(t, out, "Found 0 encrypted parameters")
	assert.NotContains(t, out, "No encrypted parameters found")

	var newKey string
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "NEW ENCRYPTION KEY: "); ok {
			newKey = rest
		}
	}
	require.NotEmpty(t, newKey, out)

	backup, err := service.ReadBackupFile(filepath.Join(e.dir, "backup.json"))
	require.NoError(t, err)
	require.Len(t, backup.Keys, 1)
	assert.Equal(t, key.String(), backup.Keys[0].Key)
	assert.Zero(t, backup.Keys[0].ParametersCount)

	applied := mustRun(t, "rotate-key", "--old-key", key.String(), "--config", e.config(t, newKey))
	assert.Contains(t, applied, "No encrypted parameters found")
}

func TestToken(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	cfg := e.config(t, "")

	token := strings.TrimSpace(mustRun(t, "token", "--subject", "ops", "--config", cfg))

	jwtService, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testJWTSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)

	res := runCLI(t, "token", "--config", cfg)
	assert.Equal(t, exitUsage, res.code)
}

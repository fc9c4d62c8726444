package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/paramstore/internal/envelope"
	"github.com/phrazzld/paramstore/internal/events"
)

// DefaultBackupFile is where PrepareRotation records retired keys unless told otherwise.
const DefaultBackupFile = "dap_backup_key.json"

// BackupFile is the on-disk list of retired keys. It is only ever appended to.
type BackupFile struct {
	Keys []BackupEntry `json:"keys"`
}

// BackupEntry records a key that was in use when a rotation was prepared.
type BackupEntry struct {
	Timestamp       string `json:"timestamp"`
	Key             string `json:"key"`
	ParametersCount int    `json:"parameters_count"`
}

// RotationPlan is the outcome of PrepareRotation.
type RotationPlan struct {
	// EncryptedCount is the number of parameters flagged enable_cypher when
	// the plan was made. It may be zero; the key is recorded either way.
	EncryptedCount int
	NewKey         envelope.Key
	BackupFile     string
}

// RotationFailure is a parameter ApplyRotation could not re-encrypt.
type RotationFailure struct {
	Slug string
	Err  error
}

// RotationResult reports what ApplyRotation did.
type RotationResult struct {
	RunID     uuid.UUID
	Total     int
	Succeeded int
	Failures  []RotationFailure
}

// PrepareRotation is the first rotation step. It appends the configured key
// to backupFile, generates a new key and returns it. No parameter is modified.
func (s *ParameterService) PrepareRotation(ctx context.Context, backupFile string) (*RotationPlan, error) {
	current, err := s.keyring.Key()
	if err != nil {
		return nil, err
	}

	encrypted, err := s.store.ListEncrypted(ctx)
	if err != nil {
		return nil, NewServiceError("prepare_rotation", "failed to list encrypted parameters", err)
	}
	if backupFile == "" {
		backupFile = DefaultBackupFile
	}
	if err := appendBackup(backupFile, BackupEntry{
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		Key:             current.String(),
		ParametersCount: len(encrypted),
	}); err != nil {
		return nil, NewServiceError("prepare_rotation", "failed to write key backup", err)
	}

	newKey, err := envelope.GenerateKey()
	if err != nil {
		return nil, NewServiceError("prepare_rotation", "failed to generate key", err)
	}

	s.log(ctx).Info("key rotation prepared",
		"encrypted_parameters", len(encrypted),
		"backup_file", backupFile)
	return &RotationPlan{
		EncryptedCount: len(encrypted),
		NewKey:         newKey,
		BackupFile:     backupFile,
	}, nil
}

// ApplyRotation is the second rotation step. Every encrypted parameter is
// opened with oldKey and sealed again with the configured key. A parameter
// that fails to open is reported in the result and left unchanged; the
// others are written one by one and stay rotated. A value stored in plain
// text is sealed with the configured key. No history is written.
func (s *ParameterService) ApplyRotation(ctx context.Context, oldKey envelope.Key) (*RotationResult, error) {
	log := s.log(ctx)

	newKey, err := s.keyring.Key()
	if err != nil {
		return nil, err
	}
	if oldKey.Equal(newKey) {
		return nil, ErrSameKey
	}

	encrypted, err := s.store.ListEncrypted(ctx)
	if err != nil {
		return nil, NewServiceError("apply_rotation", "failed to list encrypted parameters", err)
	}

	result := &RotationResult{RunID: uuid.New(), Total: len(encrypted)}
	log = log.With("rotation_id", result.RunID)

	for _, p := range encrypted {
		plain := p.Value
		if envelope.IsEncrypted(p.Value) {
			plain, err = envelope.Decrypt(p.Value, oldKey)
			if err != nil {
				log.Warn("cannot decrypt parameter with old key", "slug", p.Slug, "error", err)
				result.Failures = append(result.Failures, RotationFailure{Slug: p.Slug, Err: err})
				continue
			}
		}

		sealed, err := envelope.Encrypt(plain, newKey)
		if err == nil {
			err = s.store.UpdateValue(ctx, p.ID, sealed)
		}
		if err != nil {
			log.Error("failed to re-encrypt parameter", "slug", p.Slug, "error", err)
			result.Failures = append(result.Failures, RotationFailure{Slug: p.Slug, Err: err})
			continue
		}
		result.Succeeded++
	}

	log.Info("key rotation applied",
		"total", result.Total,
		"succeeded", result.Succeeded,
		"failed", len(result.Failures))

	if result.Total > 0 {
		event := events.NewParameterEvent(events.KeyRotated, "")
		event.Count = result.Succeeded
		event.Failed = len(result.Failures)
		s.emit(ctx, event)
	}
	return result, nil
}

// appendBackup adds entry to the backup file at path, creating it when absent.
func appendBackup(path string, entry BackupEntry) error {
	backup := BackupFile{Keys: []BackupEntry{}}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return err
	default:
		if err := json.Unmarshal(data, &backup); err != nil {
			return fmt.Errorf("backup file %s is not valid JSON: %w", path, err)
		}
		if backup.Keys == nil {
			backup.Keys = []BackupEntry{}
		}
	}

	backup.Keys = append(backup.Keys, entry)
	out, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

// ReadBackupFile loads the backup file at path.
func ReadBackupFile(path string) (*BackupFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var backup BackupFile
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("backup file %s is not valid JSON: %w", path, err)
	}
	return &backup, nil
}

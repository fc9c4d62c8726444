package sqlstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/phrazzld/paramstore/internal/platform/logger"
	"github.com/phrazzld/paramstore/internal/store"
)

const parameterColumns = `id, name, slug, value_type, description, value,
	is_global, enable_cypher, enable_history, created_at, updated_at`

// ParameterStore implements store.ParameterStore.
type ParameterStore struct {
	db     store.DBTX
	pool   *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ store.ParameterStore = (*ParameterStore)(nil)

// NewParameterStore creates a store on db. A nil logger means slog.Default().
func NewParameterStore(db *sql.DB, log *slog.Logger) *ParameterStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse is a programming error
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &ParameterStore{
		db:     db,
		pool:   db,
		logger: log.With(slog.String("component", "parameter_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithTx implements store.ParameterStore.
func (s *ParameterStore) WithTx(tx *sql.Tx) store.ParameterStore {
	return &ParameterStore{db: tx, pool: s.pool, logger: s.logger, now: s.now}
}

// DB implements store.ParameterStore.
func (s *ParameterStore) DB() *sql.DB {
	return s.pool
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParameter(row rowScanner) (*domain.Parameter, error) {
	var (
		p                domain.Parameter
		valueType        string
		created, updated int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &valueType, &p.Description, &p.Value,
		&p.IsGlobal, &p.EnableCypher, &p.EnableHistory, &created, &updated); err != nil {
		return nil, err
	}
	p.ValueType = domain.ValueType(valueType)
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return &p, nil
}

// Create implements store.ParameterStore.
func (s *ParameterStore) Create(ctx context.Context, p *domain.Parameter) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	p.EnsureSlug()
	if err := p.Validate(); err != nil {
		return err
	}

	now := s.now()
	query := `
		INSERT INTO parameters (name, slug, value_type, description, value,
			is_global, enable_cypher, enable_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		p.Name, p.Slug, string(p.ValueType), p.Description, p.Value,
		p.IsGlobal, p.EnableCypher, p.EnableHistory, toMillis(now), toMillis(now),
	).Scan(&p.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("slug already taken", slog.String("slug", p.Slug))
			return fmt.Errorf("%w: %s", store.ErrSlugExists, p.Slug)
		}
		log.Error("failed to create parameter",
			slog.String("error", err.Error()),
			slog.String("slug", p.Slug))
		return store.NewStoreError("parameter", "create", "insert failed", MapError(err))
	}

	p.CreatedAt = fromMillis(toMillis(now))
	p.UpdatedAt = p.CreatedAt
	log.Debug("parameter created", slog.Int64("id", p.ID), slog.String("slug", p.Slug))
	return nil
}

// GetByID implements store.ParameterStore.
func (s *ParameterStore) GetByID(ctx context.Context, id int64) (*domain.Parameter, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+parameterColumns+` FROM parameters WHERE id = $1`, id)
	p, err := scanParameter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", store.ErrParameterNotFound, id)
	}
	if err != nil {
		return nil, store.NewStoreError("parameter", "get", "query failed", MapError(err))
	}
	return p, nil
}

// GetBySlug implements store.ParameterStore.
func (s *ParameterStore) GetBySlug(ctx context.Context, slug string) (*domain.Parameter, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+parameterColumns+` FROM parameters WHERE slug = $1`, slug)
	p, err := scanParameter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: slug %s", store.ErrParameterNotFound, slug)
	}
	if err != nil {
		return nil, store.NewStoreError("parameter", "get", "query failed", MapError(err))
	}
	return p, nil
}

// List implements store.ParameterStore.
func (s *ParameterStore) List(ctx context.Context) ([]*domain.Parameter, error) {
	return s.listWhere(ctx, "")
}

// ListGlobal implements store.ParameterStore.
func (s *ParameterStore) ListGlobal(ctx context.Context) ([]*domain.Parameter, error) {
	return s.listWhere(ctx, "WHERE is_global = $1", true)
}

// ListEncrypted implements store.ParameterStore.
func (s *ParameterStore) ListEncrypted(ctx context.Context) ([]*domain.Parameter, error) {
	return s.listWhere(ctx, "WHERE enable_cypher = $1", true)
}

func (s *ParameterStore) listWhere(ctx context.Context, where string, args ...any) ([]*domain.Parameter, error) {
	query := `SELECT ` + parameterColumns + ` FROM parameters ` + where + ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("parameter", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	params := []*domain.Parameter{}
	for rows.Next() {
		p, err := scanParameter(rows)
		if err != nil {
			return nil, store.NewStoreError("parameter", "list", "scan failed", err)
		}
		params = append(params, p)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("parameter", "list", "iteration failed", err)
	}
	return params, nil
}

// Update implements store.ParameterStore.
func (s *ParameterStore) Update(ctx context.Context, p *domain.Parameter) error {
	if p.Name == "" {
		return domain.ErrEmptyName
	}
	now := s.now()
	query := `
		UPDATE parameters
		SET name = $1, description = $2, value = $3, is_global = $4,
			enable_cypher = $5, enable_history = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(ctx, query,
		p.Name, p.Description, p.Value, p.IsGlobal,
		p.EnableCypher, p.EnableHistory, toMillis(now), p.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update parameter",
			slog.String("error", err.Error()),
			slog.Int64("id", p.ID))
		return store.NewStoreError("parameter", "update", "update failed", MapError(err))
	}
	if err := CheckRowsAffected(result, fmt.Errorf("%w: id %d", store.ErrParameterNotFound, p.ID)); err != nil {
		return err
	}
	p.UpdatedAt = fromMillis(toMillis(now))
	return nil
}

// UpdateValue implements store.ParameterStore.
func (s *ParameterStore) UpdateValue(ctx context.Context, id int64, value string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE parameters SET value = $1, updated_at = $2 WHERE id = $3`,
		value, toMillis(s.now()), id)
	if err != nil {
		return store.NewStoreError("parameter", "update_value", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, fmt.Errorf("%w: id %d", store.ErrParameterNotFound, id))
}

// Delete implements store.ParameterStore.
func (s *ParameterStore) Delete(ctx context.Context, id int64) error {
	for _, q := range []string{
		`DELETE FROM parameter_validators WHERE parameter_id = $1`,
		`DELETE FROM parameter_history WHERE parameter_id = $1`,
	} {
		if _, err := s.db.ExecContext(ctx, q, id); err != nil {
			return store.NewStoreError("parameter", "delete", "delete children failed", MapError(err))
		}
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM parameters WHERE id = $1`, id)
	if err != nil {
		return store.NewStoreError("parameter", "delete", "delete failed", MapError(err))
	}
	return CheckRowsAffected(result, fmt.Errorf("%w: id %d", store.ErrParameterNotFound, id))
}

// ListValidators implements store.ParameterStore.
func (s *ParameterStore) ListValidators(ctx context.Context, parameterID int64) ([]*domain.ParameterValidator, error) {
	query := `
		SELECT id, parameter_id, validator_type, validator_params, position, created_at
		FROM parameter_validators
		WHERE parameter_id = $1
		ORDER BY position, id
	`
	rows, err := s.db.QueryContext(ctx, query, parameterID)
	if err != nil {
		return nil, store.NewStoreError("parameter_validator", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.ParameterValidator{}
	for rows.Next() {
		var (
			v       domain.ParameterValidator
			raw     string
			created int64
		)
		if err := rows.Scan(&v.ID, &v.ParameterID, &v.ValidatorType, &raw, &v.Order, &created); err != nil {
			return nil, store.NewStoreError("parameter_validator", "list", "scan failed", err)
		}
		params, err := decodeParams(raw)
		if err != nil {
			return nil, store.NewStoreError("parameter_validator", "list",
				fmt.Sprintf("bad params for validator %d", v.ID), err)
		}
		v.ValidatorParams = params
		v.CreatedAt = fromMillis(created)
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("parameter_validator", "list", "iteration failed", err)
	}
	return out, nil
}

// AddValidator implements store.ParameterStore.
func (s *ParameterStore) AddValidator(ctx context.Context, v *domain.ParameterValidator) error {
	raw, err := encodeParams(v.ValidatorParams)
	if err != nil {
		return fmt.Errorf("%w: validator params: %v", store.ErrInvalidEntity, err)
	}
	now := s.now()
	query := `
		INSERT INTO parameter_validators (parameter_id, validator_type, validator_params, position, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := s.db.QueryRowContext(ctx, query,
		v.ParameterID, v.ValidatorType, raw, v.Order, toMillis(now)).Scan(&v.ID); err != nil {
		return store.NewStoreError("parameter_validator", "create", "insert failed", MapError(err))
	}
	v.CreatedAt = fromMillis(toMillis(now))
	return nil
}

// DeleteValidators implements store.ParameterStore.
func (s *ParameterStore) DeleteValidators(ctx context.Context, parameterID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM parameter_validators WHERE parameter_id = $1`, parameterID); err != nil {
		return store.NewStoreError("parameter_validator", "delete", "delete failed", MapError(err))
	}
	return nil
}

// AppendHistory implements store.ParameterStore.
func (s *ParameterStore) AppendHistory(ctx context.Context, h *domain.ParameterHistory) error {
	if h.ModifiedAt.IsZero() {
		h.ModifiedAt = s.now()
	}
	h.ModifiedAt = fromMillis(toMillis(h.ModifiedAt))
	query := `
		INSERT INTO parameter_history (parameter_id, value, modified_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := s.db.QueryRowContext(ctx, query,
		h.ParameterID, h.Value, toMillis(h.ModifiedAt)).Scan(&h.ID); err != nil {
		return store.NewStoreError("parameter_history", "append", "insert failed", MapError(err))
	}
	return nil
}

// ListHistory implements store.ParameterStore.
func (s *ParameterStore) ListHistory(ctx context.Context, parameterID int64) ([]*domain.ParameterHistory, error) {
	query := `
		SELECT id, parameter_id, value, modified_at
		FROM parameter_history
		WHERE parameter_id = $1
		ORDER BY modified_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, parameterID)
	if err != nil {
		return nil, store.NewStoreError("parameter_history", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.ParameterHistory{}
	for rows.Next() {
		var (
			h        domain.ParameterHistory
			modified int64
		)
		if err := rows.Scan(&h.ID, &h.ParameterID, &h.Value, &modified); err != nil {
			return nil, store.NewStoreError("parameter_history", "list", "scan failed", err)
		}
		h.ModifiedAt = fromMillis(modified)
		out = append(out, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("parameter_history", "list", "iteration failed", err)
	}
	return out, nil
}

func encodeParams(params map[string]any) (string, error) {
	if len(params) == 0 {
		return "{}", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(params); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// decodeParams keeps numbers as json.Number so they re-encode unchanged.
func decodeParams(raw string) (map[string]any, error) {
	params := map[string]any{}
	if raw == "" {
		return params, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(&params); err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]any{}
	}
	return params, nil
}

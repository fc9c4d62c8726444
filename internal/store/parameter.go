package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/paramstore/internal/domain"
)

// ParameterStore persists parameters together with their validator attachments
// and history ledger. Listing methods return rows in primary key order unless
// documented otherwise; an empty result is an empty slice, never an error.
type ParameterStore interface {
	// Create inserts p and sets its ID and timestamps.
	// Returns ErrSlugExists if the slug is taken.
	Create(ctx context.Context, p *domain.Parameter) error

	// GetByID returns ErrParameterNotFound if no row matches.
	GetByID(ctx context.Context, id int64) (*domain.Parameter, error)

	// GetBySlug returns ErrParameterNotFound if no row matches.
	GetBySlug(ctx context.Context, slug string) (*domain.Parameter, error)

	List(ctx context.Context) ([]*domain.Parameter, error)

	// ListGlobal returns parameters flagged is_global.
	ListGlobal(ctx context.Context) ([]*domain.Parameter, error)

	// ListEncrypted returns parameters flagged enable_cypher.
	ListEncrypted(ctx context.Context) ([]*domain.Parameter, error)

	// Update writes every mutable column of p. Slug and value type are never changed.
	Update(ctx context.Context, p *domain.Parameter) error

	// UpdateValue writes only the raw value and the update timestamp.
	UpdateValue(ctx context.Context, id int64, value string) error

	// Delete removes the parameter, its validators and its history.
	Delete(ctx context.Context, id int64) error

	// ListValidators returns attachments ordered by position, then id.
	ListValidators(ctx context.Context, parameterID int64) ([]*domain.ParameterValidator, error)

	// AddValidator inserts v and sets its ID and creation time.
	AddValidator(ctx context.Context, v *domain.ParameterValidator) error

	// DeleteValidators removes every attachment of the parameter.
	DeleteValidators(ctx context.Context, parameterID int64) error

	// AppendHistory inserts h and sets its ID. A zero ModifiedAt is set to now.
	AppendHistory(ctx context.Context, h *domain.ParameterHistory) error

	// ListHistory returns entries newest first.
	ListHistory(ctx context.Context, parameterID int64) ([]*domain.ParameterHistory, error)

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) ParameterStore

	// DB returns the underlying connection pool for starting transactions.
	DB() *sql.DB
}

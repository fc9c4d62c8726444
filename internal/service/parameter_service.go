package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/paramstore/internal/codec"
	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/phrazzld/paramstore/internal/envelope"
	"github.com/phrazzld/paramstore/internal/events"
	"github.com/phrazzld/paramstore/internal/platform/logger"
	"github.com/phrazzld/paramstore/internal/store"
	"github.com/phrazzld/paramstore/internal/validators"
)

// ParameterService reads and writes typed parameter values.
type ParameterService struct {
	store    store.ParameterStore
	registry *validators.Registry
	keyring  *envelope.Keyring
	emitter  events.EventEmitter
	logger   *slog.Logger
}

// NewParameterService creates a ParameterService. The store is required. A nil
// registry resolves built-ins only, a nil keyring has no key, and a nil
// emitter drops events.
func NewParameterService(
	parameterStore store.ParameterStore,
	registry *validators.Registry,
	keyring *envelope.Keyring,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*ParameterService, error) {
	if parameterStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "parameterStore cannot be nil"}
	}
	if registry == nil {
		registry = validators.NewRegistry(nil, nil)
	}
	if keyring == nil {
		keyring = &envelope.Keyring{}
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ParameterService{
		store:    parameterStore,
		registry: registry,
		keyring:  keyring,
		emitter:  emitter,
		logger:   logger.With("component", "parameter_service"),
	}, nil
}

// Registry returns the validator registry used for attached validators.
func (s *ParameterService) Registry() *validators.Registry {
	return s.registry
}

func (s *ParameterService) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// Get returns the parameter stored under slug. A missing slug is reported as a
// *MissingParameterError, which reads as a deployment misconfiguration.
func (s *ParameterService) Get(ctx context.Context, slug string) (*domain.Parameter, error) {
	return s.get(ctx, s.store, slug)
}

func (s *ParameterService) get(ctx context.Context, st store.ParameterStore, slug string) (*domain.Parameter, error) {
	p, err := st.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &MissingParameterError{Slug: slug}
		}
		return nil, NewServiceError("get", "failed to load parameter", err)
	}
	return p, nil
}

// Parameters returns every parameter in creation order.
func (s *ParameterService) Parameters(ctx context.Context) ([]*domain.Parameter, error) {
	params, err := s.store.List(ctx)
	if err != nil {
		return nil, NewServiceError("list", "failed to list parameters", err)
	}
	return params, nil
}

// Plain returns the canonical string of p, opening the envelope when the raw
// value carries one.
func (s *ParameterService) Plain(p *domain.Parameter) (string, error) {
	if !envelope.IsEncrypted(p.Value) {
		return p.Value, nil
	}
	plain, err := s.keyring.Decrypt(p.Value)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.Slug, err)
	}
	return plain, nil
}

// Value decodes p as its declared type.
func (s *ParameterService) Value(p *domain.Parameter) (any, error) {
	plain, err := s.Plain(p)
	if err != nil {
		return nil, err
	}
	return codec.Decode(p.ValueType, plain)
}

// Create stores a new parameter. p.Value is taken as the canonical string of
// the value; it must decode under p.ValueType and is encrypted when
// EnableCypher is set.
func (s *ParameterService) Create(ctx context.Context, p *domain.Parameter) error {
	if p.ValueType == "" {
		p.ValueType = domain.TypeStr
	}
	p.EnsureSlug()
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Value != "" {
		if _, err := codec.Decode(p.ValueType, p.Value); err != nil {
			return err
		}
	}

	err := store.RunInTransaction(ctx, s.store.DB(), func(ctx context.Context, tx *sql.Tx) error {
		return s.create(ctx, s.store.WithTx(tx), p)
	})
	if err != nil {
		s.log(ctx).Error("failed to create parameter",
			"error", err,
			"slug", p.Slug)
		return NewServiceError("create", "failed to create parameter", err)
	}

	s.emit(ctx, events.NewParameterEvent(events.ParameterCreated, p.Slug))
	return nil
}

func (s *ParameterService) create(ctx context.Context, st store.ParameterStore, p *domain.Parameter) error {
	if p.EnableCypher {
		sealed, err := s.keyring.Encrypt(p.Value)
		if err != nil {
			return err
		}
		p.Value = sealed
	}
	return st.Create(ctx, p)
}

// Set writes v to p. v must have the Go type that the declared value type
// requires; see codec.Check. The EnableCypher and EnableHistory flags held by
// p are saved with the value and govern this write. On success p reflects the
// stored row.
func (s *ParameterService) Set(ctx context.Context, p *domain.Parameter, v any) error {
	return s.set(ctx, p, "", v)
}

// set runs the write pipeline. A non-empty want restricts the declared type.
func (s *ParameterService) set(ctx context.Context, p *domain.Parameter, want domain.ValueType, v any) error {
	log := s.log(ctx)

	var (
		updated *domain.Parameter
		changed bool
	)
	err := store.RunInTransaction(ctx, s.store.DB(), func(ctx context.Context, tx *sql.Tx) error {
		st := s.store.WithTx(tx)

		current, err := st.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		if want != "" && current.ValueType != want {
			return fmt.Errorf("%w: %s holds %s, not %s",
				domain.ErrTypeMismatch, current.Slug, current.ValueType.Label(), want.Label())
		}

		value, err := codec.Check(current.ValueType, v)
		if err != nil {
			return err
		}
		if err := s.runValidators(ctx, st, current, value); err != nil {
			return err
		}
		plain, err := codec.Encode(current.ValueType, value)
		if err != nil {
			return err
		}

		flagsChanged := current.EnableCypher != p.EnableCypher || current.EnableHistory != p.EnableHistory
		if flagsChanged {
			current.EnableCypher = p.EnableCypher
			current.EnableHistory = p.EnableHistory
			if err := st.Update(ctx, current); err != nil {
				return err
			}
		}

		changed, err = s.writeValue(ctx, st, current, plain)
		if err != nil {
			return err
		}
		changed = changed || flagsChanged
		updated = current
		return nil
	})
	if err != nil {
		log.Error("failed to set parameter value",
			"error", err,
			"slug", p.Slug)
		return NewServiceError("set", "failed to set parameter value", err)
	}

	*p = *updated
	if changed {
		log.Debug("parameter value updated", "slug", p.Slug)
		s.emit(ctx, events.NewParameterEvent(events.ParameterUpdated, p.Slug))
	}
	return nil
}

// runValidators applies the attached validators in order. Attachments whose
// type is no longer known are skipped.
func (s *ParameterService) runValidators(
	ctx context.Context,
	st store.ParameterStore,
	p *domain.Parameter,
	value any,
) error {
	attached, err := st.ListValidators(ctx, p.ID)
	if err != nil {
		return err
	}
	for _, a := range attached {
		pred, err := s.registry.Build(a.ValidatorType, a.Params())
		if errors.Is(err, validators.ErrUnknownValidator) {
			s.log(ctx).Warn("skipping unknown validator",
				"slug", p.Slug,
				"validator_type", a.ValidatorType)
			continue
		}
		if err != nil {
			return fmt.Errorf("validator %s: %w", a.ValidatorType, err)
		}
		if err := pred(value); err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) && verr.Field == "" {
				named := *verr
				named.Field = p.Slug
				return &named
			}
			return err
		}
	}
	return nil
}

// writeValue stores plain as the value of p, sealing it when p.EnableCypher is
// set and logging the prior raw value when p.EnableHistory is set. A write that
// leaves both the plaintext and the sealed state unchanged stores nothing.
func (s *ParameterService) writeValue(
	ctx context.Context,
	st store.ParameterStore,
	p *domain.Parameter,
	plain string,
) (bool, error) {
	if current, err := s.Plain(p); err == nil && current == plain &&
		envelope.IsEncrypted(p.Value) == p.EnableCypher {
		return false, nil
	}

	raw := plain
	if p.EnableCypher {
		sealed, err := s.keyring.Encrypt(plain)
		if err != nil {
			return false, err
		}
		raw = sealed
	}

	if p.EnableHistory && p.Value != "" {
		if err := st.AppendHistory(ctx, &domain.ParameterHistory{
			ParameterID: p.ID,
			Value:       p.Value,
		}); err != nil {
			return false, err
		}
	}
	if err := st.UpdateValue(ctx, p.ID, raw); err != nil {
		return false, err
	}
	p.Value = raw
	return true, nil
}

// Delete removes the parameter stored under slug with its validators and history.
func (s *ParameterService) Delete(ctx context.Context, slug string) error {
	p, err := s.Get(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, p.ID); err != nil {
		s.log(ctx).Error("failed to delete parameter",
			"error", err,
			"slug", slug)
		return NewServiceError("delete", "failed to delete parameter", err)
	}
	s.log(ctx).Info("parameter deleted", "slug", slug)
	s.emit(ctx, events.NewParameterEvent(events.ParameterDeleted, slug))
	return nil
}

// History returns the prior raw values of p, newest first.
func (s *ParameterService) History(ctx context.Context, p *domain.Parameter) ([]*domain.ParameterHistory, error) {
	entries, err := s.store.ListHistory(ctx, p.ID)
	if err != nil {
		return nil, NewServiceError("history", "failed to list history", err)
	}
	return entries, nil
}

// Validators returns the attachments of p in invocation order.
func (s *ParameterService) Validators(ctx context.Context, p *domain.Parameter) ([]*domain.ParameterValidator, error) {
	attached, err := s.store.ListValidators(ctx, p.ID)
	if err != nil {
		return nil, NewServiceError("validators", "failed to list validators", err)
	}
	return attached, nil
}

// AddValidator attaches a validator after the existing ones. The type must
// resolve and the params must configure it.
func (s *ParameterService) AddValidator(
	ctx context.Context,
	p *domain.Parameter,
	validatorType string,
	params map[string]any,
) (*domain.ParameterValidator, error) {
	if _, err := s.registry.Build(validatorType, params); err != nil {
		return nil, err
	}

	v := &domain.ParameterValidator{
		ParameterID:     p.ID,
		ValidatorType:   validatorType,
		ValidatorParams: params,
	}
	err := store.RunInTransaction(ctx, s.store.DB(), func(ctx context.Context, tx *sql.Tx) error {
		st := s.store.WithTx(tx)
		existing, err := st.ListValidators(ctx, p.ID)
		if err != nil {
			return err
		}
		v.Order = len(existing)
		return st.AddValidator(ctx, v)
	})
	if err != nil {
		return nil, NewServiceError("add_validator", "failed to attach validator", err)
	}

	s.emit(ctx, events.NewParameterEvent(events.ValidatorsChanged, p.Slug))
	return v, nil
}

// ReplaceValidators deletes every attachment of p and attaches specs in order.
// An empty specs leaves p without validators.
func (s *ParameterService) ReplaceValidators(ctx context.Context, p *domain.Parameter, specs []ValidatorRecord) error {
	for _, spec := range specs {
		if _, err := s.registry.Build(spec.ValidatorType, spec.ValidatorParams); err != nil {
			return err
		}
	}
	err := store.RunInTransaction(ctx, s.store.DB(), func(ctx context.Context, tx *sql.Tx) error {
		return replaceValidators(ctx, s.store.WithTx(tx), p.ID, specs)
	})
	if err != nil {
		return NewServiceError("replace_validators", "failed to replace validators", err)
	}
	s.emit(ctx, events.NewParameterEvent(events.ValidatorsChanged, p.Slug))
	return nil
}

func replaceValidators(ctx context.Context, st store.ParameterStore, parameterID int64, specs []ValidatorRecord) error {
	if err := st.DeleteValidators(ctx, parameterID); err != nil {
		return err
	}
	for i, spec := range specs {
		if err := st.AddValidator(ctx, &domain.ParameterValidator{
			ParameterID:     parameterID,
			ValidatorType:   spec.ValidatorType,
			ValidatorParams: spec.ValidatorParams,
			Order:           i,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Globals returns slug to plain value for every parameter flagged is_global.
func (s *ParameterService) Globals(ctx context.Context) (map[string]string, error) {
	params, err := s.store.ListGlobal(ctx)
	if err != nil {
		return nil, NewServiceError("globals", "failed to list global parameters", err)
	}
	out := make(map[string]string, len(params))
	for _, p := range params {
		plain, err := s.Plain(p)
		if err != nil {
			return nil, err
		}
		out[p.Slug] = plain
	}
	return out, nil
}

// emit publishes event. The change is already committed, so a failing handler
// is logged and not reported to the caller.
func (s *ParameterService) emit(ctx context.Context, event *events.ParameterEvent) {
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.log(ctx).Warn("failed to emit parameter event",
			"error", err,
			"event_type", event.Type,
			"slug", event.Slug)
	}
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/phrazzld/paramstore/internal/events"
	"github.com/phrazzld/paramstore/internal/store"
)

// Record is the external representation of a parameter used by dump, load
// and the API. Value is the plain canonical string, decrypted when needed.
// History is never part of a record.
type Record struct {
	Name          string            `json:"name" yaml:"name"`
	Slug          string            `json:"slug" yaml:"slug"`
	Value         string            `json:"value" yaml:"value"`
	ValueType     domain.ValueType  `json:"value_type" yaml:"value_type"`
	Description   string            `json:"description" yaml:"description"`
	IsGlobal      bool              `json:"is_global" yaml:"is_global"`
	EnableCypher  bool              `json:"enable_cypher" yaml:"enable_cypher"`
	EnableHistory bool              `json:"enable_history" yaml:"enable_history"`
	Validators    []ValidatorRecord `json:"validators,omitempty" yaml:"validators,omitempty"`
}

// ValidatorRecord is one attached validator inside a Record.
type ValidatorRecord struct {
	ValidatorType   string         `json:"validator_type" yaml:"validator_type"`
	ValidatorParams map[string]any `json:"validator_params" yaml:"validator_params"`
}

// Patch carries the fields to apply to a parameter. Nil fields are left alone.
// A non-nil Validators, even an empty one, replaces every attached validator.
type Patch struct {
	Name          *string            `json:"name"`
	Slug          *string            `json:"slug"`
	Value         *string            `json:"value"`
	ValueType     *domain.ValueType  `json:"value_type"`
	Description   *string            `json:"description"`
	IsGlobal      *bool              `json:"is_global"`
	EnableCypher  *bool              `json:"enable_cypher"`
	EnableHistory *bool              `json:"enable_history"`
	Validators    *[]ValidatorRecord `json:"validators"`
}

// ToRecord projects p. Validators are included only when at least one is attached.
func (s *ParameterService) ToRecord(ctx context.Context, p *domain.Parameter) (Record, error) {
	return s.toRecord(ctx, s.store, p)
}

func (s *ParameterService) toRecord(ctx context.Context, st store.ParameterStore, p *domain.Parameter) (Record, error) {
	plain, err := s.Plain(p)
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		Name:          p.Name,
		Slug:          p.Slug,
		Value:         plain,
		ValueType:     p.ValueType,
		Description:   p.Description,
		IsGlobal:      p.IsGlobal,
		EnableCypher:  p.EnableCypher,
		EnableHistory: p.EnableHistory,
	}

	attached, err := st.ListValidators(ctx, p.ID)
	if err != nil {
		return Record{}, NewServiceError("to_record", "failed to list validators", err)
	}
	for _, v := range attached {
		rec.Validators = append(rec.Validators, ValidatorRecord{
			ValidatorType:   v.ValidatorType,
			ValidatorParams: v.Params(),
		})
	}
	return rec, nil
}

// FromRecord applies patch to p and saves it. A nil or unsaved p is created,
// taking slug and value type from the patch (defaults: derived from name, STR).
// For an existing p the slug and value type are immutable and patch values
// for them are ignored. Validators are replaced only when patch.Validators is
// set; Load differs here and always replaces them.
func (s *ParameterService) FromRecord(ctx context.Context, p *domain.Parameter, patch Patch) (*domain.Parameter, error) {
	if p == nil {
		p = &domain.Parameter{}
	}
	isNew := p.IsNew()
	target := *p

	if isNew {
		if patch.Slug != nil {
			target.Slug = strings.TrimSpace(*patch.Slug)
		}
		if patch.ValueType != nil {
			vt, err := domain.ParseValueType(string(*patch.ValueType))
			if err != nil {
				return nil, err
			}
			target.ValueType = vt
		}
		if target.ValueType == "" {
			target.ValueType = domain.TypeStr
		}
	}
	if patch.Name != nil {
		target.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		target.Description = *patch.Description
	}
	if patch.IsGlobal != nil {
		target.IsGlobal = *patch.IsGlobal
	}
	if patch.EnableCypher != nil {
		target.EnableCypher = *patch.EnableCypher
	}
	if patch.EnableHistory != nil {
		target.EnableHistory = *patch.EnableHistory
	}
	if target.Name == "" {
		target.Name = target.Slug
	}

	changedValue := false
	err := store.RunInTransaction(ctx, s.store.DB(), func(ctx context.Context, tx *sql.Tx) error {
		st := s.store.WithTx(tx)

		if isNew {
			target.EnsureSlug()
			if patch.Value != nil {
				target.Value = *patch.Value
			}
			if err := s.create(ctx, st, &target); err != nil {
				return err
			}
		} else {
			if err := st.Update(ctx, &target); err != nil {
				return err
			}
			if patch.Value != nil {
				var err error
				if changedValue, err = s.writeValue(ctx, st, &target, *patch.Value); err != nil {
					return err
				}
			}
		}

		if patch.Validators != nil {
			return replaceValidators(ctx, st, target.ID, *patch.Validators)
		}
		return nil
	})
	if err != nil {
		s.log(ctx).Error("failed to apply record",
			"error", err,
			"slug", target.Slug)
		return nil, NewServiceError("from_record", "failed to save parameter", err)
	}

	*p = target
	switch {
	case isNew:
		s.emit(ctx, events.NewParameterEvent(events.ParameterCreated, p.Slug))
	case changedValue:
		s.emit(ctx, events.NewParameterEvent(events.ParameterUpdated, p.Slug))
	}
	return p, nil
}

// ApplyRecord is FromRecord keyed by slug: the parameter stored under the
// patch slug (or the slug derived from the patch name) is updated, or created
// when there is none.
func (s *ParameterService) ApplyRecord(ctx context.Context, patch Patch) (*domain.Parameter, error) {
	slug := ""
	switch {
	case patch.Slug != nil && strings.TrimSpace(*patch.Slug) != "":
		slug = strings.TrimSpace(*patch.Slug)
	case patch.Name != nil:
		slug = domain.Slugify(*patch.Name)
	}
	if slug == "" {
		return nil, domain.ErrEmptyName
	}

	p, err := s.Get(ctx, slug)
	var missing *MissingParameterError
	if errors.As(err, &missing) {
		patch.Slug = &slug
		return s.FromRecord(ctx, nil, patch)
	}
	if err != nil {
		return nil, err
	}
	return s.FromRecord(ctx, p, patch)
}

package domain

import (
	"fmt"
	"strings"
	"time"
)

// Parameter is a typed application setting persisted as a single raw string.
//
// Value holds the canonical encoding of the typed value for ValueType, or an
// encryption envelope of that encoding when the parameter was last written
// with EnableCypher set. Slug and ValueType never change once the parameter exists.
type Parameter struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	ValueType     ValueType `json:"value_type"`
	Description   string    `json:"description"`
	Value         string    `json:"-"`
	IsGlobal      bool      `json:"is_global"`
	EnableCypher  bool      `json:"enable_cypher"`
	EnableHistory bool      `json:"enable_history"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewParameter builds an unsaved parameter. An empty valueType defaults to STR
// and the slug is derived from name.
func NewParameter(name string, valueType ValueType, value string) (*Parameter, error) {
	if valueType == "" {
		valueType = TypeStr
	}
	p := &Parameter{
		Name:      strings.TrimSpace(name),
		ValueType: valueType,
		Value:     value,
	}
	p.EnsureSlug()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// EnsureSlug derives the slug from the name when none has been set.
func (p *Parameter) EnsureSlug() {
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
}

// IsNew reports whether the parameter has not been persisted yet.
func (p *Parameter) IsNew() bool {
	return p.ID == 0
}

// Validate checks the structural invariants of the record.
func (p *Parameter) Validate() error {
	if p.Name == "" && p.Slug == "" {
		return ErrEmptyName
	}
	if p.Slug == "" {
		return fmt.Errorf("%w: name %q produces an empty slug", ErrEmptyName, p.Name)
	}
	if !p.ValueType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownValueType, p.ValueType)
	}
	return nil
}

// String returns the parameter name, matching how operators refer to it.
func (p *Parameter) String() string {
	return p.Name
}

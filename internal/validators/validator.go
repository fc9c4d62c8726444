package validators

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Predicate checks one value. A rejection is reported as a *domain.ValidationError.
type Predicate func(value any) error

// Constructor turns the params stored with an attached validator into a Predicate.
// The set of implementations is closed: Func and Factory.
type Constructor interface {
	Build(params Params) (Predicate, error)
	isConstructor()
}

// Func is a stateless validator. Params are ignored.
type Func func(value any) error

// Build implements Constructor.
func (f Func) Build(Params) (Predicate, error) {
	return Predicate(f), nil
}

func (Func) isConstructor() {}

// Factory is a parameterized validator configured from params.
type Factory func(params Params) (Predicate, error)

// Build implements Constructor.
func (f Factory) Build(params Params) (Predicate, error) {
	if params == nil {
		params = Params{}
	}
	return f(params)
}

func (Factory) isConstructor() {}

// Params carries validator configuration decoded from JSON. Numbers may arrive
// as float64, json.Number or any Go integer type.
type Params map[string]any

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Number returns key as a decimal.
func (p Params) Number(key string) (decimal.Decimal, error) {
	v, ok := p[key]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: missing %q", ErrInvalidParams, key)
	}
	d, ok := Number(v)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %q must be a number, got %T", ErrInvalidParams, key, v)
	}
	return d, nil
}

// Int returns key as an int.
func (p Params) Int(key string) (int, error) {
	d, err := p.Number(key)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: %q must be an integer", ErrInvalidParams, key)
	}
	return int(d.IntPart()), nil
}

// String returns key as a string, or def when absent.
func (p Params) String(key, def string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", ErrInvalidParams, key, v)
	}
	return s, nil
}

// Bool returns key as a bool, or def when absent.
func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q must be a boolean, got %T", ErrInvalidParams, key, v)
	}
	return b, nil
}

// Strings returns key as a list of strings.
func (p Params) Strings(key string) ([]string, bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, false, nil
	}
	switch list := v.(type) {
	case []string:
		return list, true, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, true, fmt.Errorf("%w: %q must contain strings, got %T", ErrInvalidParams, key, item)
			}
			out = append(out, s)
		}
		return out, true, nil
	}
	return nil, true, fmt.Errorf("%w: %q must be a list, got %T", ErrInvalidParams, key, v)
}

// Number converts numeric Go values to a decimal. Durations count as seconds.
func Number(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int8:
		return decimal.NewFromInt(int64(n)), true
	case int16:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return uintDecimal(uint64(n)), true
	case uint8:
		return decimal.NewFromInt(int64(n)), true
	case uint16:
		return decimal.NewFromInt(int64(n)), true
	case uint32:
		return decimal.NewFromInt(int64(n)), true
	case uint64:
		return uintDecimal(n), true
	case float32:
		return floatDecimal(float64(n))
	case float64:
		return floatDecimal(n)
	case decimal.Decimal:
		return n, true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case time.Duration:
		return decimal.NewFromFloat(n.Seconds()), true
	}
	return decimal.Decimal{}, false
}

func uintDecimal(n uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
}

func floatDecimal(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(f), true
}

// Package extra registers additional validators in validators.DefaultLibrary
// under the module path "paramstore.validators.extra". Enable them through
// configuration, for example:
//
//	parameter:
//	  validators:
//	    even_number: paramstore.validators.extra.validate_even_number
//	    age_range: paramstore.validators.extra.AgeValidator
package extra

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/phrazzld/paramstore/internal/validators"
	"github.com/shopspring/decimal"
)

// Module is the dotted module path the validators are registered under.
const Module = "paramstore.validators.extra"

const (
	businessOpen  = 9 * 3600
	businessClose = 18 * 3600
)

func init() {
	validators.Register(Module+".validate_even_number", validators.Func(ValidateEvenNumber))
	validators.Register(Module+".validate_positive", validators.Func(ValidatePositive))
	validators.Register(Module+".validate_business_hours", validators.Func(ValidateBusinessHours))
	validators.Register(Module+".RangeValidator", validators.Factory(NewRangeValidator))
	validators.Register(Module+".AgeValidator", validators.Factory(NewAgeValidator))
}

// ValidateEvenNumber accepts integers divisible by two.
func ValidateEvenNumber(v any) error {
	n, ok := validators.Number(v)
	if !ok || !n.IsInteger() {
		return domain.NewValidationError("not_even", fmt.Sprintf("%v is not an integer", v))
	}
	if !n.Mod(decimal.NewFromInt(2)).IsZero() {
		return domain.NewValidationError("not_even", fmt.Sprintf("%v is not an even number", v))
	}
	return nil
}

// ValidatePositive accepts numbers strictly greater than zero.
func ValidatePositive(v any) error {
	n, ok := validators.Number(v)
	if !ok || !n.IsPositive() {
		return domain.NewValidationError("not_positive", fmt.Sprintf("%v is not a positive number", v))
	}
	return nil
}

// ValidateBusinessHours accepts times of day between 09:00 and 18:00 inclusive.
func ValidateBusinessHours(v any) error {
	t, ok := v.(civil.Time)
	if !ok {
		return domain.NewValidationError("business_hours", fmt.Sprintf("%v is not a time of day", v))
	}
	secs := t.Hour*3600 + t.Minute*60 + t.Second
	if secs < businessOpen || secs > businessClose || (secs == businessClose && t.Nanosecond > 0) {
		return domain.NewValidationError("business_hours",
			fmt.Sprintf("%s is outside business hours (09:00-18:00)", t))
	}
	return nil
}

// NewRangeValidator builds a check for min_value <= v <= max_value.
func NewRangeValidator(p validators.Params) (validators.Predicate, error) {
	lo, err := p.Number("min_value")
	if err != nil {
		return nil, err
	}
	hi, err := p.Number("max_value")
	if err != nil {
		return nil, err
	}
	if lo.GreaterThan(hi) {
		return nil, fmt.Errorf("%w: min_value %s exceeds max_value %s", validators.ErrInvalidParams, lo, hi)
	}
	return func(v any) error {
		n, ok := validators.Number(v)
		if !ok || n.LessThan(lo) || n.GreaterThan(hi) {
			return domain.NewValidationError("out_of_range",
				fmt.Sprintf("Value must be between %s and %s", lo, hi))
		}
		return nil
	}, nil
}

// NewAgeValidator checks an age in years. min_age defaults to 18, max_age to 120.
func NewAgeValidator(p validators.Params) (validators.Predicate, error) {
	minAge, maxAge := 18, 120
	var err error
	if p.Has("min_age") {
		if minAge, err = p.Int("min_age"); err != nil {
			return nil, err
		}
	}
	if p.Has("max_age") {
		if maxAge, err = p.Int("max_age"); err != nil {
			return nil, err
		}
	}
	return func(v any) error {
		n, ok := validators.Number(v)
		if !ok || !n.IsInteger() {
			return domain.NewValidationError("invalid_age", fmt.Sprintf("%v is not a whole number of years", v))
		}
		age := n.IntPart()
		if age < int64(minAge) || age > int64(maxAge) {
			return domain.NewValidationError("invalid_age",
				fmt.Sprintf("Age must be between %d and %d, got %d", minAge, maxAge, age))
		}
		return nil
	}, nil
}

package service

import (
	"context"
	"reflect"
	"time"

	"cloud.google.com/go/civil"
	"github.com/phrazzld/paramstore/internal/codec"
	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/shopspring/decimal"
)

// Typed getters decode the stored value as the named type whatever the
// declared type of p is. Typed setters require the declared type to match.

func (s *ParameterService) Int(p *domain.Parameter) (int64, error) {
	return decodeAs(s, p, codec.DecodeInt)
}

func (s *ParameterService) Str(p *domain.Parameter) (string, error) {
	return s.Plain(p)
}

func (s *ParameterService) Float(p *domain.Parameter) (float64, error) {
	return decodeAs(s, p, codec.DecodeFloat)
}

func (s *ParameterService) Decimal(p *domain.Parameter) (decimal.Decimal, error) {
	return decodeAs(s, p, codec.DecodeDecimal)
}

func (s *ParameterService) JSON(p *domain.Parameter) (any, error) {
	return decodeAs(s, p, codec.DecodeJSON)
}

func (s *ParameterService) Bool(p *domain.Parameter) (bool, error) {
	return decodeAs(s, p, func(raw string) (bool, error) { return codec.DecodeBool(raw), nil })
}

func (s *ParameterService) Date(p *domain.Parameter) (civil.Date, error) {
	return decodeAs(s, p, codec.DecodeDate)
}

func (s *ParameterService) DateTime(p *domain.Parameter) (time.Time, error) {
	return decodeAs(s, p, codec.DecodeDateTime)
}

func (s *ParameterService) Time(p *domain.Parameter) (civil.Time, error) {
	return decodeAs(s, p, codec.DecodeTime)
}

// URL re-validates the stored string, so a malformed value fails on read.
func (s *ParameterService) URL(p *domain.Parameter) (string, error) {
	return decodeAs(s, p, codec.DecodeURL)
}

// Email re-validates the stored string, so a malformed value fails on read.
func (s *ParameterService) Email(p *domain.Parameter) (string, error) {
	return decodeAs(s, p, codec.DecodeEmail)
}

func (s *ParameterService) List(p *domain.Parameter) ([]string, error) {
	return decodeAs(s, p, func(raw string) ([]string, error) { return codec.DecodeList(raw), nil })
}

func (s *ParameterService) Dict(p *domain.Parameter) (map[string]any, error) {
	return decodeAs(s, p, codec.DecodeDict)
}

func (s *ParameterService) Path(p *domain.Parameter) (codec.Path, error) {
	return decodeAs(s, p, func(raw string) (codec.Path, error) { return codec.DecodePath(raw), nil })
}

func (s *ParameterService) Duration(p *domain.Parameter) (time.Duration, error) {
	return decodeAs(s, p, codec.DecodeDuration)
}

func (s *ParameterService) Percentage(p *domain.Parameter) (float64, error) {
	return decodeAs(s, p, codec.DecodePercentage)
}

func decodeAs[T any](s *ParameterService, p *domain.Parameter, decode func(string) (T, error)) (T, error) {
	plain, err := s.Plain(p)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode(plain)
}

func (s *ParameterService) SetInt(ctx context.Context, p *domain.Parameter, v int64) error {
	return s.set(ctx, p, domain.TypeInt, v)
}

func (s *ParameterService) SetStr(ctx context.Context, p *domain.Parameter, v string) error {
	return s.set(ctx, p, domain.TypeStr, v)
}

func (s *ParameterService) SetFloat(ctx context.Context, p *domain.Parameter, v float64) error {
	return s.set(ctx, p, domain.TypeFloat, v)
}

func (s *ParameterService) SetDecimal(ctx context.Context, p *domain.Parameter, v decimal.Decimal) error {
	return s.set(ctx, p, domain.TypeDecimal, v)
}

func (s *ParameterService) SetJSON(ctx context.Context, p *domain.Parameter, v any) error {
	return s.set(ctx, p, domain.TypeJSON, v)
}

func (s *ParameterService) SetBool(ctx context.Context, p *domain.Parameter, v bool) error {
	return s.set(ctx, p, domain.TypeBool, v)
}

func (s *ParameterService) SetDate(ctx context.Context, p *domain.Parameter, v civil.Date) error {
	return s.set(ctx, p, domain.TypeDate, v)
}

func (s *ParameterService) SetDateTime(ctx context.Context, p *domain.Parameter, v time.Time) error {
	return s.set(ctx, p, domain.TypeDateTime, v)
}

func (s *ParameterService) SetTime(ctx context.Context, p *domain.Parameter, v civil.Time) error {
	return s.set(ctx, p, domain.TypeTime, v)
}

func (s *ParameterService) SetURL(ctx context.Context, p *domain.Parameter, v string) error {
	return s.set(ctx, p, domain.TypeURL, v)
}

func (s *ParameterService) SetEmail(ctx context.Context, p *domain.Parameter, v string) error {
	return s.set(ctx, p, domain.TypeEmail, v)
}

func (s *ParameterService) SetList(ctx context.Context, p *domain.Parameter, v []string) error {
	return s.set(ctx, p, domain.TypeList, v)
}

func (s *ParameterService) SetDict(ctx context.Context, p *domain.Parameter, v map[string]any) error {
	return s.set(ctx, p, domain.TypeDict, v)
}

func (s *ParameterService) SetPath(ctx context.Context, p *domain.Parameter, v codec.Path) error {
	return s.set(ctx, p, domain.TypePath, v)
}

func (s *ParameterService) SetDuration(ctx context.Context, p *domain.Parameter, v time.Duration) error {
	return s.set(ctx, p, domain.TypeDuration, v)
}

// SetPercentage rejects values outside 0..100.
func (s *ParameterService) SetPercentage(ctx context.Context, p *domain.Parameter, v float64) error {
	return s.set(ctx, p, domain.TypePercentage, v)
}

// Lookup loads the parameter stored under slug and returns its value decoded
// as the declared type, asserted to T.
//
//	timeout, err := service.Lookup[time.Duration](ctx, svc, "REQUEST_TIMEOUT")
func Lookup[T any](ctx context.Context, s *ParameterService, slug string) (T, error) {
	var zero T
	p, err := s.Get(ctx, slug)
	if err != nil {
		return zero, err
	}
	v, err := s.Value(p)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, domain.NewTypeMismatchError(reflect.TypeFor[T]().String(), v)
	}
	return typed, nil
}

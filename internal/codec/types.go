package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/shopspring/decimal"
)

// Path is a filesystem path value. It is stored cleaned.
type Path string

func (p Path) String() string {
	return string(p)
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"

	naiveDateTimeLayout = "2006-01-02T15:04:05.999999999"
	zonedDateTimeLayout = "2006-01-02T15:04:05.999999999-07:00"
)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
	naiveDateTimeLayout,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	dateLayout,
}

// INT

func DecodeInt(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, domain.NewFormatError("invalid integer %q", raw)
	}
	return n, nil
}

func EncodeInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func checkInt(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return uintToInt64(uint64(n), v)
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return uintToInt64(n, v)
	}
	return nil, domain.NewTypeMismatchError("int", v)
}

func uintToInt64(n uint64, original any) (int64, error) {
	if n > math.MaxInt64 {
		return 0, domain.NewFormatError("integer %v overflows int64", original)
	}
	return int64(n), nil
}

// STR

func checkString(v any, expected string) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, domain.NewTypeMismatchError(expected, v)
	}
	return s, nil
}

// FLT

func DecodeFloat(raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, domain.NewFormatError("invalid float %q", raw)
	}
	return f, nil
}

// EncodeFloat formats f with the shortest representation that parses back to
// the same value. Integral values keep a trailing ".0".
func EncodeFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func checkFloat(v any) (any, error) {
	switch f := v.(type) {
	case float64:
		return f, nil
	case float32:
		return float64(f), nil
	}
	return nil, domain.NewTypeMismatchError("float", v)
}

// DCL

func DecodeDecimal(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, domain.NewFormatError("invalid decimal %q", raw)
	}
	return d, nil
}

func EncodeDecimal(d decimal.Decimal) string {
	return d.String()
}

func checkDecimal(v any) (any, error) {
	switch d := v.(type) {
	case decimal.Decimal:
		return d, nil
	case *decimal.Decimal:
		if d != nil {
			return *d, nil
		}
	}
	return nil, domain.NewTypeMismatchError("Decimal", v)
}

// JSN

// DecodeJSON parses a single JSON document. Numbers come back as json.Number
// so integers beyond float64 precision survive a read and write.
func DecodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, domain.NewFormatError("invalid JSON: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.NewFormatError("invalid JSON: trailing data after value")
	}
	return v, nil
}

// EncodeJSON returns compact JSON without HTML escaping.
func EncodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("%w: value is not JSON serializable: %v", domain.ErrTypeMismatch, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func checkJSON(v any) (any, error) {
	if _, err := EncodeJSON(v); err != nil {
		return nil, err
	}
	return v, nil
}

// BOO

// DecodeBool treats "", "false" and "0" (any case) as false and everything else as true.
func DecodeBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "false", "0":
		return false
	}
	return true
}

func EncodeBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func checkBool(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, domain.NewTypeMismatchError("bool", v)
	}
	return b, nil
}

// DAT

func DecodeDate(raw string) (civil.Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return civil.Date{}, domain.NewFormatError("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return civil.DateOf(t), nil
}

func EncodeDate(d civil.Date) (string, error) {
	if !d.IsValid() {
		return "", domain.NewFormatError("invalid date %v", d)
	}
	return d.String(), nil
}

func checkDate(v any) (any, error) {
	d, ok := v.(civil.Date)
	if !ok {
		return nil, domain.NewTypeMismatchError("date", v)
	}
	return d, nil
}

// DTM

// DecodeDateTime parses an ISO-8601 datetime. Strings without an offset are read as UTC.
func DecodeDateTime(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.NewFormatError("invalid datetime %q", raw)
}

// EncodeDateTime writes UTC times without an offset and every other location with one.
func EncodeDateTime(t time.Time) string {
	if t.Location() == time.UTC {
		return t.Format(naiveDateTimeLayout)
	}
	return t.Format(zonedDateTimeLayout)
}

func checkDateTime(v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, domain.NewTypeMismatchError("datetime", v)
	}
	return t, nil
}

// TIM

func DecodeTime(raw string) (civil.Time, error) {
	t, err := time.Parse(timeLayout, strings.TrimSpace(raw))
	if err != nil {
		return civil.Time{}, domain.NewFormatError("invalid time %q, expected HH:MM:SS", raw)
	}
	return civil.TimeOf(t), nil
}

func EncodeTime(t civil.Time) (string, error) {
	if !t.IsValid() {
		return "", domain.NewFormatError("invalid time %v", t)
	}
	if t.Nanosecond != 0 {
		return "", domain.NewFormatError("time %v has sub-second precision", t)
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second), nil
}

func checkTime(v any) (any, error) {
	t, ok := v.(civil.Time)
	if !ok {
		return nil, domain.NewTypeMismatchError("time", v)
	}
	return t, nil
}

// URL and EML

func DecodeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !isURL(s) {
		return "", domain.NewFormatError("Invalid URL: %s", s)
	}
	return s, nil
}

func DecodeEmail(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !isEmail(s) {
		return "", domain.NewFormatError("Invalid email: %s", s)
	}
	return s, nil
}

// LST

// DecodeList splits on commas and trims each item. The empty string is the empty list.
func DecodeList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func EncodeList(items []string) string {
	return strings.Join(items, ", ")
}

func checkList(v any) (any, error) {
	items, ok := v.([]string)
	if !ok {
		return nil, domain.NewTypeMismatchError("list of strings", v)
	}
	return items, nil
}

// DCT

func DecodeDict(raw string) (map[string]any, error) {
	v, err := DecodeJSON(raw)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, domain.NewFormatError("Expected dict, got %s", jsonKind(v))
	}
	return m, nil
}

func checkDict(v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, domain.NewTypeMismatchError("dict", v)
	}
	return checkJSON(m)
}

// PTH

func DecodePath(raw string) Path {
	return Path(filepath.Clean(strings.TrimSpace(raw)))
}

func EncodePath(p Path) string {
	return filepath.Clean(string(p))
}

func checkPath(v any) (any, error) {
	p, ok := v.(Path)
	if !ok {
		return nil, domain.NewTypeMismatchError("Path", v)
	}
	return p, nil
}

// DUR

// DecodeDuration reads a number of seconds, fractional seconds allowed.
func DecodeDuration(raw string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, domain.NewFormatError("invalid duration %q, expected seconds", raw)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which time.Duration cannot hold.
	ns := math.Round(secs * float64(time.Second))
	if ns >= float64(math.MaxInt64) || ns < float64(math.MinInt64) {
		return 0, domain.NewFormatError("duration %q out of range", raw)
	}
	return time.Duration(ns), nil
}

func EncodeDuration(d time.Duration) string {
	return EncodeFloat(d.Seconds())
}

func checkDuration(v any) (any, error) {
	d, ok := v.(time.Duration)
	if !ok {
		return nil, domain.NewTypeMismatchError("duration", v)
	}
	return d, nil
}

// PCT

func DecodePercentage(raw string) (float64, error) {
	f, err := DecodeFloat(raw)
	if err != nil {
		return 0, err
	}
	return f, checkPercentageBounds(f)
}

func EncodePercentage(f float64) (string, error) {
	if err := checkPercentageBounds(f); err != nil {
		return "", err
	}
	return EncodeFloat(f), nil
}

func checkPercentage(v any) (any, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	default:
		i, err := checkInt(v)
		if err != nil {
			return nil, domain.NewTypeMismatchError("float or int", v)
		}
		f = float64(i.(int64))
	}
	if err := checkPercentageBounds(f); err != nil {
		return nil, err
	}
	return f, nil
}

func checkPercentageBounds(f float64) error {
	if !(f >= 0 && f <= 100) {
		return domain.NewFormatError("Percentage must be between 0 and 100, got %v", f)
	}
	return nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "list"
	case string:
		return "str"
	case bool:
		return "bool"
	case float64, json.Number:
		return "number"
	}
	return reflect.TypeOf(v).String()
}

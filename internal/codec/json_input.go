package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/shopspring/decimal"
)

// FromJSON converts a JSON document supplied by an API client into the Go type
// required by t, so that it can be passed to a strict setter. Dates, datetimes,
// times and paths are expected as strings, durations as seconds or a Go duration string.
func FromJSON(t domain.ValueType, raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, domain.NewFormatError("invalid JSON value: %v", err)
	}

	switch t {
	case domain.TypeInt:
		n, ok := v.(json.Number)
		if !ok {
			return nil, domain.NewTypeMismatchError("int", v)
		}
		i, err := n.Int64()
		if err != nil {
			return nil, domain.NewTypeMismatchError("int", n.String())
		}
		return i, nil
	case domain.TypeFloat, domain.TypePercentage:
		n, ok := v.(json.Number)
		if !ok {
			return nil, domain.NewTypeMismatchError("float", v)
		}
		f, err := n.Float64()
		if err != nil {
			return nil, domain.NewFormatError("invalid number %s", n)
		}
		return f, nil
	case domain.TypeDecimal:
		var s string
		switch x := v.(type) {
		case json.Number:
			s = x.String()
		case string:
			s = x
		default:
			return nil, domain.NewTypeMismatchError("Decimal", v)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, domain.NewFormatError("invalid decimal %q", s)
		}
		return d, nil
	case domain.TypeJSON:
		return v, nil
	case domain.TypeDict:
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, domain.NewTypeMismatchError("dict", v)
		}
		return obj, nil
	case domain.TypeBool:
		b, ok := v.(bool)
		if !ok {
			return nil, domain.NewTypeMismatchError("bool", v)
		}
		return b, nil
	case domain.TypeList:
		arr, ok := v.([]any)
		if !ok {
			return nil, domain.NewTypeMismatchError("list of strings", v)
		}
		items := make([]string, 0, len(arr))
		for _, item := range arr {
			s, ok := item.(string)
			if !ok {
				return nil, domain.NewTypeMismatchError("list of strings", item)
			}
			items = append(items, s)
		}
		return items, nil
	case domain.TypeDuration:
		switch x := v.(type) {
		case json.Number:
			return DecodeDuration(x.String())
		case string:
			d, err := time.ParseDuration(x)
			if err != nil {
				return DecodeDuration(x)
			}
			return d, nil
		}
		return nil, domain.NewTypeMismatchError("duration", v)
	}

	s, ok := v.(string)
	if !ok {
		return nil, domain.NewTypeMismatchError("string", v)
	}
	switch t {
	case domain.TypeStr, domain.TypeURL, domain.TypeEmail:
		return s, nil
	case domain.TypeDate:
		return DecodeDate(s)
	case domain.TypeDateTime:
		return DecodeDateTime(s)
	case domain.TypeTime:
		return DecodeTime(s)
	case domain.TypePath:
		return Path(s), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownValueType, t)
}

package codec

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/shopspring/decimal"
)

// Decode converts a raw canonical string into the Go value for t.
func Decode(t domain.ValueType, raw string) (any, error) {
	switch t {
	case domain.TypeInt:
		return DecodeInt(raw)
	case domain.TypeStr:
		return raw, nil
	case domain.TypeFloat:
		return DecodeFloat(raw)
	case domain.TypeDecimal:
		return DecodeDecimal(raw)
	case domain.TypeJSON:
		return DecodeJSON(raw)
	case domain.TypeBool:
		return DecodeBool(raw), nil
	case domain.TypeDate:
		return DecodeDate(raw)
	case domain.TypeDateTime:
		return DecodeDateTime(raw)
	case domain.TypeTime:
		return DecodeTime(raw)
	case domain.TypeURL:
		return DecodeURL(raw)
	case domain.TypeEmail:
		return DecodeEmail(raw)
	case domain.TypeList:
		return DecodeList(raw), nil
	case domain.TypeDict:
		return DecodeDict(raw)
	case domain.TypePath:
		return DecodePath(raw), nil
	case domain.TypeDuration:
		return DecodeDuration(raw)
	case domain.TypePercentage:
		return DecodePercentage(raw)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownValueType, t)
	}
}

// Check verifies that v has the Go type required by t and returns it in
// normalized form (int64 for integers, float64 for floats and percentages).
// URL, email and percentage values are also checked against their format rules.
func Check(t domain.ValueType, v any) (any, error) {
	switch t {
	case domain.TypeInt:
		return checkInt(v)
	case domain.TypeStr:
		return checkString(v, "str")
	case domain.TypeFloat:
		return checkFloat(v)
	case domain.TypeDecimal:
		return checkDecimal(v)
	case domain.TypeJSON:
		return checkJSON(v)
	case domain.TypeBool:
		return checkBool(v)
	case domain.TypeDate:
		return checkDate(v)
	case domain.TypeDateTime:
		return checkDateTime(v)
	case domain.TypeTime:
		return checkTime(v)
	case domain.TypeURL:
		s, err := checkString(v, "str")
		if err != nil {
			return nil, err
		}
		return DecodeURL(s.(string))
	case domain.TypeEmail:
		s, err := checkString(v, "str")
		if err != nil {
			return nil, err
		}
		return DecodeEmail(s.(string))
	case domain.TypeList:
		return checkList(v)
	case domain.TypeDict:
		return checkDict(v)
	case domain.TypePath:
		return checkPath(v)
	case domain.TypeDuration:
		return checkDuration(v)
	case domain.TypePercentage:
		return checkPercentage(v)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownValueType, t)
	}
}

// Encode checks v against t and returns its canonical string.
func Encode(t domain.ValueType, v any) (string, error) {
	v, err := Check(t, v)
	if err != nil {
		return "", err
	}

	switch t {
	case domain.TypeInt:
		return EncodeInt(v.(int64)), nil
	case domain.TypeStr, domain.TypeURL, domain.TypeEmail:
		return v.(string), nil
	case domain.TypeFloat:
		return EncodeFloat(v.(float64)), nil
	case domain.TypeDecimal:
		return EncodeDecimal(v.(decimal.Decimal)), nil
	case domain.TypeJSON, domain.TypeDict:
		return EncodeJSON(v)
	case domain.TypeBool:
		return EncodeBool(v.(bool)), nil
	case domain.TypeDate:
		return EncodeDate(v.(civil.Date))
	case domain.TypeDateTime:
		return EncodeDateTime(v.(time.Time)), nil
	case domain.TypeTime:
		return EncodeTime(v.(civil.Time))
	case domain.TypeList:
		return EncodeList(v.([]string)), nil
	case domain.TypePath:
		return EncodePath(v.(Path)), nil
	case domain.TypeDuration:
		return EncodeDuration(v.(time.Duration)), nil
	case domain.TypePercentage:
		return EncodePercentage(v.(float64))
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownValueType, t)
	}
}

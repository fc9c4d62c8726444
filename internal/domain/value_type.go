package domain

import (
	"fmt"
	"strings"
)

// ValueType is the semantic type tag stored with every parameter.
type ValueType string

// The closed set of value types. The string form is the persisted tag.
const (
	TypeInt        ValueType = "INT"
	TypeStr        ValueType = "STR"
	TypeFloat      ValueType = "FLT"
	TypeDecimal    ValueType = "DCL"
	TypeJSON       ValueType = "JSN"
	TypeBool       ValueType = "BOO"
	TypeDate       ValueType = "DAT"
	TypeDateTime   ValueType = "DTM"
	TypeTime       ValueType = "TIM"
	TypeURL        ValueType = "URL"
	TypeEmail      ValueType = "EML"
	TypeList       ValueType = "LST"
	TypeDict       ValueType = "DCT"
	TypePath       ValueType = "PTH"
	TypeDuration   ValueType = "DUR"
	TypePercentage ValueType = "PCT"
)

var valueTypeLabels = map[ValueType]string{
	TypeInt:        "Integer",
	TypeStr:        "String",
	TypeFloat:      "Float",
	TypeDecimal:    "Decimal",
	TypeJSON:       "JSON",
	TypeBool:       "Boolean",
	TypeDate:       "Date",
	TypeDateTime:   "Datetime",
	TypeTime:       "Time",
	TypeURL:        "URL",
	TypeEmail:      "Email",
	TypeList:       "List",
	TypeDict:       "Dictionary",
	TypePath:       "Path",
	TypeDuration:   "Duration",
	TypePercentage: "Percentage",
}

// ValueTypes returns every supported type tag in declaration order.
func ValueTypes() []ValueType {
	return []ValueType{
		TypeInt, TypeStr, TypeFloat, TypeDecimal, TypeJSON, TypeBool,
		TypeDate, TypeDateTime, TypeTime, TypeURL, TypeEmail, TypeList,
		TypeDict, TypePath, TypeDuration, TypePercentage,
	}
}

// Valid reports whether t belongs to the closed set.
func (t ValueType) Valid() bool {
	_, ok := valueTypeLabels[t]
	return ok
}

// Label returns the human readable name of the type.
func (t ValueType) Label() string {
	if label, ok := valueTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// ParseValueType validates a persisted tag. Surrounding whitespace is ignored
// and the tag is matched case-insensitively.
func ParseValueType(s string) (ValueType, error) {
	t := ValueType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownValueType, s)
	}
	return t, nil
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PropertyChange is one field-level before/after delta within an ItemEvent.
// PropertyName is a JSON-Pointer path ("/message", "/tags/0").
type PropertyChange struct {
	PropertyName string        `json:"propertyName"`
	OldValue     PropertyValue `json:"oldValue"`
	NewValue     PropertyValue `json:"newValue"`
}

// ValueKind discriminates the scalar held by a PropertyValue.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// PropertyValue is a closed tagged union over the JSON leaf scalars: null,
// string, number or bool. It never holds objects or arrays; those are
// expanded into their leaf values by the diff engine. The zero value is
// null.
type PropertyValue struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

// Null returns the null PropertyValue.
func Null() PropertyValue { return PropertyValue{} }

// String returns a string PropertyValue.
func String(s string) PropertyValue { return PropertyValue{kind: KindString, str: s} }

// Number returns a numeric PropertyValue.
func Number(n float64) PropertyValue { return PropertyValue{kind: KindNumber, num: n} }

// Bool returns a boolean PropertyValue.
func Bool(b bool) PropertyValue { return PropertyValue{kind: KindBool, b: b} }

// ValueOf converts a decoded JSON scalar into a PropertyValue. It returns
// an error for objects, arrays and any other non-scalar input.
func ValueOf(v any) (PropertyValue, error) {
	switch tv := v.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(tv), nil
	case float64:
		return Number(tv), nil
	case json.Number:
		f, err := tv.Float64()
		if err != nil {
			return PropertyValue{}, fmt.Errorf("invalid number %q: %w", tv.String(), err)
		}
		return Number(f), nil
	case bool:
		return Bool(tv), nil
	default:
		return PropertyValue{}, fmt.Errorf("value of type %T is not a JSON scalar", v)
	}
}

// Kind returns the union tag.
func (v PropertyValue) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is null.
func (v PropertyValue) IsNull() bool { return v.kind == KindNull }

// StringValue returns the held string; ok is false when the kind differs.
func (v PropertyValue) StringValue() (s string, ok bool) {
	return v.str, v.kind == KindString
}

// NumberValue returns the held number; ok is false when the kind differs.
func (v PropertyValue) NumberValue() (n float64, ok bool) {
	return v.num, v.kind == KindNumber
}

// BoolValue returns the held bool; ok is false when the kind differs.
func (v PropertyValue) BoolValue() (b bool, ok bool) {
	return v.b, v.kind == KindBool
}

// Equal reports whether two values hold the same kind and scalar.
func (v PropertyValue) Equal(other PropertyValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	default:
		return true
	}
}

// String renders the scalar for logs and error messages.
func (v PropertyValue) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return "null"
	}
}

// MarshalJSON emits the bare JSON scalar.
func (v PropertyValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON scalar and rejects objects and arrays.
func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	pv, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = pv
	return nil
}

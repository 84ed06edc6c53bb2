package model

import (
	"encoding/json"
	"math"
	"time"

	"github.com/rotisserie/eris"
)

// ValueType is the declared type of a field.
type ValueType string

const (
	TypeCurrency   ValueType = "currency"
	TypePercentage ValueType = "percentage"
	TypeNumber     ValueType = "number"
	TypeDate       ValueType = "date"
	TypeText       ValueType = "text"
	TypeToggle     ValueType = "toggle"
	TypeDropdown   ValueType = "dropdown"
)

// DateLayout is the wire and display format for date values.
const DateLayout = "2006-01-02"

// ValueKind discriminates the representation held by a Value.
type ValueKind int

const (
	KindAbsent ValueKind = iota
	KindNumber
	KindDate
	KindText
	KindBool
)

// Value is a tagged union holding one field value. The zero Value is absent.
// Numeric value types (currency, percentage, number) share the number kind;
// text and dropdown share the text kind.
type Value struct {
	kind ValueKind
	num  float64
	str  string
	date time.Time
	b    bool
}

// Number returns a numeric Value, used for currency, percentage and number
// fields alike.
func Number(v float64) Value {
	return Value{kind: KindNumber, num: v}
}

// Date returns a date Value truncated to day precision.
func Date(t time.Time) Value {
	return Value{kind: KindDate, date: t.Truncate(24 * time.Hour)}
}

// Str returns a text Value, used for text and dropdown fields.
func Str(s string) Value {
	return Value{kind: KindText, str: s}
}

// Bool returns a toggle Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Kind returns the representation kind, KindAbsent for the zero Value.
func (v Value) Kind() ValueKind { return v.kind }

// IsAbsent reports whether the value is the zero, absent Value.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Float64 returns the numeric payload. ok is false for non-numeric values.
func (v Value) Float64() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Int64 returns the numeric payload as an integer. ok is false for
// non-numeric or non-integral values.
func (v Value) Int64() (int64, bool) {
	if v.kind != KindNumber || v.num != math.Trunc(v.num) {
		return 0, false
	}
	return int64(v.num), true
}

// DateValue returns the date payload. ok is false for non-date values.
func (v Value) DateValue() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.date, true
}

// Text returns the string payload. ok is false for non-text values.
func (v Value) Text() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.str, true
}

// BoolValue returns the toggle payload. ok is false for non-bool values.
func (v Value) BoolValue() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Compatible reports whether the value's kind can legally populate a field of
// the given declared type.
func (v Value) Compatible(t ValueType) bool {
	switch t {
	case TypeCurrency, TypePercentage, TypeNumber:
		return v.kind == KindNumber
	case TypeDate:
		return v.kind == KindDate
	case TypeText, TypeDropdown:
		return v.kind == KindText
	case TypeToggle:
		return v.kind == KindBool
	}
	return false
}

// Equal reports whether two values hold the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindDate:
		return v.date.Equal(o.date)
	case KindText:
		return v.str == o.str
	case KindBool:
		return v.b == o.b
	}
	return true
}

// valueDoc is the JSON wire shape, {"type": "...", "value": ...}.
type valueDoc struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// MarshalJSON encodes the value as a tagged document. Absent values must be
// omitted from maps rather than serialized; marshaling one is an error.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(valueDoc{Type: "number", Value: v.num})
	case KindDate:
		return json.Marshal(valueDoc{Type: "date", Value: v.date.Format(DateLayout)})
	case KindText:
		return json.Marshal(valueDoc{Type: "text", Value: v.str})
	case KindBool:
		return json.Marshal(valueDoc{Type: "bool", Value: v.b})
	}
	return nil, eris.New("model: cannot marshal absent value")
}

// UnmarshalJSON decodes a tagged value document.
func (v *Value) UnmarshalJSON(data []byte) error {
	var doc valueDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return eris.Wrap(err, "model: decode value")
	}
	switch doc.Type {
	case "number":
		f, ok := doc.Value.(float64)
		if !ok {
			return eris.New("model: number value payload is not numeric")
		}
		*v = Number(f)
	case "date":
		s, ok := doc.Value.(string)
		if !ok {
			return eris.New("model: date value payload is not a string")
		}
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return eris.Wrapf(err, "model: parse date %q", s)
		}
		*v = Date(t)
	case "text":
		s, ok := doc.Value.(string)
		if !ok {
			return eris.New("model: text value payload is not a string")
		}
		*v = Str(s)
	case "bool":
		b, ok := doc.Value.(bool)
		if !ok {
			return eris.New("model: bool value payload is not a bool")
		}
		*v = Bool(b)
	default:
		return eris.Errorf("model: unknown value type %q", doc.Type)
	}
	return nil
}

// ValueMap maps field keys to current values, scoped to one basket instance
// for one project. Absent fields are omitted, never stored as a zero Value.
type ValueMap map[string]Value

// Clone returns an independent copy of the map.
func (m ValueMap) Clone() ValueMap {
	out := make(ValueMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Get returns the value for key. ok is false when the field is absent.
func (m ValueMap) Get(key string) (Value, bool) {
	v, ok := m[key]
	return v, ok
}

// Float64 is a convenience accessor for numeric fields.
func (m ValueMap) Float64(key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	return v.Float64()
}

// DateOf is a convenience accessor for date fields.
func (m ValueMap) DateOf(key string) (time.Time, bool) {
	v, ok := m[key]
	if !ok {
		return time.Time{}, false
	}
	return v.DateValue()
}

// Equal reports whether two maps hold the same keys and equal values.
func (m ValueMap) Equal(o ValueMap) bool {
	if len(m) != len(o) {
		return false
	}
	for k, v := range m {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

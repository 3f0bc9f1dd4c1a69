package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Kind enumerates the JSON-representable shapes of a column value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindUint
	KindFloat
	KindBool
)

// isoLayout renders temporal values without an offset; fractions and
// offsets are appended by FormatTime when present.
const isoLayout = "2006-01-02T15:04:05"

// Value is a single column value of a fetched row.
type Value struct {
	Kind   Kind
	String string
	Int    int64
	Uint   uint64
	Float  float64
	Bool   bool
}

// Null is the SQL NULL value.
var Null = Value{Kind: KindNull}

// NormalizeValue converts a value scanned from a driver into a Value.
// Temporal values become ISO-8601 strings and byte slices become strings;
// numbers and booleans pass through unchanged.
func NormalizeValue(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Null
	case time.Time:
		return Value{Kind: KindString, String: FormatTime(t)}
	case []byte:
		return Value{Kind: KindString, String: string(t)}
	case string:
		return Value{Kind: KindString, String: t}
	case bool:
		return Value{Kind: KindBool, Bool: t}
	case int64:
		return Value{Kind: KindInt, Int: t}
	case int:
		return Value{Kind: KindInt, Int: int64(t)}
	case int32:
		return Value{Kind: KindInt, Int: int64(t)}
	case int16:
		return Value{Kind: KindInt, Int: int64(t)}
	case int8:
		return Value{Kind: KindInt, Int: int64(t)}
	case uint64:
		return Value{Kind: KindUint, Uint: t}
	case uint:
		return Value{Kind: KindUint, Uint: uint64(t)}
	case uint32:
		return Value{Kind: KindInt, Int: int64(t)}
	case uint16:
		return Value{Kind: KindInt, Int: int64(t)}
	case uint8:
		return Value{Kind: KindInt, Int: int64(t)}
	case float64:
		return Value{Kind: KindFloat, Float: t}
	case float32:
		return Value{Kind: KindFloat, Float: float64(t)}
	default:
		return Value{Kind: KindString, String: fmt.Sprint(t)}
	}
}

// FormatTime renders t as ISO-8601 text: seconds precision, a microsecond
// fraction only when t has one, and a numeric offset only when it is not zero.
// A calendar date renders as 2024-07-16T00:00:00.
func FormatTime(t time.Time) string {
	var s = t.Format(isoLayout)
	if t.Nanosecond() != 0 {
		s += t.Format(".000000")
	}
	if _, offset := t.Zone(); offset != 0 {
		s += t.Format("-07:00")
	}
	return s
}

// Interface returns the Go value carried by v.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindString:
		return v.String
	case KindInt:
		return v.Int
	case KindUint:
		return v.Uint
	case KindFloat:
		return v.Float
	case KindBool:
		return v.Bool
	default:
		return nil
	}
}

// MarshalJSON encodes v as the matching JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// Column is a named value within a Row.
type Column struct {
	Name  string
	Value Value
}

// Row is a fetched row, in result-set column order.
type Row []Column

// Get returns the value of the named column.
func (r Row) Get(name string) (Value, bool) {
	for _, c := range r {
		if c.Name == name {
			return c.Value, true
		}
	}
	return Null, false
}

// Map returns the row as a column name to Go value map.
func (r Row) Map() map[string]interface{} {
	var m = make(map[string]interface{}, len(r))
	for _, c := range r {
		m[c.Name] = c.Value.Interface()
	}
	return m
}

// MarshalJSON encodes the row as an object whose keys keep column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i != 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		value, err := c.Value.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

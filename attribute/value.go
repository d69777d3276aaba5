// Copyright The OpenTelemetry Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package attribute provides the canonical, hashable key/value pairs used
// to dimension a measurement, span, or log record.
package attribute // import "github.com/CodeBlanch/otelcore/attribute"

import "fmt"

// Type identifies the type of a Value.
type Type int

const (
	INVALID Type = iota
	BOOL
	INT64
	FLOAT64
	STRING
	BOOLSLICE
	INT64SLICE
	FLOAT64SLICE
	STRINGSLICE
)

// Key is an attribute key, compared by ordinal, case-sensitive equality.
type Key string

// Value is a typed union holding one of the primitive types or a
// homogeneous slice of one of the preceding primitives.
type Value struct {
	vtype    Type
	numeric  uint64
	stringly string
	slice    interface{}
}

// Bool creates a BOOL Value.
func (k Key) Bool(v bool) KeyValue { return KeyValue{Key: k, Value: BoolValue(v)} }

// Int64 creates an INT64 Value.
func (k Key) Int64(v int64) KeyValue { return KeyValue{Key: k, Value: Int64Value(v)} }

// Int creates an INT64 Value from a platform int.
func (k Key) Int(v int) KeyValue { return KeyValue{Key: k, Value: Int64Value(int64(v))} }

// Float64 creates a FLOAT64 Value.
func (k Key) Float64(v float64) KeyValue { return KeyValue{Key: k, Value: Float64Value(v)} }

// String creates a STRING Value.
func (k Key) String(v string) KeyValue { return KeyValue{Key: k, Value: StringValue(v)} }

// Defined reports whether k is a non-empty key.
func (k Key) Defined() bool { return len(k) != 0 }

// KeyValue is a key and its associated Value.
type KeyValue struct {
	Key   Key
	Value Value
}

// Bool creates a BOOL KeyValue.
func Bool(k string, v bool) KeyValue { return Key(k).Bool(v) }

// Int64 creates an INT64 KeyValue.
func Int64(k string, v int64) KeyValue { return Key(k).Int64(v) }

// Int creates an INT64 KeyValue from a platform int.
func Int(k string, v int) KeyValue { return Key(k).Int(v) }

// Float64 creates a FLOAT64 KeyValue.
func Float64(k string, v float64) KeyValue { return Key(k).Float64(v) }

// String creates a STRING KeyValue.
func String(k string, v string) KeyValue { return Key(k).String(v) }

// Valid reports whether kv has a non-empty key.
func (kv KeyValue) Valid() bool { return kv.Key.Defined() }

func BoolValue(v bool) Value {
	var n uint64
	if v {
		n = 1
	}
	return Value{vtype: BOOL, numeric: n}
}

func Int64Value(v int64) Value {
	return Value{vtype: INT64, numeric: uint64(v)}
}

func Float64Value(v float64) Value {
	return Value{vtype: FLOAT64, numeric: float64ToRaw(v)}
}

func StringValue(v string) Value {
	return Value{vtype: STRING, stringly: v}
}

func BoolSliceValue(v []bool) Value {
	cp := make([]bool, len(v))
	copy(cp, v)
	return Value{vtype: BOOLSLICE, slice: cp}
}

func Int64SliceValue(v []int64) Value {
	cp := make([]int64, len(v))
	copy(cp, v)
	return Value{vtype: INT64SLICE, slice: cp}
}

func Float64SliceValue(v []float64) Value {
	cp := make([]float64, len(v))
	copy(cp, v)
	return Value{vtype: FLOAT64SLICE, slice: cp}
}

func StringSliceValue(v []string) Value {
	cp := make([]string, len(v))
	copy(cp, v)
	return Value{vtype: STRINGSLICE, slice: cp}
}

// Type returns the type of value held.
func (v Value) Type() Type { return v.vtype }

func (v Value) AsBool() bool       { return v.numeric == 1 }
func (v Value) AsInt64() int64     { return int64(v.numeric) }
func (v Value) AsFloat64() float64 { return rawToFloat64(v.numeric) }
func (v Value) AsString() string   { return v.stringly }
func (v Value) AsBoolSlice() []bool {
	if s, ok := v.slice.([]bool); ok {
		return s
	}
	return nil
}
func (v Value) AsInt64Slice() []int64 {
	if s, ok := v.slice.([]int64); ok {
		return s
	}
	return nil
}
func (v Value) AsFloat64Slice() []float64 {
	if s, ok := v.slice.([]float64); ok {
		return s
	}
	return nil
}
func (v Value) AsStringSlice() []string {
	if s, ok := v.slice.([]string); ok {
		return s
	}
	return nil
}

// emptyString reports whether v is the empty string, the sentinel used by
// AttributeSet construction to mean "remove this key".
func (v Value) emptyString() bool {
	return v.vtype == STRING && v.stringly == ""
}

// String returns a human-readable representation. Besides error messages
// and debug logging, Set construction uses it to build the canonical
// encoding behind Distinct, so it runs on every NewSet call.
func (v Value) String() string {
	switch v.vtype {
	case BOOL:
		return fmt.Sprintf("%t", v.AsBool())
	case INT64:
		return fmt.Sprintf("%d", v.AsInt64())
	case FLOAT64:
		return fmt.Sprintf("%g", v.AsFloat64())
	case STRING:
		return v.stringly
	case BOOLSLICE:
		return fmt.Sprintf("%v", v.AsBoolSlice())
	case INT64SLICE:
		return fmt.Sprintf("%v", v.AsInt64Slice())
	case FLOAT64SLICE:
		return fmt.Sprintf("%v", v.AsFloat64Slice())
	case STRINGSLICE:
		return fmt.Sprintf("%v", v.AsStringSlice())
	default:
		return "<invalid>"
	}
}

package projection

import (
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/theplant/helix"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueString
	ValueInt
	ValueBool
	ValueTime
	ValueGUID
	ValueEnum
)

var valueKindNames = [...]string{"null", "string", "int", "bool", "time", "guid", "enum"}

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return "ValueKind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a projected field value. Only the member selected by Kind is
// meaningful; enums carry their name in Text.
type Value struct {
	Kind ValueKind
	Text string
	Int  int64
	Bool bool
	Time time.Time
	GUID uuid.UUID
}

var (
	enumType = reflect.TypeOf((*helix.Enum)(nil)).Elem()
	timeType = reflect.TypeOf(time.Time{})
)

func Null() Value { return Value{} }

func String(s string) Value { return Value{Kind: ValueString, Text: s} }

func Int(i int64) Value { return Value{Kind: ValueInt, Int: i} }

func Bool(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

func Time(t time.Time) Value { return Value{Kind: ValueTime, Time: t} }

func GUID(id uuid.UUID) Value { return Value{Kind: ValueGUID, GUID: id} }

func EnumName(name string) Value { return Value{Kind: ValueEnum, Text: name} }

// ValueOf wraps a raw field value. Nil and nil pointers become Null; types
// outside the union are rendered as strings.
func ValueOf(v any) Value {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return Null()
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return Null()
	}

	rt := rv.Type()
	switch {
	case rt.Kind() == reflect.String && rt.Implements(enumType):
		return EnumName(rv.String())
	case rt == reflect.TypeOf(uuid.UUID{}):
		return GUID(rv.Interface().(uuid.UUID))
	case rt.Kind() == reflect.Struct && rt.ConvertibleTo(timeType):
		return Time(rv.Convert(timeType).Interface().(time.Time))
	}

	switch rt.Kind() {
	case reflect.String:
		return String(rv.String())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(int64(rv.Uint()))
	}
	s, err := json.MarshalToString(rv.Interface())
	if err != nil {
		return String(err.Error())
	}
	return String(s)
}

// Interface returns the Go value held by v, or nil for Null.
func (v Value) Interface() any {
	switch v.Kind {
	case ValueString, ValueEnum:
		return v.Text
	case ValueInt:
		return v.Int
	case ValueBool:
		return v.Bool
	case ValueTime:
		return v.Time
	case ValueGUID:
		return v.GUID
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

package helix

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/sunfmin/reflectutils"
	"gorm.io/gorm/schema"
)

// Enum is implemented by string-backed enumeration types. EnumValues lists
// the names in ordinal order.
type Enum interface {
	EnumValues() []string
}

var (
	enumType = reflect.TypeOf((*Enum)(nil)).Elem()
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

type Field struct {
	Name       string
	JSONName   string
	DBName     string
	Kind       Kind
	PrimaryKey bool
	Unique     bool
	Type       reflect.Type

	enumValues []string
}

// EnumValues returns the enum names for enum fields, nil otherwise.
func (f *Field) EnumValues() []string {
	return f.enumValues
}

// ValueOf reads the field from entity, which may be a struct or a pointer to one.
func (f *Field) ValueOf(entity any) (any, error) {
	rv := reflect.ValueOf(entity)
	if !rv.IsValid() {
		return nil, errors.Errorf("nil entity reading %q", f.Name)
	}
	if rv.Kind() != reflect.Ptr {
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		entity = ptr.Interface()
	} else if rv.IsNil() {
		return nil, errors.Errorf("nil entity reading %q", f.Name)
	}
	v, err := reflectutils.Get(entity, f.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "get field %q", f.Name)
	}
	return v, nil
}

// Normalize converts a raw field value into the canonical representation of
// its kind: string for enum and string kinds, time.Time for dates, int64 for
// integers and uuid.UUID for guids. Nil pointers normalize to nil.
func (f *Field) Normalize(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}

	switch f.Kind {
	case KindEnum:
		if rv.Kind() == reflect.String {
			return rv.String()
		}
	case KindDate:
		if rv.Type().ConvertibleTo(timeType) {
			return rv.Convert(timeType).Interface().(time.Time)
		}
	case KindInt:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return int64(rv.Uint())
		}
	case KindGUID:
		if id, ok := rv.Interface().(uuid.UUID); ok {
			return id
		}
	}

	if rv.Kind() == reflect.String {
		return rv.String()
	}
	if s, ok := rv.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(rv.Interface())
}

// Parse converts a textual filter value into the canonical representation of
// the field's kind. The boolean is false when the text does not parse.
func (f *Field) Parse(value string) (any, bool) {
	switch f.Kind {
	case KindEnum:
		value = strings.TrimSpace(value)
		for _, name := range f.enumValues {
			if strings.EqualFold(name, value) {
				return name, true
			}
		}
		// ordinal position
		if i, err := strconv.Atoi(value); err == nil && i >= 0 && i < len(f.enumValues) {
			return f.enumValues[i], true
		}
		return nil, false
	case KindDate:
		t, err := cast.ToTimeE(strings.TrimSpace(value))
		if err != nil {
			return nil, false
		}
		return t, true
	case KindInt:
		i, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, false
		}
		return i, true
	case KindGUID:
		id, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return nil, false
		}
		return id, true
	default:
		return value, true
	}
}

// Schema is the queryable field metadata of an entity type.
type Schema struct {
	Type         reflect.Type
	Fields       []*Field
	PrimaryField *Field

	byName map[string]*Field
}

// LookUpField resolves name case-insensitively against the Go field names,
// the JSON names and the column names. It returns nil when nothing matches.
func (s *Schema) LookUpField(name string) *Field {
	return s.byName[strings.ToLower(strings.TrimSpace(name))]
}

var (
	schemaCache     *lru.Cache[reflect.Type, *Schema]
	schemaCacheOnce sync.Once

	gormSchemaStore = &sync.Map{}
)

func getSchemaCache() *lru.Cache[reflect.Type, *Schema] {
	schemaCacheOnce.Do(func() {
		cache, err := lru.New[reflect.Type, *Schema](1024)
		if err != nil {
			panic(err)
		}
		schemaCache = cache
	})
	return schemaCache
}

// SchemaOf returns the cached schema of T. T may be a struct or a pointer to one.
func SchemaOf[T any]() (*Schema, error) {
	return SchemaFor(reflect.TypeOf((*T)(nil)).Elem())
}

func SchemaFor(rt reflect.Type) (*Schema, error) {
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, errors.Errorf("%s is not a struct type", rt)
	}

	cache := getSchemaCache()
	if s, ok := cache.Get(rt); ok {
		return s, nil
	}
	s, err := parseSchema(rt)
	if err != nil {
		return nil, err
	}
	cache.Add(rt, s)
	return s, nil
}

func parseSchema(rt reflect.Type) (*Schema, error) {
	gs, err := schema.Parse(reflect.New(rt).Interface(), gormSchemaStore, schema.NamingStrategy{})
	if err != nil {
		return nil, errors.Wrapf(err, "parse schema for %s", rt)
	}

	s := &Schema{
		Type:   rt,
		byName: map[string]*Field{},
	}
	for _, gf := range gs.Fields {
		if gf.DBName == "" || gf.StructField.PkgPath != "" {
			continue
		}
		jsonName, _, _ := strings.Cut(gf.StructField.Tag.Get("json"), ",")
		if jsonName == "" || jsonName == "-" {
			jsonName = gf.Name
		}
		kind, enumValues := kindOf(gf.FieldType)
		f := &Field{
			Name:       gf.Name,
			JSONName:   jsonName,
			DBName:     gf.DBName,
			Kind:       kind,
			PrimaryKey: gf.PrimaryKey,
			Unique:     gf.Unique,
			Type:       gf.FieldType,
			enumValues: enumValues,
		}
		s.Fields = append(s.Fields, f)
		if f.PrimaryKey && s.PrimaryField == nil {
			s.PrimaryField = f
		}
	}
	if gs.PrioritizedPrimaryField != nil {
		for _, f := range s.Fields {
			if f.Name == gs.PrioritizedPrimaryField.Name {
				s.PrimaryField = f
			}
		}
	}

	// Go names take precedence over JSON and column names on collision.
	for _, f := range s.Fields {
		s.byName[strings.ToLower(f.DBName)] = f
	}
	for _, f := range s.Fields {
		s.byName[strings.ToLower(f.JSONName)] = f
	}
	for _, f := range s.Fields {
		s.byName[strings.ToLower(f.Name)] = f
	}
	return s, nil
}

func kindOf(rt reflect.Type) (Kind, []string) {
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	switch {
	case rt.Implements(enumType):
		return KindEnum, reflect.Zero(rt).Interface().(Enum).EnumValues()
	case reflect.PointerTo(rt).Implements(enumType):
		return KindEnum, reflect.New(rt).Interface().(Enum).EnumValues()
	case rt == uuidType:
		return KindGUID, nil
	case rt.Kind() == reflect.Struct && rt.ConvertibleTo(timeType):
		return KindDate, nil
	}
	switch rt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInt, nil
	}
	return KindString, nil
}

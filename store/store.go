// Package store persists entities and answers dynamic queries over them.
package store

import (
	"context"
	"reflect"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/theplant/helix"
	"github.com/theplant/helix/model"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")
	ErrIDMismatch      = errors.New("id mismatch")
	ErrInvalidEntity   = errors.New("invalid entity")
	ErrDuplicate       = errors.New("duplicate")
)

// Repository stores entities of type E, which must be a struct with a uuid
// primary key and an integer Version field.
type Repository[E any] interface {
	Create(ctx context.Context, entity *E) error
	Get(ctx context.Context, id uuid.UUID) (*E, error)
	List(ctx context.Context) ([]*E, error)
	Query(ctx context.Context, req *helix.QueryRequest) ([]*E, error)
	// Update writes entity only if the stored version equals entity's
	// version. On success the version is incremented.
	Update(ctx context.Context, id uuid.UUID, entity *E) error
	// Patch merges the top-level JSON fields of patch onto the stored
	// entity and writes it back like Update.
	Patch(ctx context.Context, id uuid.UUID, patch []byte) (*E, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

const versionFieldName = "Version"

type entityMeta struct {
	schema  *helix.Schema
	pk      *helix.Field
	version *helix.Field
	unique  []*helix.Field
}

func metaOf[E any]() (*entityMeta, error) {
	s, err := helix.SchemaOf[E]()
	if err != nil {
		return nil, err
	}
	if s.PrimaryField == nil || s.PrimaryField.Kind != helix.KindGUID {
		return nil, errors.Errorf("%s has no uuid primary key", s.Type)
	}
	version := s.LookUpField(versionFieldName)
	if version == nil || version.Kind != helix.KindInt {
		return nil, errors.Errorf("%s has no integer %s field", s.Type, versionFieldName)
	}
	meta := &entityMeta{schema: s, pk: s.PrimaryField, version: version}
	for _, f := range s.Fields {
		if f.Unique && !f.PrimaryKey {
			meta.unique = append(meta.unique, f)
		}
	}
	return meta, nil
}

func (m *entityMeta) field(entity any, f *helix.Field) reflect.Value {
	return reflect.ValueOf(entity).Elem().FieldByName(f.Name)
}

func (m *entityMeta) id(entity any) uuid.UUID {
	return m.field(entity, m.pk).Interface().(uuid.UUID)
}

func (m *entityMeta) setID(entity any, id uuid.UUID) {
	m.field(entity, m.pk).Set(reflect.ValueOf(id))
}

func (m *entityMeta) versionOf(entity any) int64 {
	return m.field(entity, m.version).Int()
}

func (m *entityMeta) setVersion(entity any, v int64) {
	m.field(entity, m.version).SetInt(v)
}

// prepareCreate assigns a fresh id when none is set and starts the version at 1.
func (m *entityMeta) prepareCreate(entity any) {
	if m.id(entity) == uuid.Nil {
		m.setID(entity, uuid.New())
	}
	m.setVersion(entity, 1)
}

// prepareUpdate checks entity belongs to id, filling in a missing primary key.
func (m *entityMeta) prepareUpdate(id uuid.UUID, entity any) error {
	switch m.id(entity) {
	case uuid.Nil:
		m.setID(entity, id)
	case id:
	default:
		return errors.Wrapf(ErrIDMismatch, "path id %s, body id %s", id, m.id(entity))
	}
	return nil
}

func (m *entityMeta) validate(entity any) error {
	if err := model.Validate(entity); err != nil {
		return errors.Wrapf(ErrInvalidEntity, "%s: %v", m.schema.Type.Name(), err)
	}
	return nil
}

// duplicateOf returns the first unique field on which a and b hold the same value.
func (m *entityMeta) duplicateOf(a, b any) (*helix.Field, error) {
	for _, f := range m.unique {
		av, err := f.ValueOf(a)
		if err != nil {
			return nil, err
		}
		bv, err := f.ValueOf(b)
		if err != nil {
			return nil, err
		}
		na, nb := f.Normalize(av), f.Normalize(bv)
		if na != nil && nb != nil && helix.CompareValues(na, nb) == 0 {
			return f, nil
		}
	}
	return nil, nil
}

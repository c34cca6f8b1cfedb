// Package projection reshapes entities into records holding only the
// requested fields.
package projection

import (
	"iter"
	"strings"

	"github.com/samber/lo"

	"github.com/theplant/helix"
)

// ParseFields splits a comma separated field list, trimming blanks and
// dropping empty names.
func ParseFields(fields string) []string {
	return lo.FilterMap(strings.Split(fields, ","), func(name string, _ int) (string, bool) {
		name = strings.TrimSpace(name)
		return name, name != ""
	})
}

type column struct {
	key   string
	field *helix.Field
}

// Projector projects entities of type T onto a fixed list of fields.
type Projector[T any] struct {
	columns []column
}

// NewProjector resolves fields against T. Names that match no field are
// dropped; each record key keeps the casing it was requested with.
func NewProjector[T any](fields string) (*Projector[T], error) {
	s, err := helix.SchemaOf[T]()
	if err != nil {
		return nil, err
	}
	p := &Projector[T]{}
	for _, name := range ParseFields(fields) {
		f := s.LookUpField(name)
		if f == nil {
			continue
		}
		p.columns = append(p.columns, column{key: name, field: f})
	}
	return p, nil
}

// Fields returns the distinct resolved fields in request order.
func (p *Projector[T]) Fields() []*helix.Field {
	return lo.Uniq(lo.Map(p.columns, func(c column, _ int) *helix.Field {
		return c.field
	}))
}

func (p *Projector[T]) Record(entity T) *Record {
	r := NewRecord()
	for _, c := range p.columns {
		v, err := c.field.ValueOf(entity)
		if err != nil {
			continue
		}
		r.Set(c.key, ValueOf(v))
	}
	return r
}

// Seq lazily yields one record per entity in input order.
func (p *Projector[T]) Seq(entities []T) iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		for _, e := range entities {
			if !yield(p.Record(e)) {
				return
			}
		}
	}
}

func (p *Projector[T]) Project(entities []T) []*Record {
	records := make([]*Record, 0, len(entities))
	for r := range p.Seq(entities) {
		records = append(records, r)
	}
	return records
}

func Project[T any](entities []T, fields string) ([]*Record, error) {
	p, err := NewProjector[T](fields)
	if err != nil {
		return nil, err
	}
	return p.Project(entities), nil
}

func Seq[T any](entities []T, fields string) (iter.Seq[*Record], error) {
	p, err := NewProjector[T](fields)
	if err != nil {
		return nil, err
	}
	return p.Seq(entities), nil
}

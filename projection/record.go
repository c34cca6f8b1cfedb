package projection

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/sjson"
)

// Record is an ordered mapping of field names to values. It marshals to a
// JSON object with keys in insertion order.
type Record struct {
	keys   []string
	values map[string]Value
}

func NewRecord() *Record {
	return &Record{values: map[string]Value{}}
}

// Set stores v under key. Setting an existing key replaces its value in place.
func (r *Record) Set(key string, v Value) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

func (r *Record) Len() int {
	return len(r.keys)
}

// Map returns the plain Go values keyed by field name.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		m[k] = r.values[k].Interface()
	}
	return m
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
	`:`, `\:`,
)

func (r *Record) MarshalJSON() ([]byte, error) {
	b := []byte(`{}`)
	for _, k := range r.keys {
		raw, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, errors.Wrapf(err, "marshal %q", k)
		}
		b, err = sjson.SetRawBytes(b, pathEscaper.Replace(k), raw)
		if err != nil {
			return nil, errors.Wrapf(err, "set %q", k)
		}
	}
	return b, nil
}

package helix

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Predicate is one typed filter condition. Value is already parsed into the
// canonical representation of Field.Kind.
type Predicate struct {
	Field     *Field
	Operation Operation
	Value     any
}

// Match evaluates the predicate against entity. A nil field value never
// matches, the same way a NULL column fails every comparison in SQL.
func (p *Predicate) Match(entity any) (bool, error) {
	raw, err := p.Field.ValueOf(entity)
	if err != nil {
		return false, err
	}
	v := p.Field.Normalize(raw)
	if v == nil {
		return false, nil
	}

	switch p.Operation {
	case OperationEquals:
		return CompareValues(v, p.Value) == 0, nil
	case OperationNotEquals:
		return CompareValues(v, p.Value) != 0, nil
	case OperationGreaterThan:
		return CompareValues(v, p.Value) > 0, nil
	case OperationLessThan:
		return CompareValues(v, p.Value) < 0, nil
	case OperationContains, OperationDoesNotContain:
		s, _ := v.(string)
		sub, _ := p.Value.(string)
		return strings.Contains(s, sub) == (p.Operation == OperationContains), nil
	}
	return false, errors.Errorf("unknown operation %q", p.Operation)
}

type Order struct {
	Field *Field
	Desc  bool
}

// Plan is a compiled QueryRequest. It holds no reference to any data and can
// be applied to any Collection of the compiled type.
type Plan struct {
	Schema     *Schema
	Predicates []*Predicate
	OrderBy    []Order
	Offset     int
	Limit      int
}

// AppendPrimaryOrder appends the primary orders whose fields are not already ordered on.
func AppendPrimaryOrder(orders []Order, primaryOrders ...Order) []Order {
	if len(primaryOrders) == 0 {
		return orders
	}
	ordered := lo.SliceToMap(orders, func(o Order) (string, bool) {
		return o.Field.Name, true
	})
	for _, primary := range primaryOrders {
		if _, ok := ordered[primary.Field.Name]; !ok {
			orders = append(orders, primary)
		}
	}
	return orders
}

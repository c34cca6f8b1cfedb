// Package memquery evaluates helix query plans over in-memory slices.
package memquery

import (
	"context"
	"slices"

	"github.com/pkg/errors"

	"github.com/theplant/helix"
)

type Collection[T any] struct {
	items      []T
	predicates []*helix.Predicate
	orders     []helix.Order
	offset     int
	limit      int
}

var _ helix.Collection[any] = (*Collection[any])(nil)

// New returns a collection over items. items is never modified.
func New[T any](items []T) *Collection[T] {
	return &Collection[T]{items: items, limit: -1}
}

func (c *Collection[T]) clone() *Collection[T] {
	cc := *c
	cc.predicates = slices.Clone(c.predicates)
	cc.orders = slices.Clone(c.orders)
	return &cc
}

func (c *Collection[T]) Where(predicates ...*helix.Predicate) helix.Collection[T] {
	cc := c.clone()
	cc.predicates = append(cc.predicates, predicates...)
	return cc
}

func (c *Collection[T]) Order(orders ...helix.Order) helix.Collection[T] {
	cc := c.clone()
	cc.orders = append(cc.orders, orders...)
	return cc
}

func (c *Collection[T]) Offset(offset int) helix.Collection[T] {
	cc := c.clone()
	cc.offset = max(offset, 0)
	return cc
}

// Limit bounds the result. A negative limit means unbounded.
func (c *Collection[T]) Limit(limit int) helix.Collection[T] {
	cc := c.clone()
	cc.limit = limit
	return cc
}

func (c *Collection[T]) Find(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched := make([]T, 0, len(c.items))
	for _, item := range c.items {
		ok, err := c.match(item)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, item)
		}
	}

	if len(c.orders) > 0 {
		var sortErr error
		slices.SortStableFunc(matched, func(a, b T) int {
			n, err := c.compare(a, b)
			if err != nil && sortErr == nil {
				sortErr = err
			}
			return n
		})
		if sortErr != nil {
			return nil, sortErr
		}
	}

	if c.offset >= len(matched) {
		return []T{}, nil
	}
	matched = matched[c.offset:]
	if c.limit >= 0 && c.limit < len(matched) {
		matched = matched[:c.limit]
	}
	return matched, nil
}

func (c *Collection[T]) match(item T) (bool, error) {
	for _, p := range c.predicates {
		ok, err := p.Match(item)
		if err != nil {
			return false, errors.Wrapf(err, "match %s", p.Field.Name)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (c *Collection[T]) compare(a, b T) (int, error) {
	for _, o := range c.orders {
		av, err := o.Field.ValueOf(a)
		if err != nil {
			return 0, err
		}
		bv, err := o.Field.ValueOf(b)
		if err != nil {
			return 0, err
		}
		n := helix.CompareValues(o.Field.Normalize(av), o.Field.Normalize(bv))
		if o.Desc {
			n = -n
		}
		if n != 0 {
			return n, nil
		}
	}
	return 0, nil
}

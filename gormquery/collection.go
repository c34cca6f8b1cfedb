// Package gormquery runs helix query plans against a gorm database.
package gormquery

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/theplant/helix"
)

// Collection is a deferred gorm query. Every step works on a fresh session,
// so a Collection can be shared and extended without affecting others.
type Collection[T any] struct {
	db *gorm.DB
}

var _ helix.Collection[any] = (*Collection[any])(nil)

func New[T any](db *gorm.DB) *Collection[T] {
	return &Collection[T]{db: applyModel[T](db.Session(&gorm.Session{}))}
}

func (c *Collection[T]) with(scopes ...func(*gorm.DB) *gorm.DB) *Collection[T] {
	return &Collection[T]{db: c.db.Session(&gorm.Session{}).Scopes(scopes...)}
}

func (c *Collection[T]) Where(predicates ...*helix.Predicate) helix.Collection[T] {
	return c.with(ScopeWhere(predicates...))
}

func (c *Collection[T]) Order(orders ...helix.Order) helix.Collection[T] {
	return c.with(ScopeOrder(orders...))
}

func (c *Collection[T]) Offset(offset int) helix.Collection[T] {
	return c.with(func(db *gorm.DB) *gorm.DB { return db.Offset(offset) })
}

// Limit bounds the result. A negative limit means unbounded.
func (c *Collection[T]) Limit(limit int) helix.Collection[T] {
	return c.with(func(db *gorm.DB) *gorm.DB { return db.Limit(limit) })
}

// Select loads only the columns of fields and the primary key.
func (c *Collection[T]) Select(fields ...*helix.Field) *Collection[T] {
	return c.with(ScopeSelect(fields...))
}

// DB returns a session of the composed query.
func (c *Collection[T]) DB() *gorm.DB {
	return c.db.Session(&gorm.Session{})
}

func (c *Collection[T]) Find(ctx context.Context) ([]T, error) {
	var nodes []T
	if err := c.db.WithContext(ctx).Find(&nodes).Error; err != nil {
		return nil, errors.Wrap(err, "find")
	}
	return nodes, nil
}

package helix

import "context"

// Collection is a deferred, immutable query over entities of type T. Each
// method returns a new Collection; nothing touches the data until Find.
type Collection[T any] interface {
	Where(predicates ...*Predicate) Collection[T]
	Order(orders ...Order) Collection[T]
	Offset(offset int) Collection[T]
	Limit(limit int) Collection[T]
	Find(ctx context.Context) ([]T, error)
}

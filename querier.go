package helix

import (
	"context"
)

type Querier[T any] interface {
	Query(ctx context.Context, req *QueryRequest) ([]T, error)
}

type QuerierFunc[T any] func(ctx context.Context, req *QueryRequest) ([]T, error)

func (f QuerierFunc[T]) Query(ctx context.Context, req *QueryRequest) ([]T, error) {
	return f(ctx, req)
}

// CollectionFunc returns the collection a request runs against. It may
// inspect req, for example to restrict the loaded columns.
type CollectionFunc[T any] func(ctx context.Context, req *QueryRequest) (Collection[T], error)

// NewQuerier returns a Querier that compiles every request for T, applies
// the plan to the collection from source and materializes it. Hooks wrap
// the querier, the first hook being the outermost.
func NewQuerier[T any](source CollectionFunc[T], hooks ...func(next Querier[T]) Querier[T]) Querier[T] {
	if source == nil {
		panic("source must be set")
	}

	var q Querier[T] = QuerierFunc[T](func(ctx context.Context, req *QueryRequest) ([]T, error) {
		plan, err := Compile[T](req)
		if err != nil {
			return nil, err
		}
		coll, err := source(ctx, req)
		if err != nil {
			return nil, err
		}
		return Apply(plan, coll).Find(ctx)
	})

	for i := len(hooks) - 1; i >= 0; i-- {
		if hooks[i] != nil {
			q = hooks[i](q)
		}
	}
	return q
}

// WithLimits normalizes every request with EnsureLimits before it is compiled.
func WithLimits[T any](limits Limits) func(next Querier[T]) Querier[T] {
	return func(next Querier[T]) Querier[T] {
		return QuerierFunc[T](func(ctx context.Context, req *QueryRequest) ([]T, error) {
			req, err := EnsureLimits(req, limits)
			if err != nil {
				return nil, err
			}
			return next.Query(ctx, req)
		})
	}
}

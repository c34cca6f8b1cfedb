package helix

import (
	"github.com/pkg/errors"
)

type Limits struct {
	DefaultSize int
	MaxSize     int
	MaxFilters  int
}

var DefaultLimits = Limits{
	DefaultSize: DefaultSize,
	MaxSize:     1000,
	MaxFilters:  32,
}

// EnsureLimits returns a copy of req with Size and Offset clamped to limits.
// A zero MaxSize or MaxFilters disables that bound.
func EnsureLimits(req *QueryRequest, limits Limits) (*QueryRequest, error) {
	if req == nil {
		req = NewQueryRequest()
	}
	if limits.MaxFilters > 0 && len(req.Filters) > limits.MaxFilters {
		return nil, errors.Wrapf(ErrTooManyFilters, "%d filters exceeds the maximum of %d", len(req.Filters), limits.MaxFilters)
	}

	out := *req
	out.Filters = append([]FilterClause(nil), req.Filters...)
	if out.Size <= 0 {
		out.Size = limits.DefaultSize
		if out.Size <= 0 {
			out.Size = DefaultSize
		}
	}
	if limits.MaxSize > 0 && out.Size > limits.MaxSize {
		out.Size = limits.MaxSize
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return &out, nil
}

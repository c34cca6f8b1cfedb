package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/theplant/helix"
	"github.com/theplant/helix/memquery"
)

// Memory keeps entities in process. Callers always receive copies.
type Memory[E any] struct {
	meta    *entityMeta
	querier helix.Querier[*E]

	mu    sync.RWMutex
	rows  map[uuid.UUID]E
	order []uuid.UUID
}

var _ Repository[struct{}] = (*Memory[struct{}])(nil)

func NewMemory[E any](limits helix.Limits) (*Memory[E], error) {
	meta, err := metaOf[E]()
	if err != nil {
		return nil, err
	}
	m := &Memory[E]{
		meta: meta,
		rows: map[uuid.UUID]E{},
	}
	m.querier = helix.NewQuerier(
		func(ctx context.Context, _ *helix.QueryRequest) (helix.Collection[*E], error) {
			return memquery.New(m.snapshot()), nil
		},
		helix.WithLimits[*E](limits),
	)
	return m, nil
}

func (m *Memory[E]) notFound(id uuid.UUID) error {
	return errors.Wrapf(ErrNotFound, "%s %s", m.meta.schema.Type.Name(), id)
}

func (m *Memory[E]) Create(ctx context.Context, entity *E) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.meta.prepareCreate(entity)
	if err := m.meta.validate(entity); err != nil {
		return err
	}
	id := m.meta.id(entity)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; ok {
		return errors.Wrapf(ErrDuplicate, "%s %s", m.meta.schema.Type.Name(), id)
	}
	if err := m.checkUnique(id, entity); err != nil {
		return err
	}
	m.rows[id] = *entity
	m.order = append(m.order, id)
	return nil
}

// checkUnique must be called with mu held.
func (m *Memory[E]) checkUnique(id uuid.UUID, entity *E) error {
	if len(m.meta.unique) == 0 {
		return nil
	}
	for rid, row := range m.rows {
		if rid == id {
			continue
		}
		f, err := m.meta.duplicateOf(entity, &row)
		if err != nil {
			return err
		}
		if f != nil {
			return errors.Wrapf(ErrDuplicate, "%s %s already taken", m.meta.schema.Type.Name(), f.JSONName)
		}
	}
	return nil
}

func (m *Memory[E]) Get(ctx context.Context, id uuid.UUID) (*E, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, m.notFound(id)
	}
	return &row, nil
}

func (m *Memory[E]) snapshot() []*E {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*E, 0, len(m.order))
	for _, id := range m.order {
		row := m.rows[id]
		out = append(out, &row)
	}
	return out
}

func (m *Memory[E]) List(ctx context.Context) ([]*E, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.snapshot(), nil
}

func (m *Memory[E]) Query(ctx context.Context, req *helix.QueryRequest) ([]*E, error) {
	return m.querier.Query(ctx, req)
}

func (m *Memory[E]) Update(ctx context.Context, id uuid.UUID, entity *E) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.meta.prepareUpdate(id, entity); err != nil {
		return err
	}
	if err := m.meta.validate(entity); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rows[id]
	if !ok {
		return m.notFound(id)
	}
	expected := m.meta.versionOf(entity)
	if m.meta.versionOf(&stored) != expected {
		return errors.Wrapf(ErrVersionConflict, "%s %s is not at version %d", m.meta.schema.Type.Name(), id, expected)
	}
	if err := m.checkUnique(id, entity); err != nil {
		return err
	}
	m.meta.setVersion(entity, expected+1)
	m.rows[id] = *entity
	return nil
}

func (m *Memory[E]) Patch(ctx context.Context, id uuid.UUID, patch []byte) (*E, error) {
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.meta.mergePatch(current, patch); err != nil {
		return nil, err
	}
	if err := m.Update(ctx, id, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (m *Memory[E]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return m.notFound(id)
	}
	delete(m.rows, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

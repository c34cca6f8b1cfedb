package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/theplant/helix"
	"github.com/theplant/helix/gormquery"
	"github.com/theplant/helix/projection"
)

type Gorm[E any] struct {
	db      *gorm.DB
	meta    *entityMeta
	querier helix.Querier[*E]
}

var _ Repository[struct{}] = (*Gorm[struct{}])(nil)

func NewGorm[E any](db *gorm.DB, limits helix.Limits) (*Gorm[E], error) {
	meta, err := metaOf[E]()
	if err != nil {
		return nil, err
	}
	g := &Gorm[E]{db: db, meta: meta}
	g.querier = helix.NewQuerier(g.collection, helix.WithLimits[*E](limits))
	return g, nil
}

func (g *Gorm[E]) column(f *helix.Field) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: f.DBName}
}

func (g *Gorm[E]) byID(id uuid.UUID) clause.Expression {
	return clause.Eq{Column: g.column(g.meta.pk), Value: id}
}

// writeError maps constraint violations reported by the driver onto store errors.
func (g *Gorm[E]) writeError(err error, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrapf(ErrDuplicate, "%s %s: %v", op, g.meta.schema.Type.Name(), err)
	}
	return errors.Wrap(err, op)
}

func (g *Gorm[E]) Create(ctx context.Context, entity *E) error {
	g.meta.prepareCreate(entity)
	if err := g.meta.validate(entity); err != nil {
		return err
	}
	if err := g.db.WithContext(ctx).Create(entity).Error; err != nil {
		return g.writeError(err, "create")
	}
	return nil
}

func (g *Gorm[E]) Get(ctx context.Context, id uuid.UUID) (*E, error) {
	var entity E
	err := g.db.WithContext(ctx).Where(g.byID(id)).Take(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "%s %s", g.meta.schema.Type.Name(), id)
		}
		return nil, errors.Wrap(err, "get")
	}
	return &entity, nil
}

func (g *Gorm[E]) List(ctx context.Context) ([]*E, error) {
	var entities []*E
	err := g.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: g.column(g.meta.pk)}).
		Find(&entities).Error
	if err != nil {
		return nil, errors.Wrap(err, "list")
	}
	return entities, nil
}

// collection loads only the requested columns and the primary key when
// req names fields.
func (g *Gorm[E]) collection(_ context.Context, req *helix.QueryRequest) (helix.Collection[*E], error) {
	coll := gormquery.New[*E](g.db)
	if req.Fields == "" {
		return coll, nil
	}
	projector, err := projection.NewProjector[E](req.Fields)
	if err != nil {
		return nil, err
	}
	if fields := projector.Fields(); len(fields) > 0 {
		coll = coll.Select(fields...)
	}
	return coll, nil
}

func (g *Gorm[E]) Query(ctx context.Context, req *helix.QueryRequest) ([]*E, error) {
	return g.querier.Query(ctx, req)
}

func (g *Gorm[E]) Update(ctx context.Context, id uuid.UUID, entity *E) error {
	if err := g.meta.prepareUpdate(id, entity); err != nil {
		return err
	}
	if err := g.meta.validate(entity); err != nil {
		return err
	}

	expected := g.meta.versionOf(entity)
	g.meta.setVersion(entity, expected+1)

	res := g.db.WithContext(ctx).
		Model(entity).
		Where(clause.Eq{Column: g.column(g.meta.version), Value: expected}).
		Select("*").
		Updates(entity)
	if res.Error != nil {
		g.meta.setVersion(entity, expected)
		return g.writeError(res.Error, "update")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	g.meta.setVersion(entity, expected)
	var count int64
	if err := g.db.WithContext(ctx).Model(new(E)).Where(g.byID(id)).Count(&count).Error; err != nil {
		return errors.Wrap(err, "count")
	}
	if count == 0 {
		return errors.Wrapf(ErrNotFound, "%s %s", g.meta.schema.Type.Name(), id)
	}
	return errors.Wrapf(ErrVersionConflict, "%s %s is not at version %d", g.meta.schema.Type.Name(), id, expected)
}

func (g *Gorm[E]) Patch(ctx context.Context, id uuid.UUID, patch []byte) (*E, error) {
	current, err := g.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := g.meta.mergePatch(current, patch); err != nil {
		return nil, err
	}
	if err := g.Update(ctx, id, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (g *Gorm[E]) Delete(ctx context.Context, id uuid.UUID) error {
	res := g.db.WithContext(ctx).Where(g.byID(id)).Delete(new(E))
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete")
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "%s %s", g.meta.schema.Type.Name(), id)
	}
	return nil
}

// AutoMigrate creates or alters the tables of models.
func AutoMigrate(ctx context.Context, db *gorm.DB, models ...any) error {
	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	return nil
}

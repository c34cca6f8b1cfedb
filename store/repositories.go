package store

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/theplant/helix"
	"github.com/theplant/helix/model"
)

// Repositories groups one repository per entity.
type Repositories struct {
	Users               Repository[model.User]
	Creators            Repository[model.Creator]
	Sources             Repository[model.Source]
	Entities            Repository[model.Entity]
	Indexes             Repository[model.Index]
	EntityRelationships Repository[model.EntityRelationship]
}

func NewGormRepositories(db *gorm.DB, limits helix.Limits) (*Repositories, error) {
	return newRepositories(
		func() (Repository[model.User], error) { return NewGorm[model.User](db, limits) },
		func() (Repository[model.Creator], error) { return NewGorm[model.Creator](db, limits) },
		func() (Repository[model.Source], error) { return NewGorm[model.Source](db, limits) },
		func() (Repository[model.Entity], error) { return NewGorm[model.Entity](db, limits) },
		func() (Repository[model.Index], error) { return NewGorm[model.Index](db, limits) },
		func() (Repository[model.EntityRelationship], error) {
			return NewGorm[model.EntityRelationship](db, limits)
		},
	)
}

func NewMemoryRepositories(limits helix.Limits) (*Repositories, error) {
	return newRepositories(
		func() (Repository[model.User], error) { return NewMemory[model.User](limits) },
		func() (Repository[model.Creator], error) { return NewMemory[model.Creator](limits) },
		func() (Repository[model.Source], error) { return NewMemory[model.Source](limits) },
		func() (Repository[model.Entity], error) { return NewMemory[model.Entity](limits) },
		func() (Repository[model.Index], error) { return NewMemory[model.Index](limits) },
		func() (Repository[model.EntityRelationship], error) {
			return NewMemory[model.EntityRelationship](limits)
		},
	)
}

func newRepositories(
	users func() (Repository[model.User], error),
	creators func() (Repository[model.Creator], error),
	sources func() (Repository[model.Source], error),
	entities func() (Repository[model.Entity], error),
	indexes func() (Repository[model.Index], error),
	relationships func() (Repository[model.EntityRelationship], error),
) (*Repositories, error) {
	var (
		r   Repositories
		err error
	)
	if r.Users, err = users(); err != nil {
		return nil, errors.Wrap(err, "users")
	}
	if r.Creators, err = creators(); err != nil {
		return nil, errors.Wrap(err, "creators")
	}
	if r.Sources, err = sources(); err != nil {
		return nil, errors.Wrap(err, "sources")
	}
	if r.Entities, err = entities(); err != nil {
		return nil, errors.Wrap(err, "entities")
	}
	if r.Indexes, err = indexes(); err != nil {
		return nil, errors.Wrap(err, "indexes")
	}
	if r.EntityRelationships, err = relationships(); err != nil {
		return nil, errors.Wrap(err, "entity relationships")
	}
	return &r, nil
}

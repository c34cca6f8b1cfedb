// Package model holds the persisted entities served by the API.
package model

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Username string    `gorm:"size:100;not null;unique" json:"username" binding:"required,max=100"`
	Email    string    `gorm:"size:255;not null" json:"email" binding:"required,email,max=255"`
	Active   bool      `gorm:"not null" json:"active"`
	Version  int       `gorm:"not null" json:"version"`
}

type Creator struct {
	CreatorID uuid.UUID `gorm:"type:uuid;primaryKey" json:"creator_id"`
	FirstName string    `gorm:"size:100;not null" json:"first_name" binding:"required,max=100"`
	LastName  string    `gorm:"size:100;not null;index" json:"last_name" binding:"required,max=100"`
	SortName  string    `gorm:"size:200" json:"sort_name" binding:"max=200"`
	Version   int       `gorm:"not null" json:"version"`
}

type Source struct {
	SourceID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"source_id"`
	CreatorID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"creator_id" binding:"required"`
	PublicationDate datatypes.Date `gorm:"not null" json:"publication_date" binding:"required"`
	Publisher       string         `gorm:"size:100;not null" json:"publisher" binding:"required,max=100"`
	URL             string         `gorm:"size:255;not null" json:"url" binding:"required,max=255"`
	Branch          Branch         `gorm:"not null" json:"branch" binding:"required,enum"`
	ContentType     ContentType    `gorm:"not null" json:"content_type" binding:"required,enum"`
	Flags           Flag           `gorm:"not null" json:"flags" binding:"required,enum"`
	Format          Format         `gorm:"not null" json:"format" binding:"required,enum"`
	Version         int            `gorm:"not null" json:"version"`
}

type Entity struct {
	EntityID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"entity_id"`
	Name        string    `gorm:"size:100;not null;index" json:"name" binding:"required,max=100"`
	Description string    `json:"description" binding:"max=2000"`
	Type        Category  `gorm:"not null" json:"type" binding:"required,enum"`
	Version     int       `gorm:"not null" json:"version"`
}

type Index struct {
	IndexID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"index_id"`
	EntityID  uuid.UUID `gorm:"type:uuid;not null;index" json:"entity_id" binding:"required"`
	IndexedBy uuid.UUID `gorm:"type:uuid;not null" json:"indexed_by" binding:"required"`
	SourceID  uuid.UUID `gorm:"type:uuid;not null;index" json:"source_id" binding:"required"`
	Location  string    `gorm:"size:255;not null" json:"location" binding:"required,max=255"`
	Subject   Subject   `gorm:"not null" json:"subject" binding:"required,enum"`
	Version   int       `gorm:"not null" json:"version"`
}

type EntityRelationship struct {
	RelationshipID   uuid.UUID        `gorm:"type:uuid;primaryKey" json:"relationship_id"`
	Entity1ID        uuid.UUID        `gorm:"column:entity1_id;type:uuid;not null;index" json:"entity1_id" binding:"required"`
	Entity2ID        uuid.UUID        `gorm:"column:entity2_id;type:uuid;not null;index" json:"entity2_id" binding:"required"`
	RelationshipType RelationshipType `gorm:"not null" json:"relationship_type" binding:"required,enum"`
	Version          int              `gorm:"not null" json:"version"`
}

// All returns a zero value of every entity, in dependency order for migration.
func All() []any {
	return []any{
		&User{},
		&Creator{},
		&Source{},
		&Entity{},
		&Index{},
		&EntityRelationship{},
	}
}

package gormquery

import (
	"cmp"
	"reflect"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func parseStatement(db *gorm.DB) (*gorm.Statement, error) {
	model := cmp.Or(db.Statement.Model, db.Statement.Dest)
	if model == nil {
		return nil, errors.New("model is nil")
	}
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, errors.Wrap(err, "parse schema with db")
	}
	return stmt, nil
}

func applyModel[T any](db *gorm.DB) *gorm.DB {
	var t T
	modelType := reflect.TypeOf(t)
	if modelType.Kind() == reflect.Ptr && reflect.ValueOf(t).IsNil() {
		t = reflect.New(modelType.Elem()).Interface().(T)
	}
	return db.Model(t)
}

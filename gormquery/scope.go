package gormquery

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/theplant/helix"
)

// Scope applies a whole plan to db: conditions, ordering, offset and limit.
func Scope(plan *helix.Plan) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = ScopeWhere(plan.Predicates...)(db)
		db = ScopeOrder(plan.OrderBy...)(db)
		return db.Offset(plan.Offset).Limit(plan.Limit)
	}
}

func ScopeWhere(predicates ...*helix.Predicate) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(predicates) == 0 {
			return db
		}
		stmt, err := parseStatement(db)
		if err != nil {
			db.AddError(err)
			return db
		}
		exprs := make([]clause.Expression, 0, len(predicates))
		for _, p := range predicates {
			expr, err := buildPredicateExpr(stmt, p)
			if err != nil {
				db.AddError(err)
				return db
			}
			exprs = append(exprs, expr)
		}
		return db.Where(combineExprs(exprs...))
	}
}

func ScopeOrder(orders ...helix.Order) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(orders) == 0 {
			return db
		}
		stmt, err := parseStatement(db)
		if err != nil {
			db.AddError(err)
			return db
		}
		columns := make([]clause.OrderByColumn, 0, len(orders))
		for _, o := range orders {
			field, err := lookUpField(stmt, o.Field)
			if err != nil {
				db.AddError(err)
				return db
			}
			columns = append(columns, clause.OrderByColumn{
				Column: clause.Column{Table: clause.CurrentTable, Name: field.DBName},
				Desc:   o.Desc,
			})
		}
		return db.Order(clause.OrderBy{Columns: columns})
	}
}

// ScopeSelect restricts the selected columns to fields plus the primary key.
func ScopeSelect(fields ...*helix.Field) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(fields) == 0 {
			return db
		}
		stmt, err := parseStatement(db)
		if err != nil {
			db.AddError(err)
			return db
		}
		seen := map[string]bool{}
		var columns []clause.Column
		add := func(dbName string) {
			if dbName == "" || seen[dbName] {
				return
			}
			seen[dbName] = true
			columns = append(columns, clause.Column{Table: clause.CurrentTable, Name: dbName})
		}
		for _, f := range fields {
			field, err := lookUpField(stmt, f)
			if err != nil {
				db.AddError(err)
				return db
			}
			add(field.DBName)
		}
		for _, pk := range stmt.Schema.PrimaryFields {
			add(pk.DBName)
		}
		return db.Clauses(clause.Select{Columns: columns})
	}
}

func lookUpField(stmt *gorm.Statement, f *helix.Field) (*schema.Field, error) {
	if f == nil {
		return nil, errors.New("nil field")
	}
	field, ok := stmt.Schema.FieldsByName[f.Name]
	if !ok || field.DBName == "" {
		return nil, errors.Errorf("missing field %q in schema", f.Name)
	}
	return field, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func buildPredicateExpr(stmt *gorm.Statement, p *helix.Predicate) (clause.Expression, error) {
	field, err := lookUpField(stmt, p.Field)
	if err != nil {
		return nil, err
	}

	var column any = clause.Column{Table: clause.CurrentTable, Name: field.DBName}
	if p.Field.Kind == helix.KindString && indirect(field.FieldType).Kind() != reflect.String {
		column = clause.Expr{SQL: fmt.Sprintf("CAST(%s AS TEXT)", stmt.Quote(column))}
	}

	switch p.Operation {
	case helix.OperationEquals:
		return clause.Eq{Column: column, Value: p.Value}, nil
	case helix.OperationNotEquals:
		return clause.Neq{Column: column, Value: p.Value}, nil
	case helix.OperationGreaterThan:
		return clause.Gt{Column: column, Value: p.Value}, nil
	case helix.OperationLessThan:
		return clause.Lt{Column: column, Value: p.Value}, nil
	case helix.OperationContains, helix.OperationDoesNotContain:
		s, ok := p.Value.(string)
		if !ok {
			return nil, errors.Errorf("invalid %s value for field %q", p.Operation, p.Field.Name)
		}
		expr := clause.Expression(clause.Like{Column: column, Value: "%" + likeEscaper.Replace(s) + "%"})
		if p.Operation == helix.OperationDoesNotContain {
			expr = clause.Not(expr)
		}
		return expr, nil
	}
	return nil, errors.Errorf("unknown operation %q for field %q", p.Operation, p.Field.Name)
}

func indirect(rt reflect.Type) reflect.Type {
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	return rt
}

func combineExprs(exprs ...clause.Expression) clause.Expression {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return clause.And(exprs...)
}

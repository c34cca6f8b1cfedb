// Package helix compiles declarative query requests into typed query plans
// and applies them to deferred entity collections.
package helix

// Compile builds the query plan of req for entity type T.
func Compile[T any](req *QueryRequest) (*Plan, error) {
	s, err := SchemaOf[T]()
	if err != nil {
		return nil, err
	}
	return s.Compile(req)
}

// Compile builds the query plan of req. Filters naming an unknown property,
// or carrying a value that does not parse for the property's kind, are
// skipped. An operation that is not legal for the kind fails the whole
// compile with an *UnsupportedOperationError.
func (s *Schema) Compile(req *QueryRequest) (*Plan, error) {
	if req == nil {
		req = NewQueryRequest()
	}

	plan := &Plan{
		Schema: s,
		Offset: max(req.Offset, 0),
		Limit:  req.Size,
	}
	if plan.Limit <= 0 {
		plan.Limit = DefaultSize
	}

	for _, fc := range req.Filters {
		field := s.LookUpField(fc.Property)
		if field == nil {
			continue
		}
		value, ok := field.Parse(fc.Value)
		if !ok {
			continue
		}
		op := ParseOperation(fc.Operation)
		if !field.Kind.Supports(op) {
			return nil, &UnsupportedOperationError{
				Property:  fc.Property,
				Operation: fc.Operation,
				Kind:      field.Kind,
			}
		}
		plan.Predicates = append(plan.Predicates, &Predicate{
			Field:     field,
			Operation: op,
			Value:     value,
		})
	}

	desc := req.SortOrder.Desc()
	sortField := s.LookUpField(req.SortBy)
	if sortField == nil {
		sortField = s.PrimaryField
	}
	if sortField != nil {
		plan.OrderBy = append(plan.OrderBy, Order{Field: sortField, Desc: desc})
	}
	if s.PrimaryField != nil {
		plan.OrderBy = AppendPrimaryOrder(plan.OrderBy, Order{Field: s.PrimaryField})
	}
	return plan, nil
}

// Apply composes plan onto coll in filter, sort, skip, take order.
func Apply[T any](plan *Plan, coll Collection[T]) Collection[T] {
	return coll.
		Where(plan.Predicates...).
		Order(plan.OrderBy...).
		Offset(plan.Offset).
		Limit(plan.Limit)
}

// Query compiles req for T and composes the result onto coll without executing it.
func Query[T any](req *QueryRequest, coll Collection[T]) (Collection[T], error) {
	plan, err := Compile[T](req)
	if err != nil {
		return nil, err
	}
	return Apply(plan, coll), nil
}

package helix

import (
	"strings"

	"github.com/samber/lo"
)

// Kind is the comparison category a field falls into. It decides how a
// filter value is parsed and which operations are legal.
type Kind string

const (
	KindString Kind = "string"
	KindEnum   Kind = "enum"
	KindDate   Kind = "date"
	KindInt    Kind = "int"
	KindGUID   Kind = "guid"
)

type Operation string

const (
	OperationEquals         Operation = "equals"
	OperationNotEquals      Operation = "notequals"
	OperationGreaterThan    Operation = "greaterthan"
	OperationLessThan       Operation = "lessthan"
	OperationContains       Operation = "contains"
	OperationDoesNotContain Operation = "doesnotcontain"
)

var legalOperations = map[Kind][]Operation{
	KindEnum:   {OperationEquals, OperationNotEquals},
	KindDate:   {OperationEquals, OperationGreaterThan, OperationLessThan},
	KindInt:    {OperationEquals, OperationGreaterThan, OperationLessThan, OperationNotEquals},
	KindGUID:   {OperationEquals, OperationNotEquals},
	KindString: {OperationContains, OperationEquals, OperationDoesNotContain, OperationNotEquals},
}

// ParseOperation normalizes an operation name. Matching is case-insensitive.
func ParseOperation(s string) Operation {
	return Operation(strings.ToLower(strings.TrimSpace(s)))
}

func (k Kind) Supports(op Operation) bool {
	return lo.Contains(legalOperations[k], op)
}

// Operations returns the operations legal for k, in table order.
func (k Kind) Operations() []Operation {
	return append([]Operation(nil), legalOperations[k]...)
}

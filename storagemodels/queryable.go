/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

// Operator is a comparison supported by query conditions. Backends
// translate operators into their native filter syntax; the reference
// in-memory backend evaluates them directly.
type Operator string

const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "<>"
	OpGreaterThan    Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLessThan       Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpContains       Operator = "contains"
	OpBeginsWith     Operator = "begins_with"
)

// Condition compares one item field, identified by its JSON name, against
// a constant. Field identifiers are deliberately explicit; there is no
// expression-tree rewriting between caller and storage shapes.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Order sorts the result set by one field. Multiple orders apply in
// sequence, earlier entries taking precedence.
type Order struct {
	Field      string
	Descending bool
}

// Queryable is a deferred predicate/order/paging pipeline executed by a
// backend. A fresh Queryable from Backend.CreateQueryable is already scoped
// to one type name, and backends always exclude soft-deleted items before
// applying any caller conditions.
type Queryable struct {
	TypeName   string
	Conditions []Condition
	Orders     []Order

	// Skip and Take apply after filtering and ordering. Take <= 0 means
	// no limit.
	Skip int
	Take int
}

// Where appends a condition.
func (q *Queryable) Where(field string, op Operator, value any) *Queryable {
	q.Conditions = append(q.Conditions, Condition{Field: field, Op: op, Value: value})
	return q
}

// OrderBy appends an ascending order.
func (q *Queryable) OrderBy(field string) *Queryable {
	q.Orders = append(q.Orders, Order{Field: field})
	return q
}

// OrderByDescending appends a descending order.
func (q *Queryable) OrderByDescending(field string) *Queryable {
	q.Orders = append(q.Orders, Order{Field: field, Descending: true})
	return q
}

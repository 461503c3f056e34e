package database

import (
	"fmt"

	"gorm.io/gorm"
)

// QueryOption narrows a repository lookup.
type QueryOption func(Query) Query

// Query holds conditions, ordering and a limit for store lookups.
type Query struct {
	conditions []condition
	orders     []order
	limit      int
}

type condition struct {
	field string
	value any
	in    bool
}

type order struct {
	field     string
	ascending bool
}

// BuildQuery creates a Query from a set of options.
func BuildQuery(options ...QueryOption) Query {
	q := Query{}
	for _, opt := range options {
		q = opt(q)
	}
	return q
}

// WithCondition adds a field = value condition.
func WithCondition(field string, value any) QueryOption {
	return func(q Query) Query {
		q.conditions = append(q.conditions, condition{field: field, value: value})
		return q
	}
}

// WithConditionIn adds a field IN (values) condition.
func WithConditionIn(field string, values any) QueryOption {
	return func(q Query) Query {
		q.conditions = append(q.conditions, condition{field: field, value: values, in: true})
		return q
	}
}

// WithOrderAsc adds ascending ordering on a field.
func WithOrderAsc(field string) QueryOption {
	return func(q Query) Query {
		q.orders = append(q.orders, order{field: field, ascending: true})
		return q
	}
}

// WithOrderDesc adds descending ordering on a field.
func WithOrderDesc(field string) QueryOption {
	return func(q Query) Query {
		q.orders = append(q.orders, order{field: field})
		return q
	}
}

// WithLimit caps the number of results. Zero means no limit.
func WithLimit(n int) QueryOption {
	return func(q Query) Query {
		q.limit = n
		return q
	}
}

// ApplyOptions applies the options to a GORM session.
func ApplyOptions(db *gorm.DB, options ...QueryOption) *gorm.DB {
	q := BuildQuery(options...)

	for _, c := range q.conditions {
		if c.in {
			db = db.Where(fmt.Sprintf("%s IN ?", c.field), c.value)
		} else {
			db = db.Where(fmt.Sprintf("%s = ?", c.field), c.value)
		}
	}

	for _, o := range q.orders {
		dir := "ASC"
		if !o.ascending {
			dir = "DESC"
		}
		db = db.Order(fmt.Sprintf("%s %s", o.field, dir))
	}

	if q.limit > 0 {
		db = db.Limit(q.limit)
	}
	return db
}

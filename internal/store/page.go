package store

import "github.com/uptrace/bun"

// Scope narrows an export source, e.g. excluding ids.
type Scope func(*bun.SelectQuery) *bun.SelectQuery

// Page selects one keyset batch ordered by id.
type Page struct {
	// After restricts the batch to ids greater than *After.
	After  *int64
	Offset int
	Limit  int
	Scope  Scope
}

// Apply adds the page's filter, ordering and bounds to a model query.
func (p Page) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	if p.Scope != nil {
		q = p.Scope(q)
	}
	if p.After != nil {
		q = q.Where("?TableAlias.id > ?", *p.After)
	}
	q = q.OrderExpr("?TableAlias.id ASC")
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	return q
}

// ExcludeIDs is a Scope dropping the given ids.
func ExcludeIDs(ids ...int64) Scope {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if len(ids) == 0 {
			return q
		}
		return q.Where("?TableAlias.id NOT IN (?)", bun.In(ids))
	}
}

// OnlyIDs is a Scope keeping only the given ids.
func OnlyIDs(ids ...int64) Scope {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.id IN (?)", bun.In(ids))
	}
}

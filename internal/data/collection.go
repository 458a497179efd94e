package data

import (
	"slices"
)

// Entity is anything stored in a Collection.
type Entity interface {
	GetID() string
}

// Collection is an ordered in-memory table of value records. It is not safe
// for concurrent use; MemoryStore serializes access to it.
type Collection[T Entity] struct {
	items []T
}

// NewCollection returns an empty collection.
func NewCollection[T Entity]() *Collection[T] {
	return &Collection[T]{}
}

// Insert appends e.
func (c *Collection[T]) Insert(e T) {
	c.items = append(c.items, e)
}

// Concat appends every entity in order.
func (c *Collection[T]) Concat(es ...T) {
	c.items = append(c.items, es...)
}

// Update replaces the record sharing e's id. It reports false and changes
// nothing when no such record exists.
func (c *Collection[T]) Update(e T) bool {
	for i := range c.items {
		if c.items[i].GetID() == e.GetID() {
			c.items[i] = e
			return true
		}
	}
	return false
}

// Find returns the first record matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	for _, e := range c.items {
		if pred(e) {
			return e, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of records.
func (c *Collection[T]) Len() int { return len(c.items) }

// Query narrows a Select call.
type Query[T Entity] struct {
	// Where filters records; nil keeps all.
	Where func(T) bool
	// Less orders the result with a stable sort; nil keeps insertion order.
	Less func(a, b T) int
	// Limit keeps only the last Limit records after sorting when positive.
	Limit int
}

// Select returns a fresh slice of the records matching q.
func (c *Collection[T]) Select(q Query[T]) []T {
	out := make([]T, 0)
	for _, e := range c.items {
		if q.Where == nil || q.Where(e) {
			out = append(out, e)
		}
	}
	if q.Less != nil {
		slices.SortStableFunc(out, q.Less)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[len(out)-q.Limit:]
	}
	return out
}

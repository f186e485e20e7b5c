package admin

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("admin: record not found")
	ErrDuplicateID       = errors.New("admin: duplicate record id")
	ErrUnknownCollection = errors.New("admin: unknown collection")
	ErrUnknownAction     = errors.New("admin: unknown action")
)

// Collection keeps records in insertion order with an id index.
// It is not safe for concurrent use; Store guards it.
type Collection[T Identifiable] struct {
	items []T
	index map[string]int
}

// NewCollection builds a collection from items, rejecting duplicate ids.
func NewCollection[T Identifiable](items []T) (*Collection[T], error) {
	c := &Collection[T]{
		items: make([]T, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, item := range items {
		if err := c.Append(item); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// All returns a copy of the records in order.
func (c *Collection[T]) All() []T {
	return append([]T(nil), c.items...)
}

// Len reports how many records are stored.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// Get looks a record up by id.
func (c *Collection[T]) Get(id string) (T, bool) {
	idx, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[idx], true
}

// Append adds a record at the end.
func (c *Collection[T]) Append(item T) error {
	key := item.Key()
	if key == "" {
		return fmt.Errorf("admin: record id is required")
	}
	if _, exists := c.index[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, key)
	}
	c.index[key] = len(c.items)
	c.items = append(c.items, item)
	return nil
}

// Replace swaps the record with id for fn(record). The id must not change.
func (c *Collection[T]) Replace(id string, fn func(T) T) (T, error) {
	idx, ok := c.index[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := fn(c.items[idx])
	if next.Key() != id {
		var zero T
		return zero, fmt.Errorf("admin: replace must keep id %s", id)
	}
	c.items[idx] = next
	return next, nil
}

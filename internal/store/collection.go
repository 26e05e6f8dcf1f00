// Package store keeps one owner's working copy of every collection in
// memory and pushes changes through the sync gateway. Reads come from the
// local snapshot; mutations validate locally before any network call.
package store

import (
	"context"
	"sort"
	"sync"

	"salone/internal/core"
	"salone/internal/gateway"
)

// Collection is the in-memory snapshot of one entity collection, kept in
// the order given by less.
//
// Mutations follow a uniform policy: inserts and updates wait for the
// gateway and apply the server's record; removes apply optimistically and
// roll the record back if the gateway rejects the delete.
type Collection[T core.Entity] struct {
	remote gateway.Collection[T]
	less   func(a, b T) bool

	mu    sync.Mutex
	items []T
}

func NewCollection[T core.Entity](remote gateway.Collection[T], less func(a, b T) bool) *Collection[T] {
	return &Collection[T]{remote: remote, less: less}
}

// FetchAll replaces the snapshot with the gateway's current contents.
// When fetches overlap, whichever completes last determines the snapshot;
// a failed fetch leaves the existing snapshot untouched.
func (c *Collection[T]) FetchAll(ctx context.Context, ownerID string) error {
	items, err := c.remote.List(ctx, ownerID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	sort.SliceStable(c.items, func(i, j int) bool { return c.less(c.items[i], c.items[j]) })
	return nil
}

// Add validates the record, inserts it through the gateway, and on
// success places the stored record (with its generated identifier) into
// the snapshot. Nothing changes locally until the gateway confirms.
func (c *Collection[T]) Add(ctx context.Context, record T) (T, error) {
	var zero T
	if err := record.Validate(); err != nil {
		return zero, err
	}

	saved, err := c.remote.Insert(ctx, record)
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.insertSorted(saved)
	return saved, nil
}

// Update validates the record, requires it to exist in the snapshot, and
// applies the gateway's returned representation on success.
func (c *Collection[T]) Update(ctx context.Context, record T) (T, error) {
	var zero T
	if err := record.Validate(); err != nil {
		return zero, err
	}

	c.mu.Lock()
	idx := c.indexOf(record.EntityID())
	c.mu.Unlock()
	if idx < 0 {
		return zero, core.ErrNotFound
	}

	saved, err := c.remote.Update(ctx, record)
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if idx = c.indexOf(saved.EntityID()); idx >= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	}
	c.insertSorted(saved)
	return saved, nil
}

// Remove drops the record from the snapshot immediately, then asks the
// gateway to delete it. If the gateway fails, the identical record is
// restored at its sort position.
func (c *Collection[T]) Remove(ctx context.Context, ownerID string, id int64) error {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return core.ErrNotFound
	}
	removed := c.items[idx]
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	c.mu.Unlock()

	if err := c.remote.Delete(ctx, ownerID, id); err != nil {
		c.mu.Lock()
		c.insertSorted(removed)
		c.mu.Unlock()
		return err
	}
	return nil
}

// Snapshot returns a copy of the current items; callers may hold it
// across later mutations.
func (c *Collection[T]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the snapshot record with the given identifier.
func (c *Collection[T]) Get(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if idx := c.indexOf(id); idx >= 0 {
		return c.items[idx], true
	}
	return zero, false
}

func (c *Collection[T]) indexOf(id int64) int {
	for i, it := range c.items {
		if it.EntityID() == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) insertSorted(record T) {
	pos := sort.Search(len(c.items), func(i int) bool { return c.less(record, c.items[i]) })
	c.items = append(c.items, record)
	copy(c.items[pos+1:], c.items[pos:])
	c.items[pos] = record
}

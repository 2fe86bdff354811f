package style

import "slices"

type keyed interface {
	key() string
}

// collection owns items by id and keeps two views over the same set of ids:
// the order in which they were added and ascending id order. Both views hold
// keys only.
type collection[T keyed] struct {
	items  map[string]T
	order  []string
	sorted []string
}

func newCollection[T keyed]() collection[T] {
	return collection[T]{items: make(map[string]T)}
}

func (c *collection[T]) len() int { return len(c.order) }

func (c *collection[T]) has(id string) bool {
	_, ok := c.items[id]
	return ok
}

func (c *collection[T]) get(id string) (T, bool) {
	item, ok := c.items[id]
	return item, ok
}

// position returns the insertion-order index of id, or -1.
func (c *collection[T]) position(id string) int {
	if !c.has(id) {
		return -1
	}
	return slices.Index(c.order, id)
}

// insert adds item at position at of the insertion order, or at the end when
// at is negative. The caller guarantees the id is not present.
func (c *collection[T]) insert(item T, at int) {
	id := item.key()
	c.items[id] = item
	if at < 0 || at >= len(c.order) {
		c.order = append(c.order, id)
	} else {
		c.order = slices.Insert(c.order, at, id)
	}
	i, _ := slices.BinarySearch(c.sorted, id)
	c.sorted = slices.Insert(c.sorted, i, id)
}

func (c *collection[T]) remove(id string) (T, bool) {
	item, ok := c.items[id]
	if !ok {
		return item, false
	}
	delete(c.items, id)
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	if i, found := slices.BinarySearch(c.sorted, id); found {
		c.sorted = slices.Delete(c.sorted, i, i+1)
	}
	return item, true
}

func (c *collection[T]) inOrder() []T {
	return c.resolve(c.order)
}

func (c *collection[T]) inKeyOrder() []T {
	return c.resolve(c.sorted)
}

func (c *collection[T]) resolve(ids []string) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.items[id])
	}
	return out
}

func (c *collection[T]) each(fn func(T) bool) {
	for _, id := range c.order {
		if !fn(c.items[id]) {
			return
		}
	}
}

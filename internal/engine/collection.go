package engine

import "github.com/tair/movie-favorites/internal/favorite/domain"

// collection is an insertion-ordered set of favorites keyed by movie id.
type collection struct {
	byID  map[int64]domain.Favorite
	order []int64
}

// newCollection keeps the first occurrence of every movie id.
func newCollection(favorites []domain.Favorite) *collection {
	c := &collection{
		byID:  make(map[int64]domain.Favorite, len(favorites)),
		order: make([]int64, 0, len(favorites)),
	}
	for _, f := range favorites {
		if _, dup := c.byID[f.MovieID]; dup {
			continue
		}
		c.byID[f.MovieID] = f
		c.order = append(c.order, f.MovieID)
	}
	return c
}

func (c *collection) has(id int64) bool {
	_, ok := c.byID[id]
	return ok
}

func (c *collection) get(id int64) (domain.Favorite, bool) {
	f, ok := c.byID[id]
	return f, ok
}

func (c *collection) len() int {
	return len(c.order)
}

// list returns a copy in collection order.
func (c *collection) list() []domain.Favorite {
	out := make([]domain.Favorite, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *collection) prepend(f domain.Favorite) {
	c.byID[f.MovieID] = f
	c.order = append([]int64{f.MovieID}, c.order...)
}

// put replaces an existing record in place.
func (c *collection) put(f domain.Favorite) {
	c.byID[f.MovieID] = f
}

func (c *collection) remove(id int64) {
	if !c.has(id) {
		return
	}
	delete(c.byID, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

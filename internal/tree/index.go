package tree

import (
	"sync"

	"reqtree/internal/model"
)

// Entry is one row of the flat lookup.
type Entry struct {
	Item     *model.Item
	ParentID *string
}

// Index maps item id to its item and parent. It is derived, never edited.
type Index map[string]Entry

// Build flattens roots depth-first into an Index.
func Build(roots []*model.Item) Index {
	idx := Index{}
	var walk func(xs []*model.Item, parent *model.Item)
	walk = func(xs []*model.Item, parent *model.Item) {
		for _, it := range xs {
			if it == nil {
				continue
			}
			var pid *string
			if parent != nil {
				id := parent.ID
				pid = &id
			}
			idx[it.ID] = Entry{Item: it, ParentID: pid}
			if it.IsFolder() {
				walk(it.Children, it)
			}
		}
	}
	walk(roots, nil)
	return idx
}

func (idx Index) Lookup(id string) (Entry, bool) {
	e, ok := idx[id]
	return e, ok && e.Item != nil
}

// Siblings returns the children of parentID ("" for root) of the given kind, in order.
func (idx Index) Siblings(t *Tree, parentID string, kind model.Kind) []*model.Item {
	var list []*model.Item
	if parentID == "" {
		if t != nil {
			list = t.Roots
		}
	} else if e, ok := idx.Lookup(parentID); ok && e.Item.IsFolder() {
		list = e.Item.Children
	}
	var out []*model.Item
	for _, it := range list {
		if it != nil && it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

// Cache keeps the Index of the most recently seen Tree. It rebuilds whenever the
// Tree pointer changes.
type Cache struct {
	mu  sync.Mutex
	src *Tree
	idx Index
}

func (c *Cache) Get(t *Tree) Index {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idx != nil && c.src == t {
		return c.idx
	}
	c.src = t
	if t == nil {
		c.idx = Index{}
	} else {
		c.idx = Build(t.Roots)
	}
	return c.idx
}

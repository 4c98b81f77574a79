package tree

import (
	"sort"
	"strings"

	"reqtree/internal/model"
)

// Tree is an authoritative snapshot of one workspace's collection tree.
//
// Published snapshots are never mutated: callers Clone, mutate the clone, and publish
// the new pointer. Index caches key on that pointer.
type Tree struct {
	WorkspaceID string        `json:"workspaceId" yaml:"workspaceId"`
	Roots       []*model.Item `json:"roots" yaml:"roots"`
}

// New nests a flat list of items into a Tree. Items whose parent is missing are
// promoted to the root so nothing is orphaned.
func New(workspaceID string, flat []model.Item) *Tree {
	byID := make(map[string]*model.Item, len(flat))
	order := make([]*model.Item, 0, len(flat))
	for i := range flat {
		it := flat[i]
		it.Children = nil
		p := &it
		byID[it.ID] = p
		order = append(order, p)
	}
	t := &Tree{WorkspaceID: workspaceID}
	for _, it := range order {
		pid := it.Parent()
		if pid == "" {
			t.Roots = append(t.Roots, it)
			continue
		}
		parent, ok := byID[pid]
		if !ok || !parent.IsFolder() {
			it.ParentID = nil
			t.Roots = append(t.Roots, it)
			continue
		}
		parent.Children = append(parent.Children, it)
	}
	t.Normalize()
	return t
}

// Clone returns a deep copy of t.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	out := &Tree{WorkspaceID: t.WorkspaceID}
	out.Roots = cloneList(t.Roots)
	return out
}

func cloneList(xs []*model.Item) []*model.Item {
	if xs == nil {
		return nil
	}
	out := make([]*model.Item, 0, len(xs))
	for _, it := range xs {
		if it == nil {
			continue
		}
		cp := *it
		if it.ParentID != nil {
			pid := *it.ParentID
			cp.ParentID = &pid
		}
		cp.Children = cloneList(it.Children)
		out = append(out, &cp)
	}
	return out
}

// Walk visits every item depth-first in display order. Returning false from fn
// skips that item's children.
func (t *Tree) Walk(fn func(it *model.Item, depth int) bool) {
	if t == nil {
		return
	}
	var walk func(xs []*model.Item, depth int)
	walk = func(xs []*model.Item, depth int) {
		for _, it := range xs {
			if !fn(it, depth) {
				continue
			}
			if it.IsFolder() {
				walk(it.Children, depth+1)
			}
		}
	}
	walk(t.Roots, 0)
}

func (t *Tree) Count() int {
	n := 0
	t.Walk(func(*model.Item, int) bool {
		n++
		return true
	})
	return n
}

// Normalize orders every sibling list folders-first, each kind by SortOrder, then
// renumbers SortOrder densely from list position.
func (t *Tree) Normalize() {
	if t == nil {
		return
	}
	t.Roots = normalizeList(t.Roots)
	t.Walk(func(it *model.Item, _ int) bool {
		if it.IsFolder() {
			it.Children = normalizeList(it.Children)
		}
		return true
	})
}

func normalizeList(xs []*model.Item) []*model.Item {
	folders, leaves := splitKinds(xs)
	sortItems(folders)
	sortItems(leaves)
	return joinKinds(folders, leaves)
}

func sortItems(items []*model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return compareItems(items[i], items[j]) < 0
	})
}

// compareItems orders by SortOrder, then CreatedAt, then ID so equal sort orders
// still produce a stable order between renders.
func compareItems(a, b *model.Item) int {
	if a.SortOrder != b.SortOrder {
		if a.SortOrder < b.SortOrder {
			return -1
		}
		return 1
	}
	if a.CreatedAt.Before(b.CreatedAt) {
		return -1
	}
	if a.CreatedAt.After(b.CreatedAt) {
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}

func splitKinds(xs []*model.Item) (folders, leaves []*model.Item) {
	for _, it := range xs {
		if it == nil {
			continue
		}
		if it.IsFolder() {
			folders = append(folders, it)
		} else {
			leaves = append(leaves, it)
		}
	}
	return folders, leaves
}

// joinKinds concatenates the two groups and renumbers each one from zero.
func joinKinds(folders, leaves []*model.Item) []*model.Item {
	out := make([]*model.Item, 0, len(folders)+len(leaves))
	for i, f := range folders {
		f.SortOrder = i
		out = append(out, f)
	}
	for i, l := range leaves {
		l.SortOrder = i
		out = append(out, l)
	}
	return out
}

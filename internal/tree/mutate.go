package tree

import (
	"errors"
	"fmt"

	"reqtree/internal/model"
)

var (
	ErrCycle         = errors.New("move would make a folder its own ancestor")
	ErrKindMismatch  = errors.New("item kind does not match operation")
	ErrOrderMismatch = errors.New("ordered ids do not match the sibling set")
	ErrNotFolder     = errors.New("target is not a folder")
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// MoveFolder re-parents a folder. parentID nil means root. sortOrder nil appends
// after the existing folders of the new parent.
func (t *Tree) MoveFolder(folderID string, parentID *string, sortOrder *int) error {
	idx := Build(t.Roots)
	e, ok := idx.Lookup(folderID)
	if !ok {
		return NotFoundError{Kind: "folder", ID: folderID}
	}
	if !e.Item.IsFolder() {
		return ErrKindMismatch
	}
	pid := model.ParentPtr(deref(parentID))
	if pid != nil {
		p, ok := idx.Lookup(*pid)
		if !ok {
			return NotFoundError{Kind: "folder", ID: *pid}
		}
		if !p.Item.IsFolder() {
			return ErrNotFolder
		}
		if WouldCycle(folderID, *pid, idx) {
			return ErrCycle
		}
	}
	at := -1
	if sortOrder != nil {
		at = *sortOrder
	}
	it := t.detach(e, idx)
	return t.insert(it, pid, at, idx)
}

// MoveLeaf re-parents a leaf to the end of folderID's leaves (nil means root).
func (t *Tree) MoveLeaf(leafID string, folderID *string) error {
	idx := Build(t.Roots)
	e, ok := idx.Lookup(leafID)
	if !ok {
		return NotFoundError{Kind: "leaf", ID: leafID}
	}
	if !e.Item.IsLeaf() {
		return ErrKindMismatch
	}
	fid := model.ParentPtr(deref(folderID))
	if fid != nil {
		f, ok := idx.Lookup(*fid)
		if !ok {
			return NotFoundError{Kind: "folder", ID: *fid}
		}
		if !f.Item.IsFolder() {
			return ErrNotFolder
		}
	}
	it := t.detach(e, idx)
	return t.insert(it, fid, -1, idx)
}

// Reorder replaces the order of one kind's siblings under a parent. orderedIDs must
// be exactly that sibling set.
func (t *Tree) Reorder(parentID *string, kind model.Kind, orderedIDs []string) error {
	idx := Build(t.Roots)
	list, err := t.childList(deref(parentID), idx)
	if err != nil {
		return err
	}
	folders, leaves := splitKinds(*list)
	group := folders
	if kind == model.KindLeaf {
		group = leaves
	}
	if len(group) != len(orderedIDs) {
		return ErrOrderMismatch
	}
	byID := make(map[string]*model.Item, len(group))
	for _, it := range group {
		byID[it.ID] = it
	}
	next := make([]*model.Item, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		it, ok := byID[id]
		if !ok {
			return ErrOrderMismatch
		}
		delete(byID, id)
		next = append(next, it)
	}
	if kind == model.KindLeaf {
		*list = joinKinds(folders, next)
	} else {
		*list = joinKinds(next, leaves)
	}
	return nil
}

// ParentOfAll returns the common parent of ids, or ok=false when they are not all
// siblings of the same kind.
func (t *Tree) ParentOfAll(ids []string) (parent *string, kind model.Kind, ok bool) {
	if len(ids) == 0 {
		return nil, "", false
	}
	idx := Build(t.Roots)
	for i, id := range ids {
		e, found := idx.Lookup(id)
		if !found {
			return nil, "", false
		}
		if i == 0 {
			parent, kind = e.ParentID, e.Item.Kind
			continue
		}
		if e.Item.Kind != kind || !model.SameParent(parent, e.ParentID) {
			return nil, "", false
		}
	}
	return parent, kind, true
}

func (t *Tree) childList(parentID string, idx Index) (*[]*model.Item, error) {
	if parentID == "" {
		return &t.Roots, nil
	}
	e, ok := idx.Lookup(parentID)
	if !ok {
		return nil, NotFoundError{Kind: "folder", ID: parentID}
	}
	if !e.Item.IsFolder() {
		return nil, ErrNotFolder
	}
	return &e.Item.Children, nil
}

func (t *Tree) detach(e Entry, idx Index) *model.Item {
	list, err := t.childList(deref(e.ParentID), idx)
	if err != nil {
		return e.Item
	}
	rest := make([]*model.Item, 0, len(*list))
	for _, it := range *list {
		if it.ID != e.Item.ID {
			rest = append(rest, it)
		}
	}
	folders, leaves := splitKinds(rest)
	*list = joinKinds(folders, leaves)
	return e.Item
}

func (t *Tree) insert(it *model.Item, parentID *string, at int, idx Index) error {
	list, err := t.childList(deref(parentID), idx)
	if err != nil {
		return err
	}
	folders, leaves := splitKinds(*list)
	group := &leaves
	if it.IsFolder() {
		group = &folders
	}
	if at < 0 || at > len(*group) {
		at = len(*group)
	}
	next := make([]*model.Item, 0, len(*group)+1)
	next = append(next, (*group)[:at]...)
	next = append(next, it)
	next = append(next, (*group)[at:]...)
	*group = next

	it.ParentID = model.ParentPtr(deref(parentID))
	*list = joinKinds(folders, leaves)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package dragdrop

import (
	"reqtree/internal/model"
	"reqtree/internal/tree"
)

// Reasons a drop resolves to nothing. They double as metric labels.
const (
	reasonUnknownSubject = "unknown_subject"
	reasonAlreadyRoot    = "already_root"
	reasonNoDecision     = "no_decision"
	reasonSelfDrop       = "self_drop"
	reasonUnknownTarget  = "unknown_target"
	reasonInsideLeaf     = "inside_leaf"
	reasonCycle          = "cycle"
	reasonLeafBefore     = "leaf_before_folder"
	reasonSameParent     = "same_parent"
	reasonUnchanged      = "unchanged_order"
)

// Resolve turns the captured drag state into at most one Command.
func Resolve(snap Snapshot, t *tree.Tree, idx tree.Index) (Command, bool) {
	cmd, reason := resolve(snap, t, idx)
	return cmd, reason == ""
}

// Explain returns nil when snap resolves to a Command, or an IllegalMoveError naming
// why it does not.
func Explain(snap Snapshot, t *tree.Tree, idx tree.Index) error {
	if _, reason := resolve(snap, t, idx); reason != "" {
		return IllegalMoveError{Reason: reason}
	}
	return nil
}

func resolve(snap Snapshot, t *tree.Tree, idx tree.Index) (Command, string) {
	subj, ok := idx.Lookup(snap.SubjectID)
	if !ok {
		return Command{}, reasonUnknownSubject
	}

	if snap.Position == PositionRoot {
		if subj.ParentID == nil {
			return Command{}, reasonAlreadyRoot
		}
		return reparent(subj, nil, nil, idx)
	}

	if snap.Position == PositionNone || snap.HoveredID == "" {
		return Command{}, reasonNoDecision
	}
	if snap.HoveredID == snap.SubjectID {
		return Command{}, reasonSelfDrop
	}
	target, ok := idx.Lookup(snap.HoveredID)
	if !ok {
		return Command{}, reasonUnknownTarget
	}

	switch snap.Position {
	case PositionInside:
		if !target.Item.IsFolder() {
			return Command{}, reasonInsideLeaf
		}
		return reparent(subj, &target.Item.ID, nil, idx)

	case PositionBefore, PositionAfter:
		if subj.Item.IsLeaf() && target.Item.IsFolder() && snap.Position == PositionBefore {
			return Command{}, reasonLeafBefore
		}
		if !model.SameParent(subj.ParentID, target.ParentID) {
			var at *int
			if subj.Item.IsFolder() && target.Item.IsFolder() {
				pos := indexOf(idx.Siblings(t, derefStr(target.ParentID), model.KindFolder), target.Item.ID)
				if snap.Position == PositionAfter {
					pos++
				}
				at = &pos
			}
			return reparent(subj, target.ParentID, at, idx)
		}
		return reorder(subj, target, snap.Position, t, idx)
	}
	return Command{}, reasonNoDecision
}

func reparent(subj tree.Entry, parentID *string, at *int, idx tree.Index) (Command, string) {
	pid := derefStr(parentID)
	if subj.Item.IsFolder() {
		if tree.WouldCycle(subj.Item.ID, pid, idx) {
			return Command{}, reasonCycle
		}
		if model.SameParent(subj.ParentID, parentID) && at == nil {
			return Command{}, reasonSameParent
		}
		cmd := newCommand(CommandMoveFolder, subj.Item.ID, parentID)
		cmd.SortOrder = at
		return cmd, ""
	}
	if model.SameParent(subj.ParentID, parentID) {
		return Command{}, reasonSameParent
	}
	return newCommand(CommandMoveLeaf, subj.Item.ID, parentID), ""
}

func reorder(subj, target tree.Entry, pos Position, t *tree.Tree, idx tree.Index) (Command, string) {
	parent := derefStr(subj.ParentID)
	sibs := idx.Siblings(t, parent, subj.Item.Kind)
	current := make([]string, 0, len(sibs))
	rest := make([]string, 0, len(sibs))
	for _, it := range sibs {
		current = append(current, it.ID)
		if it.ID != subj.Item.ID {
			rest = append(rest, it.ID)
		}
	}

	at := indexOfID(rest, target.Item.ID)
	switch {
	case at < 0 && subj.Item.IsFolder():
		// Hovering a leaf: folders sit above leaves, so the nearest folder slot is the last.
		at = len(rest)
	case at < 0:
		// A leaf "after" a folder row lands first among the leaves.
		at = 0
	case pos == PositionAfter:
		at++
	}

	ordered := make([]string, 0, len(rest)+1)
	ordered = append(ordered, rest[:at]...)
	ordered = append(ordered, subj.Item.ID)
	ordered = append(ordered, rest[at:]...)
	if equalStrings(ordered, current) {
		return Command{}, reasonUnchanged
	}

	kind := CommandReorderLeaves
	if subj.Item.IsFolder() {
		kind = CommandReorderFolders
	}
	cmd := newCommand(kind, subj.Item.ID, subj.ParentID)
	cmd.OrderedIDs = ordered
	return cmd, ""
}

func indexOf(xs []*model.Item, id string) int {
	for i, x := range xs {
		if x.ID == id {
			return i
		}
	}
	return -1
}

func indexOfID(xs []string, id string) int {
	for i, x := range xs {
		if x == id {
			return i
		}
	}
	return -1
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package tree

// IsDescendant reports whether nodeID sits anywhere below ancestorCandidateID.
// Leaves and unknown ids have no descendants.
func IsDescendant(ancestorCandidateID, nodeID string, idx Index) bool {
	e, ok := idx.Lookup(ancestorCandidateID)
	if !ok || !e.Item.IsFolder() || nodeID == "" {
		return false
	}
	stack := append([]*Entry{}, &e)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, ch := range cur.Item.Children {
			if ch == nil {
				continue
			}
			if ch.ID == nodeID {
				return true
			}
			if ch.IsFolder() {
				stack = append(stack, &Entry{Item: ch})
			}
		}
	}
	return false
}

// WouldCycle reports whether placing folderID under parentID would make the folder
// its own ancestor. A nil/empty parent is the root and never cycles.
func WouldCycle(folderID, parentID string, idx Index) bool {
	if parentID == "" {
		return false
	}
	return folderID == parentID || IsDescendant(folderID, parentID, idx)
}

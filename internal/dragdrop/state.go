package dragdrop

import (
	"sync"

	"reqtree/internal/tree"
)

// State owns the authoritative tree the sidebar renders and its derived Index.
type State struct {
	mu    sync.RWMutex
	tree  *tree.Tree
	cache tree.Cache
}

func NewState(t *tree.Tree) *State {
	if t == nil {
		t = &tree.Tree{}
	}
	return &State{tree: t}
}

func (s *State) Tree() *tree.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

func (s *State) Index() tree.Index {
	_, idx := s.Snapshot()
	return idx
}

// Snapshot returns the current tree and the Index built from that same tree.
func (s *State) Snapshot() (*tree.Tree, tree.Index) {
	s.mu.RLock()
	t := s.tree
	s.mu.RUnlock()
	return t, s.cache.Get(t)
}

// Publish replaces the tree, e.g. after an authoritative fetch.
func (s *State) Publish(t *tree.Tree) {
	if t == nil {
		return
	}
	s.mu.Lock()
	s.tree = t
	s.mu.Unlock()
}

// swap publishes next only if the current tree is still expect.
func (s *State) swap(expect, next *tree.Tree) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree != expect {
		return false
	}
	s.tree = next
	return true
}

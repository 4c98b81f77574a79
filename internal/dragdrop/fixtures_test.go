package dragdrop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cenkalti/backoff/v4"

	"reqtree/internal/model"
	"reqtree/internal/tree"
)

func strPtr(s string) *string { return &s }

func folder(id string, parent *string, order int) model.Item {
	return model.Item{ID: id, Kind: model.KindFolder, Name: id, ParentID: parent, SortOrder: order, WorkspaceID: "ws-1"}
}

func leaf(id string, parent *string, order int) model.Item {
	return model.Item{ID: id, Kind: model.KindLeaf, Name: id, ParentID: parent, SortOrder: order, WorkspaceID: "ws-1", Method: "GET"}
}

// at returns a pointer box whose center sits at frac of a unit-height row at top.
func at(top, frac float64) Rect {
	return Rect{Top: top + frac - 0.5, Height: 1}
}

func over(id string, top float64) Hover {
	return Hover{ID: id, Rect: Rect{Top: top, Height: 1}}
}

type row struct {
	ID     string
	Parent string
	Order  int
}

// layout flattens a tree into (id, parent, order) rows in display order.
func layout(t *tree.Tree) []row {
	var out []row
	t.Walk(func(it *model.Item, _ int) bool {
		out = append(out, row{ID: it.ID, Parent: it.Parent(), Order: it.SortOrder})
		return true
	})
	return out
}

func childIDs(t *tree.Tree, parentID string) []string {
	var list []*model.Item
	if parentID == "" {
		list = t.Roots
	} else if e, ok := tree.Build(t.Roots).Lookup(parentID); ok {
		list = e.Item.Children
	}
	out := make([]string, 0, len(list))
	for _, it := range list {
		out = append(out, it.ID)
	}
	return out
}

// fakeServer is an in-memory Remote + Source that applies accepted commands to its
// own copy of the tree.
type fakeServer struct {
	mu      sync.Mutex
	tree    *tree.Tree
	fail    map[CommandKind]error
	calls   []string
	fetches int
	gate    chan struct{}
}

func newFakeServer(t *tree.Tree) *fakeServer {
	return &fakeServer{tree: t.Clone(), fail: map[CommandKind]error{}}
}

func (s *fakeServer) record(kind CommandKind, detail string) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fmt.Sprintf("%s %s", kind, detail))
	return s.fail[kind]
}

func (s *fakeServer) MoveFolder(_ context.Context, folderID string, parentID *string, sortOrder *int) error {
	if err := s.record(CommandMoveFolder, folderID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.MoveFolder(folderID, parentID, sortOrder)
}

func (s *fakeServer) MoveLeaf(_ context.Context, leafID string, folderID *string) error {
	if err := s.record(CommandMoveLeaf, leafID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.MoveLeaf(leafID, folderID)
}

func (s *fakeServer) reorder(kind CommandKind, ids []string) error {
	if err := s.record(kind, fmt.Sprint(ids)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, k, ok := s.tree.ParentOfAll(ids)
	if !ok {
		return errors.New("ids are not siblings")
	}
	return s.tree.Reorder(parent, k, ids)
}

func (s *fakeServer) ReorderFolders(_ context.Context, ids []string) error {
	return s.reorder(CommandReorderFolders, ids)
}

func (s *fakeServer) ReorderLeaves(_ context.Context, ids []string) error {
	return s.reorder(CommandReorderLeaves, ids)
}

func (s *fakeServer) FetchTree(_ context.Context, _ string) (*tree.Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	return s.tree.Clone(), nil
}

func newTestEngine(t *tree.Tree, srv *fakeServer) *Engine {
	state := NewState(t)
	d := NewDispatcher(nil, state, srv, srv, DispatcherOptions{
		NewBackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	})
	return NewEngine(nil, state, NewSession(), NewClassifier(DefaultThresholds()), d)
}

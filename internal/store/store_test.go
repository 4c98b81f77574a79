package store

import (
	"context"
	"errors"
	"testing"

	"reqtree/internal/dragdrop"
	"reqtree/internal/model"
	"reqtree/internal/tree"
)

var (
	_ dragdrop.Remote = (*Store)(nil)
	_ dragdrop.Source = (*Store)(nil)
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), t.TempDir(), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type fixture struct {
	ws            model.Workspace
	a, b, c       model.Item // folders: a/, a/b/, c/
	r1, r2, r3, l model.Item // requests: a/r1, a/r2, a/b/r3, l at root
}

func seed(t *testing.T, s *Store) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture
	var err error
	must := func(it model.Item, err error) model.Item {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		return it
	}
	if f.ws, err = s.CreateWorkspace(ctx, "demo"); err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	f.a = must(s.CreateFolder(ctx, f.ws.ID, "A", nil))
	f.c = must(s.CreateFolder(ctx, f.ws.ID, "C", nil))
	f.b = must(s.CreateFolder(ctx, f.ws.ID, "B", &f.a.ID))
	f.r1 = must(s.CreateLeaf(ctx, f.ws.ID, "r1", "get", "https://example.com/1", &f.a.ID))
	f.r2 = must(s.CreateLeaf(ctx, f.ws.ID, "r2", "POST", "https://example.com/2", &f.a.ID))
	f.r3 = must(s.CreateLeaf(ctx, f.ws.ID, "r3", "", "", &f.b.ID))
	f.l = must(s.CreateLeaf(ctx, f.ws.ID, "l", "GET", "", nil))
	return f
}

func names(t *tree.Tree, parentID string) []string {
	idx := tree.Build(t.Roots)
	list := t.Roots
	if parentID != "" {
		list = idx[parentID].Item.Children
	}
	out := []string{}
	for _, it := range list {
		out = append(out, it.Name)
	}
	return out
}

func fetch(t *testing.T, s *Store, ws string) *tree.Tree {
	t.Helper()
	tr, err := s.FetchTree(context.Background(), ws)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	return tr
}

func equal(a, b []string) bool {
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

func TestCreateAndFetch(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)

	if f.r1.Method != "GET" || f.r3.Method != "GET" {
		t.Fatalf("expected normalized methods; got %q %q", f.r1.Method, f.r3.Method)
	}
	if f.r2.SortOrder != 1 || f.b.SortOrder != 0 {
		t.Fatalf("expected append order; r2=%d b=%d", f.r2.SortOrder, f.b.SortOrder)
	}

	tr := fetch(t, s, f.ws.ID)
	if got := names(tr, ""); !equal(got, []string{"A", "C", "l"}) {
		t.Fatalf("unexpected roots: %v", got)
	}
	if got := names(tr, f.a.ID); !equal(got, []string{"B", "r1", "r2"}) {
		t.Fatalf("unexpected A children: %v", got)
	}
	if tr.Count() != 7 {
		t.Fatalf("expected 7 items; got %d", tr.Count())
	}

	// Name lookups work too.
	if _, err := s.FetchTree(context.Background(), "demo"); err != nil {
		t.Fatalf("fetch by name: %v", err)
	}
}

func TestCreateWorkspace_Duplicate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.CreateWorkspace(ctx, "demo"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateWorkspace(ctx, "demo"); !errors.Is(err, ErrWorkspaceExists) {
		t.Fatalf("expected ErrWorkspaceExists; got %v", err)
	}
	list, err := s.Workspaces(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one workspace; got %v err=%v", list, err)
	}
}

func TestCreate_RejectsBadParent(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	if _, err := s.CreateLeaf(ctx, f.ws.ID, "x", "GET", "", &f.r1.ID); !errors.Is(err, tree.ErrNotFolder) {
		t.Fatalf("expected ErrNotFolder; got %v", err)
	}
	missing := "fld-missing"
	var nf tree.NotFoundError
	if _, err := s.CreateFolder(ctx, f.ws.ID, "x", &missing); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError; got %v", err)
	}
	if _, err := s.FetchTree(ctx, "nope"); !errors.As(err, &nf) || nf.Kind != "workspace" {
		t.Fatalf("expected workspace NotFoundError; got %v", err)
	}
}

func TestMoveLeaf_AppendsAndCompacts(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)

	if err := s.MoveLeaf(context.Background(), f.r1.ID, &f.b.ID); err != nil {
		t.Fatalf("move leaf: %v", err)
	}
	tr := fetch(t, s, f.ws.ID)
	if got := names(tr, f.b.ID); !equal(got, []string{"r3", "r1"}) {
		t.Fatalf("unexpected B children: %v", got)
	}
	idx := tree.Build(tr.Roots)
	if idx[f.r2.ID].Item.SortOrder != 0 {
		t.Fatalf("expected r2 compacted to 0; got %d", idx[f.r2.ID].Item.SortOrder)
	}

	if err := s.MoveLeaf(context.Background(), f.r3.ID, nil); err != nil {
		t.Fatalf("move leaf to root: %v", err)
	}
	tr = fetch(t, s, f.ws.ID)
	if got := names(tr, ""); !equal(got, []string{"A", "C", "l", "r3"}) {
		t.Fatalf("unexpected roots: %v", got)
	}
}

func TestMoveFolder_CycleIsRejected(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)
	before := fetch(t, s, f.ws.ID)

	if err := s.MoveFolder(context.Background(), f.a.ID, &f.b.ID, nil); !errors.Is(err, tree.ErrCycle) {
		t.Fatalf("expected ErrCycle; got %v", err)
	}
	if err := s.MoveFolder(context.Background(), f.a.ID, &f.a.ID, nil); !errors.Is(err, tree.ErrCycle) {
		t.Fatalf("expected ErrCycle for self; got %v", err)
	}
	after := fetch(t, s, f.ws.ID)
	if !equal(names(before, ""), names(after, "")) || !equal(names(before, f.a.ID), names(after, f.a.ID)) {
		t.Fatalf("rejected move changed the tree")
	}
}

func TestMoveFolder_ToRootAtPosition(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)
	at := 1
	if err := s.MoveFolder(context.Background(), f.b.ID, nil, &at); err != nil {
		t.Fatalf("move folder: %v", err)
	}
	tr := fetch(t, s, f.ws.ID)
	if got := names(tr, ""); !equal(got, []string{"A", "B", "C", "l"}) {
		t.Fatalf("unexpected roots: %v", got)
	}
	// B keeps its contents.
	if got := names(tr, f.b.ID); !equal(got, []string{"r3"}) {
		t.Fatalf("unexpected B children: %v", got)
	}
}

func TestReorder(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	if err := s.ReorderLeaves(ctx, []string{f.r2.ID, f.r1.ID}); err != nil {
		t.Fatalf("reorder leaves: %v", err)
	}
	// Replaying the same list is harmless.
	if err := s.ReorderLeaves(ctx, []string{f.r2.ID, f.r1.ID}); err != nil {
		t.Fatalf("reorder leaves again: %v", err)
	}
	if err := s.ReorderFolders(ctx, []string{f.c.ID, f.a.ID}); err != nil {
		t.Fatalf("reorder folders: %v", err)
	}
	tr := fetch(t, s, f.ws.ID)
	if got := names(tr, f.a.ID); !equal(got, []string{"B", "r2", "r1"}) {
		t.Fatalf("unexpected A children: %v", got)
	}
	if got := names(tr, ""); !equal(got, []string{"C", "A", "l"}) {
		t.Fatalf("unexpected roots: %v", got)
	}
}

func TestReorder_RejectsMixedOrPartialSets(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	cases := map[string]func() error{
		"partial":       func() error { return s.ReorderLeaves(ctx, []string{f.r1.ID}) },
		"cross parent":  func() error { return s.ReorderLeaves(ctx, []string{f.r1.ID, f.r3.ID}) },
		"wrong kind":    func() error { return s.ReorderFolders(ctx, []string{f.r2.ID, f.r1.ID}) },
		"empty":         func() error { return s.ReorderFolders(ctx, nil) },
		"folder leaves": func() error { return s.ReorderLeaves(ctx, []string{f.a.ID, f.c.ID}) },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			if err := fn(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestStore_Closed(t *testing.T) {
	s, err := Open(context.Background(), t.TempDir(), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = s.Close()
	if _, err := s.FetchTree(context.Background(), "x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed; got %v", err)
	}
}

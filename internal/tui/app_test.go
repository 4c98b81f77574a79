package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/cenkalti/backoff/v4"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"reqtree/internal/dragdrop"
	"reqtree/internal/model"
	"reqtree/internal/remote"
	"reqtree/internal/store"
	"reqtree/internal/tree"
)

type sidebarFixture struct {
	store  *store.Store
	ws     model.Workspace
	a, b   model.Item // A/ and A/B/
	r1, r2 model.Item // A/r1, A/r2
	l      model.Item // l at the top level
}

// Rows when fully expanded: A, B, r1, r2, l.
func newSidebarFixture(t *testing.T) sidebarFixture {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	f := sidebarFixture{store: st}
	must := func(it model.Item, err error) model.Item {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		return it
	}
	if f.ws, err = st.CreateWorkspace(ctx, "demo"); err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	f.a = must(st.CreateFolder(ctx, f.ws.ID, "A", nil))
	f.b = must(st.CreateFolder(ctx, f.ws.ID, "B", &f.a.ID))
	f.r1 = must(st.CreateLeaf(ctx, f.ws.ID, "r1", "GET", "", &f.a.ID))
	f.r2 = must(st.CreateLeaf(ctx, f.ws.ID, "r2", "GET", "", &f.a.ID))
	f.l = must(st.CreateLeaf(ctx, f.ws.ID, "l", "POST", "", nil))
	return f
}

func (f sidebarFixture) model(t *testing.T, r dragdrop.Remote) appModel {
	t.Helper()
	ctx := context.Background()
	initial, err := f.store.FetchTree(ctx, f.ws.ID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if r == nil {
		r = f.store
	}
	state := dragdrop.NewState(initial)
	d := dragdrop.NewDispatcher(nil, state, r, f.store, dragdrop.DispatcherOptions{
		NewBackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	})
	e := dragdrop.NewEngine(nil, state, nil, dragdrop.NewClassifier(dragdrop.DefaultThresholds()), d)
	return newAppModel(ctx, e, Options{Title: "demo", Location: "local", Source: f.store})
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// send feeds msgs to m and returns the model plus the last non-nil command.
func send(m appModel, msgs ...tea.Msg) (appModel, tea.Cmd) {
	var last tea.Cmd
	for _, msg := range msgs {
		mm, cmd := m.Update(msg)
		m = mm.(appModel)
		if cmd != nil {
			last = cmd
		}
	}
	return m, last
}

// settle runs the command returned by a drop and feeds its result back.
func settle(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command from the drop")
	}
	msg := cmd()
	if _, ok := msg.(awaitDoneMsg); !ok {
		t.Fatalf("expected awaitDoneMsg; got %T", msg)
	}
	m, _ = send(m, msg)
	return m
}

func mouse(action tea.MouseAction, x, row int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: headerHeight + row, Action: action, Button: tea.MouseButtonLeft}
}

func storedChildren(t *testing.T, f sidebarFixture, parentID string) []string {
	t.Helper()
	tr, err := f.store.FetchTree(context.Background(), f.ws.ID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	list := tr.Roots
	if parentID != "" {
		e, ok := tree.Build(tr.Roots).Lookup(parentID)
		if !ok {
			t.Fatalf("missing %s", parentID)
		}
		list = e.Item.Children
	}
	var out []string
	for _, it := range list {
		out = append(out, it.Name)
	}
	return out
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

func TestKeyboardCarry_ReordersLeaves(t *testing.T) {
	f := newSidebarFixture(t)
	m := f.model(t, nil)

	m, _ = send(m, keyPress("down"), keyPress("down"), keyPress("down"), keyPress("m"))
	if !m.carrying || !m.engine.Dragging() {
		t.Fatalf("expected carry mode after picking up r2")
	}

	// Five quarter-row steps put r2's center in the upper half of r1.
	m, _ = send(m, keyPress("k"), keyPress("k"), keyPress("k"), keyPress("k"), keyPress("k"))
	got := m.engine.CurrentDecision()
	if got.HoveredID != f.r1.ID || got.Position != dragdrop.PositionBefore {
		t.Fatalf("expected before r1; got %+v", got)
	}

	m, cmd := send(m, keyPress("enter"))
	if m.carrying || m.engine.Dragging() {
		t.Fatalf("expected the drop to end the drag")
	}
	if m.inFlight != 1 {
		t.Fatalf("expected one command in flight; got %d", m.inFlight)
	}
	// Optimistic: the sidebar already shows the new order.
	if m.rows[2].item.ID != f.r2.ID || m.rows[3].item.ID != f.r1.ID {
		t.Fatalf("expected r2 above r1 before the remote answers")
	}

	m = settle(t, m, cmd)
	if m.inFlight != 0 || m.minibufferText != "Saved" {
		t.Fatalf("expected saved state; inFlight=%d text=%q", m.inFlight, m.minibufferText)
	}
	if got := storedChildren(t, f, f.a.ID); !equalStrings(got, []string{"B", "r2", "r1"}) {
		t.Fatalf("unexpected stored order: %v", got)
	}
}

func TestKeyboardCarry_EscapeAborts(t *testing.T) {
	f := newSidebarFixture(t)
	m := f.model(t, nil)
	before := m.engine.Tree()

	m, _ = send(m, keyPress("down"), keyPress("down"), keyPress("m"), keyPress("j"), keyPress("j"), keyPress("esc"))
	if m.carrying || m.engine.Dragging() {
		t.Fatalf("expected escape to end the drag")
	}
	if m.engine.Tree() != before {
		t.Fatalf("expected no change to the tree")
	}
	if m.minibufferText != "Move cancelled" {
		t.Fatalf("unexpected status: %q", m.minibufferText)
	}
}

func TestKeyboardCarry_PastLastRowTargetsRoot(t *testing.T) {
	f := newSidebarFixture(t)
	m := f.model(t, nil)

	// Carry r1 (row 2) below l (row 4).
	m, _ = send(m, keyPress("down"), keyPress("down"), keyPress("m"))
	for i := 0; i < 12; i++ {
		m, _ = send(m, keyPress("j"))
	}
	if got := m.engine.CurrentDecision(); got.Position != dragdrop.PositionRoot {
		t.Fatalf("expected the root zone; got %+v", got)
	}
	m, cmd := send(m, keyPress("enter"))
	m = settle(t, m, cmd)
	if got := storedChildren(t, f, ""); !equalStrings(got, []string{"A", "l", "r1"}) {
		t.Fatalf("unexpected top level: %v", got)
	}
}

func TestKeyboardCarry_ReachesEveryFolderBand(t *testing.T) {
	f := newSidebarFixture(t)
	m := f.model(t, nil)

	// Carry l (row 4) all the way up, past A's top edge.
	m, _ = send(m, keyPress("down"), keyPress("down"), keyPress("down"), keyPress("down"), keyPress("m"))
	var overA []dragdrop.Position
	for i := 0; i < 20; i++ {
		m, _ = send(m, keyPress("k"))
		if d := m.engine.CurrentDecision(); d.HoveredID == f.a.ID {
			if n := len(overA); n == 0 || overA[n-1] != d.Position {
				overA = append(overA, d.Position)
			}
		}
	}
	want := []dragdrop.Position{dragdrop.PositionAfter, dragdrop.PositionInside, dragdrop.PositionBefore}
	if len(overA) != len(want) {
		t.Fatalf("expected bands %v over A; got %v", want, overA)
	}
	for i := range want {
		if overA[i] != want[i] {
			t.Fatalf("expected bands %v over A; got %v", want, overA)
		}
	}
	// Extra presses stop at the first row.
	if d := m.engine.CurrentDecision(); d.HoveredID != f.a.ID || d.Position != dragdrop.PositionBefore {
		t.Fatalf("expected to stay before A; got %+v", d)
	}
}

func TestKeyboardCarry_FolderAfterLastFolder(t *testing.T) {
	f := newSidebarFixture(t)
	m := f.model(t, nil)

	// Carry B (row 1) two steps up: its center lands in A's bottom quarter.
	m, _ = send(m, keyPress("down"), keyPress("m"), keyPress("k"), keyPress("k"))
	got := m.engine.CurrentDecision()
	if got.HoveredID != f.a.ID || got.Position != dragdrop.PositionAfter {
		t.Fatalf("expected after A; got %+v", got)
	}

	m, cmd := send(m, keyPress("enter"))
	m = settle(t, m, cmd)
	if got := storedChildren(t, f, ""); !equalStrings(got, []string{"A", "B", "l"}) {
		t.Fatalf("unexpected top level: %v", got)
	}
	if got := storedChildren(t, f, f.a.ID); !equalStrings(got, []string{"r1", "r2"}) {
		t.Fatalf("unexpected children of A: %v", got)
	}
}

func TestMouseDrag_DownwardLandsAfter(t *testing.T) {
	f := newSidebarFixture(t)
	m := f.model(t, nil)

	m, _ = send(m, mouse(tea.MouseActionPress, 6, 2))
	if m.engine.Dragging() {
		t.Fatalf("a press alone must not start a drag")
	}
	m, _ = send(m, mouse(tea.MouseActionMotion, 6, 3))
	got := m.engine.CurrentDecision()
	if got.HoveredID != f.r2.ID || got.Position != dragdrop.PositionAfter {
		t.Fatalf("expected after r2; got %+v", got)
	}
	m, cmd := send(m, mouse(tea.MouseActionRelease, 6, 3))
	m = settle(t, m, cmd)
	if got := storedChildren(t, f, f.a.ID); !equalStrings(got, []string{"B", "r2", "r1"}) {
		t.Fatalf("unexpected stored order: %v", got)
	}
}

func TestMouseDrag_DownOntoFolderElsewhereLandsAfter(t *testing.T) {
	f := newSidebarFixture(t)
	c, err := f.store.CreateFolder(context.Background(), f.ws.ID, "C", nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	m := f.model(t, nil)

	// Rows: A, B, r1, r2, C, l. Drag r2 down onto C.
	m, _ = send(m, mouse(tea.MouseActionPress, 6, 3), mouse(tea.MouseActionMotion, 6, 4))
	got := m.engine.CurrentDecision()
	if got.HoveredID != c.ID || got.Position != dragdrop.PositionAfter {
		t.Fatalf("expected after C; got %+v", got)
	}
	m, cmd := send(m, mouse(tea.MouseActionRelease, 6, 4))
	m = settle(t, m, cmd)
	if got := storedChildren(t, f, ""); !equalStrings(got, []string{"A", "C", "l", "r2"}) {
		t.Fatalf("unexpected top level: %v", got)
	}
}

func TestMouseDrag_SidewaysWiggleDropsInside(t *testing.T) {
	f := newSidebarFixture(t)
	m := f.model(t, nil)

	m, _ = send(m,
		mouse(tea.MouseActionPress, 4, 4),
		mouse(tea.MouseActionMotion, 4, 0),
	)
	if got := m.engine.CurrentDecision(); got.Position != dragdrop.PositionBefore {
		t.Fatalf("expected moving up to land before A; got %+v", got)
	}
	m, _ = send(m, mouse(tea.MouseActionMotion, 7, 0))
	got := m.engine.CurrentDecision()
	if got.HoveredID != f.a.ID || got.Position != dragdrop.PositionInside {
		t.Fatalf("expected inside A; got %+v", got)
	}
	m, cmd := send(m, mouse(tea.MouseActionRelease, 7, 0))
	m = settle(t, m, cmd)
	if got := storedChildren(t, f, f.a.ID); !equalStrings(got, []string{"B", "r1", "r2", "l"}) {
		t.Fatalf("unexpected children of A: %v", got)
	}
}

func TestMouseClick_SelectsWithoutDragging(t *testing.T) {
	f := newSidebarFixture(t)
	m := f.model(t, nil)

	m, cmd := send(m, mouse(tea.MouseActionPress, 3, 3), mouse(tea.MouseActionRelease, 3, 3))
	if cmd != nil {
		t.Fatalf("expected no command from a click")
	}
	if row, _ := m.selected(); row.item.ID != f.r2.ID {
		t.Fatalf("expected r2 selected; got %s", row.item.ID)
	}
}

type rejectingRemote struct {
	*store.Store
}

func (rejectingRemote) ReorderLeaves(context.Context, []string) error {
	return &remote.HTTPError{StatusCode: 422, Message: "stale order"}
}

func TestDrop_RemoteRejectionRevertsAndToasts(t *testing.T) {
	f := newSidebarFixture(t)
	m := f.model(t, rejectingRemote{f.store})

	m, _ = send(m, mouse(tea.MouseActionPress, 6, 2), mouse(tea.MouseActionMotion, 6, 3))
	m, cmd := send(m, mouse(tea.MouseActionRelease, 6, 3))
	if m.rows[2].item.ID != f.r2.ID {
		t.Fatalf("expected the optimistic reorder to show first")
	}

	m = settle(t, m, cmd)
	if !m.toastIsError || m.minibufferText != "Move reverted: stale order" {
		t.Fatalf("unexpected toast: %q (error=%v)", m.minibufferText, m.toastIsError)
	}
	if m.rows[2].item.ID != f.r1.ID || m.rows[3].item.ID != f.r2.ID {
		t.Fatalf("expected the original order after rollback")
	}
}

func TestCollapse_HidesChildren(t *testing.T) {
	f := newSidebarFixture(t)
	m := f.model(t, nil)

	m, _ = send(m, keyPress("h"))
	if len(m.rows) != 2 || !m.rows[0].collapsed {
		t.Fatalf("expected A collapsed; rows=%d", len(m.rows))
	}
	m, _ = send(m, keyPress("l"))
	if len(m.rows) != 5 {
		t.Fatalf("expected A expanded; rows=%d", len(m.rows))
	}

	// Collapse on a leaf jumps to its folder.
	m, _ = send(m, keyPress("down"), keyPress("down"), keyPress("h"))
	if m.cursor != 0 {
		t.Fatalf("expected cursor on A; got %d", m.cursor)
	}
}

func TestView_ShowsDropIndicators(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	setGlyphs(glyphSetASCII)
	t.Cleanup(func() { setGlyphs(glyphSetUnicode) })

	f := newSidebarFixture(t)
	m := f.model(t, nil)
	m, _ = send(m, tea.WindowSizeMsg{Width: 60, Height: 16})

	view := xansi.Strip(m.View())
	if lines := strings.Split(view, "\n"); len(lines) != 16 {
		t.Fatalf("expected the view to fill 16 lines; got %d", len(lines))
	}
	if !strings.Contains(view, "  v A") || !strings.Contains(view, "POST   l") {
		t.Fatalf("unexpected view:\n%s", view)
	}

	m, _ = send(m, keyPress("down"), keyPress("down"), keyPress("down"), keyPress("m"), keyPress("k"), keyPress("k"), keyPress("k"), keyPress("k"), keyPress("k"))
	view = xansi.Strip(m.View())
	for _, want := range []string{"^   GET    r1", "*   GET    r2", "--- top level"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in:\n%s", want, view)
		}
	}
}

func TestDescribeFailure(t *testing.T) {
	cases := []struct {
		err      error
		location string
		want     string
	}{
		{&dragdrop.RemoteFailure{Err: &remote.HTTPError{StatusCode: 409, Message: "cycle"}}, "http://x", "Move reverted: cycle"},
		{&dragdrop.RemoteFailure{Err: context.DeadlineExceeded}, "http://x", "Move reverted: server timed out"},
		{&dragdrop.RemoteFailure{Err: tree.ErrCycle}, "http://x", "Move reverted: server unreachable"},
		{&dragdrop.RemoteFailure{Err: tree.ErrCycle}, "local", "Move reverted: " + tree.ErrCycle.Error()},
	}
	for _, tc := range cases {
		if got := describeFailure(tc.err, tc.location); got != tc.want {
			t.Fatalf("describeFailure(%v, %q) = %q; want %q", tc.err, tc.location, got, tc.want)
		}
	}
}

package tui

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"reqtree/internal/dragdrop"
	"reqtree/internal/remote"
	"reqtree/internal/tree"
)

type awaitDoneMsg struct {
	cmd dragdrop.Command
	err error
}

type reloadedMsg struct {
	tree *tree.Tree
	err  error
}

type toastDoneMsg struct{ seq int }

const toastDuration = 4 * time.Second

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.refreshRows()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampCursor()
		return m, nil

	case toastDoneMsg:
		if msg.seq == m.toastSeq {
			m.minibufferText = ""
			m.toastIsError = false
		}
		return m, nil

	case awaitDoneMsg:
		m.inFlight--
		m.refreshRows()
		if msg.err != nil {
			m.log.WithError(msg.err).WithField("command", msg.cmd.String()).Warn("Move rolled back")
			return m, m.showToast(describeFailure(msg.err, m.opts.Location), true)
		}
		if m.inFlight == 0 {
			return m, m.showToast("Saved", false)
		}
		return m, nil

	case reloadedMsg:
		if msg.err != nil {
			return m, m.showToast("Reload failed: "+msg.err.Error(), true)
		}
		m.engine.State().Publish(msg.tree)
		m.refreshRows()
		return m, m.showToast("Reloaded", false)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		if m.carrying {
			return m.updateCarry(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m appModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.mouseDrag {
			m.engine.DragAbort()
			m.resetMouse()
			return m, m.showToast("Move cancelled", false)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()
	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()

	case key.Matches(msg, m.keys.Collapse):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		if row.item.IsFolder() && !row.collapsed && row.hasChildren {
			m.setCollapsed(row.item.ID, true)
			return m, nil
		}
		if i := rowIndexByID(m.rows, row.parentID); i >= 0 {
			m.cursor = i
			m.clampCursor()
		}
	case key.Matches(msg, m.keys.Expand):
		if row, ok := m.selected(); ok && row.collapsed {
			m.setCollapsed(row.item.ID, false)
		}
	case key.Matches(msg, m.keys.Toggle):
		if row, ok := m.selected(); ok && row.item.IsFolder() {
			m.setCollapsed(row.item.ID, !row.collapsed)
		}

	case key.Matches(msg, m.keys.Carry):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.engine.DragStart(row.item.ID)
		m.carrying = true
		m.pointer = float64(m.cursor) - carryStep/2
		m.moveCarried()

	case key.Matches(msg, m.keys.Reload):
		if m.opts.Source == nil {
			return m, nil
		}
		src := m.opts.Source
		ctx := m.ctx
		wsID := m.engine.Tree().WorkspaceID
		return m, func() tea.Msg {
			t, err := src.FetchTree(ctx, wsID)
			return reloadedMsg{tree: t, err: err}
		}
	}
	return m, nil
}

func (m appModel) updateCarry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c":
		m.engine.DragAbort()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		m.engine.DragAbort()
		m.carrying = false
		return m, m.showToast("Move cancelled", false)
	case key.Matches(msg, m.keys.Drop):
		m.carrying = false
		return m.finishDrop()
	case key.Matches(msg, m.keys.Up):
		// Stop while the center is still on the first row.
		if p := m.pointer - carryStep; p >= -0.5 {
			m.pointer = p
			m.moveCarried()
		}
	case key.Matches(msg, m.keys.Down):
		if p := m.pointer + carryStep; p <= float64(len(m.rows)) {
			m.pointer = p
			m.moveCarried()
		}
	}
	return m, nil
}

// moveCarried reports the carried row's position to the engine. The hovered row is
// the one containing the carried row's center.
func (m *appModel) moveCarried() {
	pointer := dragdrop.Rect{Top: m.pointer, Height: 1}
	idx := int(math.Floor(pointer.CenterY()))
	m.engine.DragMove(pointer, m.hoverRow(idx))
	if idx >= 0 && idx < len(m.rows) {
		m.ensureVisible(idx)
	}
}

// hoverRow describes row i in row units; past the last row is the root drop zone.
func (m appModel) hoverRow(i int) dragdrop.Hover {
	switch {
	case i < 0:
		return dragdrop.Hover{}
	case i >= len(m.rows):
		return dragdrop.Hover{Root: true, Rect: dragdrop.Rect{Top: float64(len(m.rows)), Height: rootZoneRows}}
	default:
		return dragdrop.Hover{ID: m.rows[i].item.ID, Rect: dragdrop.Rect{Top: float64(i), Height: 1}}
	}
}

// rowAtY maps a screen line to a row index. Lines between the last row and the
// footer belong to the root drop zone (len(rows)); header lines return -1.
func (m appModel) rowAtY(y int) int {
	rel := y - headerHeight
	if rel < 0 || y >= m.height-footerHeight {
		return -1
	}
	visible := len(m.rows) - m.offset
	if visible > m.listHeight() {
		visible = m.listHeight()
	}
	if rel < visible {
		return m.offset + rel
	}
	return len(m.rows)
}

func (m appModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		if m.offset > 0 {
			m.offset--
		}
		return m, nil
	case msg.Button == tea.MouseButtonWheelDown:
		if m.offset+m.listHeight() < len(m.rows) {
			m.offset++
		}
		return m, nil
	}

	row := m.rowAtY(msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || m.carrying {
			return m, nil
		}
		if row < 0 || row >= len(m.rows) {
			return m, nil
		}
		m.cursor = row
		m.clampCursor()
		m.mouseDown = true
		m.pressRow = row
		m.lastMouseX, m.lastMouseY = msg.X, msg.Y
		m.drift = 0

	case tea.MouseActionMotion:
		if !m.mouseDown {
			return m, nil
		}
		switch {
		case msg.Y > m.lastMouseY:
			m.drift = mouseDrift
		case msg.Y < m.lastMouseY:
			m.drift = -mouseDrift
		case msg.X != m.lastMouseX:
			m.drift = 0
		}
		m.lastMouseX, m.lastMouseY = msg.X, msg.Y
		if !m.mouseDrag {
			if row == m.pressRow {
				return m, nil
			}
			if m.pressRow >= len(m.rows) {
				m.resetMouse()
				return m, nil
			}
			m.engine.DragStart(m.rows[m.pressRow].item.ID)
			m.mouseDrag = true
		}
		m.engine.DragMove(dragdrop.Rect{Top: float64(row) + m.drift, Height: 1}, m.hoverRow(row))

	case tea.MouseActionRelease:
		dragging := m.mouseDrag
		m.resetMouse()
		if dragging {
			return m.finishDrop()
		}
	}
	return m, nil
}

func (m *appModel) resetMouse() {
	m.mouseDown = false
	m.mouseDrag = false
	m.drift = 0
}

// finishDrop ends the drag; a resolved command is already applied locally and its
// remote call runs as a tea.Cmd.
func (m appModel) finishDrop() (tea.Model, tea.Cmd) {
	p, cmd, ok := m.engine.DragEnd()
	if !ok {
		return m, m.showToast("Nothing to move", false)
	}
	m.refreshRows()
	if i := rowIndexByID(m.rows, cmd.SubjectID); i >= 0 {
		m.cursor = i
		m.clampCursor()
	}
	m.inFlight++
	m.minibufferText = "Saving " + cmd.String() + glyphEllipsis()
	m.toastIsError = false
	ctx := m.ctx
	return m, func() tea.Msg {
		return awaitDoneMsg{cmd: p.Command, err: p.Await(ctx)}
	}
}

func (m *appModel) setCollapsed(id string, v bool) {
	if v {
		m.collapsed[id] = true
	} else {
		delete(m.collapsed, id)
	}
	m.forceRefresh()
}

func (m *appModel) showToast(text string, isError bool) tea.Cmd {
	m.toastSeq++
	seq := m.toastSeq
	m.minibufferText = text
	m.toastIsError = isError
	return tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastDoneMsg{seq: seq} })
}

// describeFailure turns a rolled-back command's error into a status line.
func describeFailure(err error, location string) string {
	var he *remote.HTTPError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Move reverted: server timed out"
	case errors.As(err, &he):
		msg := strings.TrimSpace(he.Message)
		if msg == "" {
			msg = he.Error()
		}
		return "Move reverted: " + msg
	case location != "" && location != "local" && remote.IsUnavailable(err):
		return "Move reverted: server unreachable"
	}
	var rf *dragdrop.RemoteFailure
	if errors.As(err, &rf) && rf.Err != nil {
		return "Move reverted: " + rf.Err.Error()
	}
	return "Move reverted: " + err.Error()
}

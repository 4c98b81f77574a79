package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/sirupsen/logrus"

	"reqtree/internal/dragdrop"
	"reqtree/internal/tree"
)

// Options configure the sidebar.
type Options struct {
	// Title is shown in the header, usually the workspace name.
	Title string
	// Location describes where changes are saved ("local" or a server URL).
	Location string
	// Source reloads the tree on demand. Optional.
	Source dragdrop.Source
	Log    logrus.FieldLogger
}

// Screen layout: header line, blank line, rows, root drop zone, blank line, footer.
const (
	headerHeight = 2
	footerHeight = 2
	rootZoneRows = 1
)

// mouseDrift is how far the mouse pointer is pushed toward the edge of a row in the
// direction of travel. A terminal cell has no sub-row resolution, so moving down
// lands after a row, moving up lands before it, and a sideways wiggle recenters it.
// It reaches past the narrowest outer band (FolderSurfaceEdge).
const mouseDrift = 0.4

// carryStep is how far one key press moves the carried row. The carried row starts
// half a step above its own row, so its center always sits in the middle of a
// quarter band: 0.125, 0.375, 0.625 or 0.875 of the hovered row.
const carryStep = 0.25

type appModel struct {
	ctx    context.Context
	engine *dragdrop.Engine
	opts   Options
	log    logrus.FieldLogger
	keys   keyMap
	help   help.Model

	width  int
	height int

	rows      []outlineRow
	renderFor *tree.Tree
	collapsed map[string]bool
	cursor    int
	offset    int

	// Keyboard carry: pointer is the carried row's top edge in row units.
	carrying bool
	pointer  float64

	// Mouse drag: a press arms the drag, the first motion onto another row starts it.
	mouseDown  bool
	mouseDrag  bool
	pressRow   int
	lastMouseX int
	lastMouseY int
	drift      float64

	inFlight int

	minibufferText string
	toastIsError   bool
	toastSeq       int
}

func newAppModel(ctx context.Context, engine *dragdrop.Engine, opts Options) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	m := appModel{
		ctx:       ctx,
		engine:    engine,
		opts:      opts,
		log:       log.WithField("component", "tui"),
		keys:      defaultKeyMap(),
		help:      help.New(),
		width:     80,
		height:    24,
		collapsed: map[string]bool{},
	}
	m.refreshRows()
	return m
}

// refreshRows re-flattens when the engine published a new tree, keeping the cursor
// on the same item where possible.
func (m *appModel) refreshRows() {
	t := m.engine.Tree()
	if t == m.renderFor && m.rows != nil {
		return
	}
	curID := ""
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		curID = m.rows[m.cursor].item.ID
	}
	m.renderFor = t
	m.rows = flattenTree(t, m.collapsed)
	if i := rowIndexByID(m.rows, curID); i >= 0 {
		m.cursor = i
	}
	m.clampCursor()
}

func (m *appModel) forceRefresh() {
	m.renderFor = nil
	m.rows = nil
	m.refreshRows()
}

func (m *appModel) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureVisible(m.cursor)
}

// listHeight is the number of rows that fit between the header and the root zone.
func (m appModel) listHeight() int {
	h := m.height - headerHeight - footerHeight - rootZoneRows
	if h < 1 {
		h = 1
	}
	return h
}

func (m *appModel) ensureVisible(row int) {
	h := m.listHeight()
	if row < m.offset {
		m.offset = row
	}
	if row >= m.offset+h {
		m.offset = row - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m appModel) selected() (outlineRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return outlineRow{}, false
	}
	return m.rows[m.cursor], true
}

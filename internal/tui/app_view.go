package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"reqtree/internal/dragdrop"
)

func (m appModel) View() string {
	m.refreshRows()
	decision := m.engine.CurrentDecision()
	subjectID, dragging := m.engine.Subject()

	lines := make([]string, 0, m.height)
	lines = append(lines, m.truncate(m.headerLine()), "")

	h := m.listHeight()
	end := m.offset + h
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(i, decision, subjectID, dragging))
	}
	lines = append(lines, m.renderRootZone(decision, dragging))
	for len(lines) < headerHeight+h+rootZoneRows {
		lines = append(lines, "")
	}

	lines = append(lines, "", m.footerLine())
	return strings.Join(lines, "\n")
}

func (m appModel) headerLine() string {
	title := strings.TrimSpace(m.opts.Title)
	if title == "" {
		title = m.engine.Tree().WorkspaceID
	}
	parts := []string{lipgloss.NewStyle().Bold(true).Render("reqtree"), title}
	if loc := strings.TrimSpace(m.opts.Location); loc != "" {
		parts = append(parts, styleMuted().Render("["+loc+"]"))
	}
	if m.inFlight > 0 {
		parts = append(parts, styleMuted().Render(fmt.Sprintf("saving %d%s", m.inFlight, glyphEllipsis())))
	}
	return strings.Join(parts, "  ")
}

func (m appModel) footerLine() string {
	if m.minibufferText != "" {
		if m.toastIsError {
			return m.truncate(styleToastError().Render(m.minibufferText))
		}
		return m.truncate(m.minibufferText)
	}
	bindings := m.keys.browseHelp()
	if m.carrying {
		bindings = m.keys.carryHelp()
	}
	return m.truncate(m.help.ShortHelpView(bindings))
}

func (m appModel) renderRow(i int, decision dragdrop.DropDecision, subjectID string, dragging bool) string {
	row := m.rows[i]
	it := row.item

	gutter := "  "
	target := decision.HoveredID == it.ID
	if target {
		switch decision.Position {
		case dragdrop.PositionBefore:
			gutter = glyphDropBefore() + " "
		case dragdrop.PositionAfter:
			gutter = glyphDropAfter() + " "
		case dragdrop.PositionInside:
			gutter = glyphDropInside() + " "
		}
	}
	if dragging && it.ID == subjectID && !target {
		gutter = glyphCarry() + " "
	}

	indent := strings.Repeat("  ", row.depth)
	var label, plainLabel string
	if it.IsFolder() {
		twisty := " "
		if row.hasChildren {
			twisty = glyphTwistyExpanded()
			if row.collapsed {
				twisty = glyphTwistyCollapsed()
			}
		}
		plainLabel = twisty + " " + it.Name
		label = plainLabel
		if row.collapsed {
			count := styleMuted().Render(fmt.Sprintf(" (%d)", len(it.Children)))
			label += count
			plainLabel += fmt.Sprintf(" (%d)", len(it.Children))
		}
	} else {
		method := fmt.Sprintf("%-6s", strings.ToUpper(it.Method))
		plainLabel = method + " " + it.Name
		label = styleMethod(it.Method).Render(method) + " " + it.Name
	}

	switch {
	case target && decision.Position == dragdrop.PositionInside:
		return styleDropTarget().Width(m.width).Render(m.truncate(gutter + indent + plainLabel))
	case i == m.cursor && !dragging:
		return styleSelected().Width(m.width).Render(m.truncate(gutter + indent + plainLabel))
	case dragging && it.ID == subjectID:
		return styleMuted().Render(m.truncate(gutter + indent + plainLabel))
	case target:
		return m.truncate(styleDropMarker().Render(gutter) + indent + label)
	default:
		return m.truncate(gutter + indent + label)
	}
}

func (m appModel) renderRootZone(decision dragdrop.DropDecision, dragging bool) string {
	if decision.Position == dragdrop.PositionRoot {
		return styleDropTarget().Width(m.width).Render(m.truncate(glyphDropInside() + " top level"))
	}
	if dragging {
		return styleMuted().Render(m.truncate("  " + strings.Repeat(glyphHRule(), 3) + " top level"))
	}
	if len(m.rows) == 0 {
		return styleMuted().Render(m.truncate("  No folders or requests yet"))
	}
	return ""
}

func (m appModel) truncate(s string) string {
	if m.width <= 0 {
		return s
	}
	return xansi.Truncate(s, m.width, glyphEllipsis())
}

package tui

import (
	"os"
	"strings"
	"sync"
)

// Some terminal fonts render box-drawing and arrow glyphs poorly, so every
// affordance has an ASCII fallback (REQTREE_TUI_GLYPHS=ascii).

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func applyGlyphPreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("REQTREE_TUI_GLYPHS"))) {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func pick(unicode, ascii string) string {
	if glyphs() == glyphSetASCII {
		return ascii
	}
	return unicode
}

func glyphTwistyCollapsed() string { return pick("▸", ">") }
func glyphTwistyExpanded() string  { return pick("▾", "v") }
func glyphEllipsis() string        { return pick("…", "...") }
func glyphDropBefore() string      { return pick("▲", "^") }
func glyphDropAfter() string       { return pick("▼", "v") }
func glyphDropInside() string      { return pick("▶", ">") }
func glyphCarry() string           { return pick("✥", "*") }
func glyphHRule() string           { return pick("─", "-") }

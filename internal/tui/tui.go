package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"reqtree/internal/dragdrop"
)

// Run shows the sidebar until the user quits or ctx is cancelled.
func Run(ctx context.Context, engine *dragdrop.Engine, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()
	applyGlyphPreference()

	m := newAppModel(ctx, engine, opts)
	_, err := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

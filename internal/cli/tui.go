package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"reqtree/internal/tui"
)

func runTUI(cmd *cobra.Command, app *App) error {
	s, err := openSession(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.Close()

	// The sidebar owns the terminal; logs go to a file next to the store.
	logDir := app.Dir
	if logDir == "" {
		if logDir, err = os.UserCacheDir(); err != nil {
			logDir = os.TempDir()
		}
	}
	if f, err := os.OpenFile(filepath.Join(logDir, "reqtree.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		defer f.Close()
		app.log.SetOutput(f)
	} else {
		app.log.SetOutput(io.Discard)
	}

	title := s.ws.Name
	if title == "" {
		title = s.ws.ID
	}
	return tui.Run(cmd.Context(), s.engine, tui.Options{
		Title:    title,
		Location: s.location,
		Source:   s.source,
		Log:      app.log,
	})
}

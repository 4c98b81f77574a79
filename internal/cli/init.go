package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reqtree/internal/model"
	"reqtree/internal/store"
)

func newInitCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize local storage and a first workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := localOnly(app, "init"); err != nil {
				return writeErr(cmd, err)
			}
			// init creates the store in the working directory unless --dir says otherwise.
			if strings.TrimSpace(app.Dir) == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return writeErr(cmd, err)
				}
				app.Dir = filepath.Join(cwd, ".reqtree")
			}
			ctx := cmd.Context()
			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			ws, err := ensureWorkspace(cmd, st, name)
			if err != nil {
				return writeErr(cmd, err)
			}

			if app.cfg != nil && app.cfg.CurrentWorkspace == "" {
				app.cfg.CurrentWorkspace = ws.ID
				if err := store.SaveConfig(app.cfg); err != nil {
					app.log.WithError(err).Warn("Could not record the current workspace")
				}
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":        st.Dir,
					"sqlitePath": st.Path(),
					"workspace":  ws,
				},
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "default", "Name of the workspace to create")
	return cmd
}

func ensureWorkspace(cmd *cobra.Command, st *store.Store, name string) (model.Workspace, error) {
	ws, err := st.CreateWorkspace(cmd.Context(), name)
	if errors.Is(err, store.ErrWorkspaceExists) {
		return st.Workspace(cmd.Context(), name)
	}
	return ws, err
}

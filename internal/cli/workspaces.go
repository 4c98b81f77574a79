package cli

import (
	"github.com/spf13/cobra"

	"reqtree/internal/store"
)

func newWorkspacesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspaces",
		Aliases: []string{"workspace", "ws"},
		Short:   "Workspace management",
	}
	cmd.AddCommand(newWorkspacesListCmd(app))
	cmd.AddCommand(newWorkspacesCreateCmd(app))
	cmd.AddCommand(newWorkspacesUseCmd(app))
	return cmd
}

func newWorkspacesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := localOnly(app, "workspaces list"); err != nil {
				return writeErr(cmd, err)
			}
			st, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()
			all, err := st.Workspaces(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": all})
		},
	}
}

func newWorkspacesCreateCmd(app *App) *cobra.Command {
	var use bool
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := localOnly(app, "workspaces create"); err != nil {
				return writeErr(cmd, err)
			}
			st, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()
			ws, err := st.CreateWorkspace(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if use {
				app.cfg.CurrentWorkspace = ws.ID
				if err := store.SaveConfig(app.cfg); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": ws})
		},
	}
	cmd.Flags().BoolVar(&use, "use", false, "Make it the current workspace")
	return cmd
}

func newWorkspacesUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <id-or-name>",
		Short: "Set the current workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			// Remote workspaces can't be looked up by name; store the id as given.
			if app.Remote == "" {
				st, err := openStore(cmd.Context(), app)
				if err != nil {
					return writeErr(cmd, err)
				}
				defer st.Close()
				ws, err := st.Workspace(cmd.Context(), args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				id = ws.ID
			}
			app.cfg.CurrentWorkspace = id
			if err := store.SaveConfig(app.cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"currentWorkspace": id}})
		},
	}
}

package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"reqtree/internal/model"
)

func newFoldersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "folders",
		Aliases: []string{"folder"},
		Short:   "Folders",
	}
	cmd.AddCommand(newFoldersAddCmd(app))
	return cmd
}

func newFoldersAddCmd(app *App) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a folder (appended after its siblings)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := localOnly(app, "folders add"); err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()
			ws, err := resolveWorkspace(ctx, app, st)
			if err != nil {
				return writeErr(cmd, err)
			}
			it, err := st.CreateFolder(ctx, ws.ID, args[0], model.ParentPtr(parent))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": it})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent folder id (default: top level)")
	return cmd
}

func newRequestsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "requests",
		Aliases: []string{"request", "req"},
		Short:   "Requests",
	}
	cmd.AddCommand(newRequestsAddCmd(app))
	return cmd
}

func newRequestsAddCmd(app *App) *cobra.Command {
	var folder string
	var method string
	var url string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a request (appended after its siblings)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := localOnly(app, "requests add"); err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()
			ws, err := resolveWorkspace(ctx, app, st)
			if err != nil {
				return writeErr(cmd, err)
			}
			it, err := st.CreateLeaf(ctx, ws.ID, args[0], strings.TrimSpace(method), strings.TrimSpace(url), model.ParentPtr(folder))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": it})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "Folder id (default: top level)")
	cmd.Flags().StringVar(&method, "method", "GET", "HTTP method")
	cmd.Flags().StringVar(&url, "url", "", "Request URL")
	return cmd
}

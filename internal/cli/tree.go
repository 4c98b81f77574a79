package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"reqtree/internal/model"
	"reqtree/internal/tree"
)

func newTreeCmd(app *App) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the workspace's folders and requests in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			t := s.engine.Tree()
			if plain {
				return writePlainTree(cmd.OutOrStdout(), t)
			}
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Indented text instead of structured output")
	return cmd
}

func writePlainTree(w io.Writer, t *tree.Tree) error {
	var err error
	t.Walk(func(it *model.Item, depth int) bool {
		indent := strings.Repeat("  ", depth)
		if it.IsFolder() {
			_, err = fmt.Fprintf(w, "%s%s/  (%s)\n", indent, it.Name, it.ID)
		} else {
			_, err = fmt.Fprintf(w, "%s%-6s %s  (%s)\n", indent, it.Method, it.Name, it.ID)
		}
		return err == nil
	})
	return err
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one folder or request with its ancestry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			idx := s.engine.Index()
			e, ok := idx.Lookup(args[0])
			if !ok {
				return writeErr(cmd, tree.NotFoundError{Kind: "item", ID: args[0]})
			}
			var path []string
			for pid := e.ParentID; pid != nil; {
				p, ok := idx.Lookup(*pid)
				if !ok {
					break
				}
				path = append([]string{p.Item.Name}, path...)
				pid = p.ParentID
			}
			if path == nil {
				path = []string{}
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"item": e.Item,
					"path": path,
				},
			})
		},
	}
}

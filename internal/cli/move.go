package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"reqtree/internal/dragdrop"
	"reqtree/internal/tree"
)

func newMoveCmd(app *App) *cobra.Command {
	var before string
	var after string
	var inside string
	var root bool

	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move a folder or request relative to another item",
		Long: strings.TrimSpace(`
Move applies the same rules as dropping a row in the sidebar: requests stay below
folders, a folder can't go inside its own subtree, and a request dropped
before/after an item in another folder moves into that folder.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := dragdrop.Snapshot{SubjectID: args[0]}
			n := 0
			for _, c := range []struct {
				ref string
				pos dragdrop.Position
			}{{before, dragdrop.PositionBefore}, {after, dragdrop.PositionAfter}, {inside, dragdrop.PositionInside}} {
				if c.ref != "" {
					snap.HoveredID, snap.Position = c.ref, c.pos
					n++
				}
			}
			if root {
				snap.HoveredID, snap.Position = dragdrop.RootID, dragdrop.PositionRoot
				n++
			}
			if n != 1 {
				return writeErr(cmd, flagConflictError{flags: []string{"--before", "--after", "--inside", "--root"}})
			}

			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			t, idx := s.engine.State().Snapshot()
			if _, ok := idx.Lookup(snap.SubjectID); !ok {
				return writeErr(cmd, tree.NotFoundError{Kind: "item", ID: snap.SubjectID})
			}
			c, ok := dragdrop.Resolve(snap, t, idx)
			if !ok {
				return writeErr(cmd, dragdrop.Explain(snap, t, idx))
			}
			if err := s.engine.Dispatcher().Apply(cmd.Context(), c); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"command": c}})
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "Place before this item id")
	cmd.Flags().StringVar(&after, "after", "", "Place after this item id")
	cmd.Flags().StringVar(&inside, "inside", "", "Move into this folder id")
	cmd.Flags().BoolVar(&root, "root", false, "Move to the top level")
	return cmd
}

func newDragCmd(app *App) *cobra.Command {
	var onto string
	var at float64

	cmd := &cobra.Command{
		Use:   "drag <id>",
		Short: "Simulate dragging an item onto a row at a vertical fraction of its height",
		Example: strings.TrimSpace(`
  # Drop into the upper quarter of a folder row
  reqtree drag req-ab12cd34 --onto fld-ef56gh78 --at 0.2

  # Drop on the top-level zone
  reqtree drag fld-ef56gh78 --onto ROOT`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(onto) == "" {
				return writeErr(cmd, errors.New("missing --onto"))
			}
			if at < 0 || at > 1 {
				return writeErr(cmd, errors.New("--at must be between 0 and 1"))
			}

			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			e := s.engine
			e.DragStart(args[0])
			if !e.Dragging() {
				return writeErr(cmd, tree.NotFoundError{Kind: "item", ID: args[0]})
			}

			// One unit-height row at the origin; the dragged row's center sits at `at`.
			hover := dragdrop.Hover{ID: onto, Rect: dragdrop.Rect{Top: 0, Height: 1}}
			if strings.EqualFold(onto, dragdrop.RootID) {
				hover = dragdrop.Hover{Root: true}
			}
			decision := e.DragMove(dragdrop.Rect{Top: at - 0.5, Height: 1}, hover)
			snap := dragdrop.Snapshot{SubjectID: args[0], HoveredID: decision.HoveredID, Position: decision.Position}
			t, idx := e.State().Snapshot()
			why := dragdrop.Explain(snap, t, idx)

			p, c, ok := e.DragEnd()
			if !ok {
				out := map[string]any{"applied": false, "decision": decision}
				var ime dragdrop.IllegalMoveError
				if errors.As(why, &ime) {
					out["reason"] = ime.Reason
				}
				return writeOut(cmd, app, map[string]any{"data": out})
			}
			if err := p.Await(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"applied":  true,
					"decision": decision,
					"command":  c,
				},
			})
		},
	}
	cmd.Flags().StringVar(&onto, "onto", "", "Hovered item id, or ROOT for the top-level zone")
	cmd.Flags().Float64Var(&at, "at", 0.5, "Pointer position within the hovered row (0 = top, 1 = bottom)")
	return cmd
}

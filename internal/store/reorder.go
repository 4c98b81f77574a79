package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"reqtree/internal/model"
	"reqtree/internal/tree"
)

// MoveFolder re-parents a folder (nil = root). sortOrder nil appends after the new
// parent's folders. Moving a folder under itself or a descendant fails with
// tree.ErrCycle.
func (s *Store) MoveFolder(ctx context.Context, folderID string, parentID *string, sortOrder *int) error {
	return s.mutate(ctx, folderID, model.KindFolder, "move-folder", func(t *tree.Tree) error {
		return t.MoveFolder(folderID, parentID, sortOrder)
	})
}

// MoveLeaf re-parents a request to the end of folderID's requests (nil = root).
func (s *Store) MoveLeaf(ctx context.Context, leafID string, folderID *string) error {
	return s.mutate(ctx, leafID, model.KindLeaf, "move-leaf", func(t *tree.Tree) error {
		return t.MoveLeaf(leafID, folderID)
	})
}

// ReorderFolders replaces the order of a sibling set of folders. orderedIDs must be
// every folder under one parent.
func (s *Store) ReorderFolders(ctx context.Context, orderedIDs []string) error {
	return s.reorder(ctx, model.KindFolder, orderedIDs)
}

// ReorderLeaves replaces the order of a sibling set of requests.
func (s *Store) ReorderLeaves(ctx context.Context, orderedIDs []string) error {
	return s.reorder(ctx, model.KindLeaf, orderedIDs)
}

func (s *Store) reorder(ctx context.Context, kind model.Kind, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return tree.ErrOrderMismatch
	}
	return s.mutate(ctx, orderedIDs[0], kind, "reorder-"+string(kind), func(t *tree.Tree) error {
		parent, k, ok := t.ParentOfAll(orderedIDs)
		if !ok || k != kind {
			return tree.ErrOrderMismatch
		}
		return t.Reorder(parent, kind, orderedIDs)
	})
}

type placement struct {
	kind   model.Kind
	parent string
	order  int
}

func placements(t *tree.Tree) map[string]placement {
	out := map[string]placement{}
	t.Walk(func(it *model.Item, _ int) bool {
		out[it.ID] = placement{kind: it.Kind, parent: it.Parent(), order: it.SortOrder}
		return true
	})
	return out
}

// mutate loads the subject's workspace inside a transaction, applies fn to it and
// writes back only the rows whose parent or position changed.
func (s *Store) mutate(ctx context.Context, subjectID string, kind model.Kind, op string, fn func(t *tree.Tree) error) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ws, k, ok, err := workspaceOf(ctx, tx, subjectID)
	if err != nil {
		return err
	}
	if !ok || k != kind {
		return tree.NotFoundError{Kind: string(kind), ID: subjectID}
	}
	items, err := loadItems(ctx, tx, ws)
	if err != nil {
		return err
	}
	t := tree.New(ws, items)
	before := placements(t)
	if err := fn(t); err != nil {
		return err
	}

	now := time.Now().UTC().UnixMilli()
	changed := 0
	for id, p := range placements(t) {
		if before[id] == p {
			continue
		}
		if err := writePlacement(ctx, tx, id, p, now); err != nil {
			return fmt.Errorf("update %s: %w", id, err)
		}
		changed++
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"op":        op,
		"subject":   subjectID,
		"workspace": ws,
		"rows":      changed,
	}).Debug("Applied tree mutation")
	return nil
}

func writePlacement(ctx context.Context, tx *sql.Tx, id string, p placement, now int64) error {
	q := `UPDATE leaves SET folder_id = ?, sort_order = ?, updated_at_unixms = ? WHERE id = ?`
	if p.kind == model.KindFolder {
		q = `UPDATE folders SET parent_id = ?, sort_order = ?, updated_at_unixms = ? WHERE id = ?`
	}
	_, err := tx.ExecContext(ctx, q, p.parent, p.order, now, id)
	return err
}

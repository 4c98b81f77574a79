package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"reqtree/internal/model"
	"reqtree/internal/tree"
)

var ErrWorkspaceExists = errors.New("workspace already exists")

func (s *Store) CreateWorkspace(ctx context.Context, name string) (model.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Workspace{}, errors.New("workspace name is empty")
	}
	db, err := s.conn()
	if err != nil {
		return model.Workspace{}, err
	}
	if _, err := s.lookupWorkspace(ctx, db, name); err == nil {
		return model.Workspace{}, fmt.Errorf("%w: %s", ErrWorkspaceExists, name)
	}
	id, err := newUniqueID(ctx, db, "ws")
	if err != nil {
		return model.Workspace{}, err
	}
	now := time.Now().UTC()
	if _, err := db.ExecContext(ctx, `INSERT INTO workspaces(id, name, created_at_unixms) VALUES(?, ?, ?)`, id, name, now.UnixMilli()); err != nil {
		return model.Workspace{}, err
	}
	s.log.WithFields(logrus.Fields{"workspace": id, "name": name}).Info("Created workspace")
	return model.Workspace{ID: id, Name: name, CreatedAt: time.UnixMilli(now.UnixMilli()).UTC()}, nil
}

func (s *Store) Workspaces(ctx context.Context) ([]model.Workspace, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT id, name, created_at_unixms FROM workspaces ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Workspace{}
	for rows.Next() {
		var (
			ws      model.Workspace
			created int64
		)
		if err := rows.Scan(&ws.ID, &ws.Name, &created); err != nil {
			return nil, err
		}
		ws.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, ws)
	}
	return out, rows.Err()
}

// Workspace resolves a workspace by id or name.
func (s *Store) Workspace(ctx context.Context, idOrName string) (model.Workspace, error) {
	db, err := s.conn()
	if err != nil {
		return model.Workspace{}, err
	}
	return s.lookupWorkspace(ctx, db, idOrName)
}

func (s *Store) lookupWorkspace(ctx context.Context, q queryer, idOrName string) (model.Workspace, error) {
	idOrName = strings.TrimSpace(idOrName)
	var (
		ws      model.Workspace
		created int64
	)
	err := q.QueryRowContext(ctx,
		`SELECT id, name, created_at_unixms FROM workspaces WHERE id = ? OR name = ? ORDER BY id = ? DESC LIMIT 1`,
		idOrName, idOrName, idOrName,
	).Scan(&ws.ID, &ws.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Workspace{}, tree.NotFoundError{Kind: "workspace", ID: idOrName}
	}
	if err != nil {
		return model.Workspace{}, err
	}
	ws.CreatedAt = time.UnixMilli(created).UTC()
	return ws, nil
}

// CreateFolder appends a folder after the existing folders of parentID (nil = root).
func (s *Store) CreateFolder(ctx context.Context, workspaceID, name string, parentID *string) (model.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Item{}, errors.New("folder name is empty")
	}
	return s.create(ctx, workspaceID, parentID, func(tx *sql.Tx, parent string, now int64) (model.Item, error) {
		id, err := newUniqueID(ctx, tx, "fld")
		if err != nil {
			return model.Item{}, err
		}
		order, err := nextSortOrder(ctx, tx, "folders", "parent_id", workspaceID, parent)
		if err != nil {
			return model.Item{}, err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO folders(id, workspace_id, parent_id, name, sort_order, created_at_unixms, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?, ?)`,
			id, workspaceID, parent, name, order, now, now,
		); err != nil {
			return model.Item{}, err
		}
		return model.Item{ID: id, Kind: model.KindFolder, Name: name, WorkspaceID: workspaceID, ParentID: model.ParentPtr(parent), SortOrder: order}, nil
	})
}

// CreateLeaf appends a request after the existing requests of folderID (nil = root).
func (s *Store) CreateLeaf(ctx context.Context, workspaceID, name, method, url string, folderID *string) (model.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Item{}, errors.New("request name is empty")
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = "GET"
	}
	return s.create(ctx, workspaceID, folderID, func(tx *sql.Tx, folder string, now int64) (model.Item, error) {
		id, err := newUniqueID(ctx, tx, "req")
		if err != nil {
			return model.Item{}, err
		}
		order, err := nextSortOrder(ctx, tx, "leaves", "folder_id", workspaceID, folder)
		if err != nil {
			return model.Item{}, err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO leaves(id, workspace_id, folder_id, name, method, url, sort_order, created_at_unixms, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, workspaceID, folder, name, method, strings.TrimSpace(url), order, now, now,
		); err != nil {
			return model.Item{}, err
		}
		return model.Item{ID: id, Kind: model.KindLeaf, Name: name, WorkspaceID: workspaceID, ParentID: model.ParentPtr(folder), SortOrder: order, Method: method, URL: strings.TrimSpace(url)}, nil
	})
}

func (s *Store) create(ctx context.Context, workspaceID string, parentID *string, insert func(tx *sql.Tx, parent string, now int64) (model.Item, error)) (model.Item, error) {
	db, err := s.conn()
	if err != nil {
		return model.Item{}, err
	}
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return model.Item{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := s.lookupWorkspace(ctx, tx, workspaceID); err != nil {
		return model.Item{}, err
	}
	parent := ""
	if parentID != nil {
		parent = strings.TrimSpace(*parentID)
	}
	if parent != "" {
		ws, kind, ok, err := workspaceOf(ctx, tx, parent)
		if err != nil {
			return model.Item{}, err
		}
		if !ok || ws != workspaceID {
			return model.Item{}, tree.NotFoundError{Kind: "folder", ID: parent}
		}
		if kind != model.KindFolder {
			return model.Item{}, tree.ErrNotFolder
		}
	}

	now := time.Now().UTC().UnixMilli()
	it, err := insert(tx, parent, now)
	if err != nil {
		return model.Item{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Item{}, err
	}
	it.CreatedAt = time.UnixMilli(now).UTC()
	s.log.WithFields(logrus.Fields{"id": it.ID, "kind": it.Kind, "parent": parent}).Debug("Created item")
	return it, nil
}

// FetchTree loads the workspace's folders and leaves and nests them.
func (s *Store) FetchTree(ctx context.Context, workspaceID string) (*tree.Tree, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	ws, err := s.lookupWorkspace(ctx, db, workspaceID)
	if err != nil {
		return nil, err
	}
	items, err := loadItems(ctx, db, ws.ID)
	if err != nil {
		return nil, err
	}
	return tree.New(ws.ID, items), nil
}

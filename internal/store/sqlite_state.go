package store

import (
	"context"
	"database/sql"
	"time"

	"reqtree/internal/model"

	_ "modernc.org/sqlite"
)

// queryer is the part of *sql.DB and *sql.Tx the loaders need.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Pragmas are per connection; keep a single one so they always apply.
	db.SetMaxOpenConns(1)
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS workspaces (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_workspaces_name ON workspaces(name);`,
		`CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
			parent_id TEXT NOT NULL,
			name TEXT NOT NULL,
			sort_order INTEGER NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_folders_parent ON folders(workspace_id, parent_id, sort_order);`,
		`CREATE TABLE IF NOT EXISTS leaves (
			id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
			folder_id TEXT NOT NULL,
			name TEXT NOT NULL,
			method TEXT NOT NULL,
			url TEXT NOT NULL,
			sort_order INTEGER NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_leaves_folder ON leaves(workspace_id, folder_id, sort_order);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// loadItems reads every folder and leaf of a workspace as flat items.
func loadItems(ctx context.Context, q queryer, workspaceID string) ([]model.Item, error) {
	var out []model.Item

	rows, err := q.QueryContext(ctx, `SELECT id, parent_id, name, sort_order, created_at_unixms FROM folders WHERE workspace_id = ?`, workspaceID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			it       model.Item
			parentID string
			created  int64
		)
		if err := rows.Scan(&it.ID, &parentID, &it.Name, &it.SortOrder, &created); err != nil {
			_ = rows.Close()
			return nil, err
		}
		it.Kind = model.KindFolder
		it.WorkspaceID = workspaceID
		it.ParentID = model.ParentPtr(parentID)
		it.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, it)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = q.QueryContext(ctx, `SELECT id, folder_id, name, method, url, sort_order, created_at_unixms FROM leaves WHERE workspace_id = ?`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it       model.Item
			folderID string
			created  int64
		)
		if err := rows.Scan(&it.ID, &folderID, &it.Name, &it.Method, &it.URL, &it.SortOrder, &created); err != nil {
			return nil, err
		}
		it.Kind = model.KindLeaf
		it.WorkspaceID = workspaceID
		it.ParentID = model.ParentPtr(folderID)
		it.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, it)
	}
	return out, rows.Err()
}

// workspaceOf returns the workspace and kind of an item id.
func workspaceOf(ctx context.Context, q queryer, id string) (string, model.Kind, bool, error) {
	var ws string
	err := q.QueryRowContext(ctx, `SELECT workspace_id FROM folders WHERE id = ?`, id).Scan(&ws)
	if err == nil {
		return ws, model.KindFolder, true, nil
	}
	if err != sql.ErrNoRows {
		return "", "", false, err
	}
	err = q.QueryRowContext(ctx, `SELECT workspace_id FROM leaves WHERE id = ?`, id).Scan(&ws)
	if err == nil {
		return ws, model.KindLeaf, true, nil
	}
	if err != sql.ErrNoRows {
		return "", "", false, err
	}
	return "", "", false, nil
}

func nextSortOrder(ctx context.Context, q queryer, table, parentCol, workspaceID, parentID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM `+table+` WHERE workspace_id = ? AND `+parentCol+` = ?`,
		workspaceID, parentID,
	).Scan(&n)
	return n, err
}

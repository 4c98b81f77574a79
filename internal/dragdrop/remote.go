package dragdrop

import (
	"context"

	"reqtree/internal/tree"
)

// Remote is the persistence boundary. Every call may fail independently.
type Remote interface {
	MoveFolder(ctx context.Context, folderID string, parentID *string, sortOrder *int) error
	MoveLeaf(ctx context.Context, leafID string, folderID *string) error
	ReorderFolders(ctx context.Context, orderedIDs []string) error
	ReorderLeaves(ctx context.Context, orderedIDs []string) error
}

// Source loads the authoritative tree.
type Source interface {
	FetchTree(ctx context.Context, workspaceID string) (*tree.Tree, error)
}

func call(ctx context.Context, r Remote, cmd Command) error {
	switch cmd.Kind {
	case CommandMoveFolder:
		return r.MoveFolder(ctx, cmd.SubjectID, cmd.ParentID, cmd.SortOrder)
	case CommandMoveLeaf:
		return r.MoveLeaf(ctx, cmd.SubjectID, cmd.ParentID)
	case CommandReorderFolders:
		return r.ReorderFolders(ctx, cmd.OrderedIDs)
	case CommandReorderLeaves:
		return r.ReorderLeaves(ctx, cmd.OrderedIDs)
	}
	return IllegalMoveError{Reason: "unknown command " + string(cmd.Kind)}
}

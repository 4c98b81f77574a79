package dragdrop

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"reqtree/internal/model"
	"reqtree/internal/tree"
)

type CommandKind string

const (
	CommandMoveFolder     CommandKind = "move-folder"
	CommandMoveLeaf       CommandKind = "move-leaf"
	CommandReorderFolders CommandKind = "reorder-folders"
	CommandReorderLeaves  CommandKind = "reorder-leaves"
)

// Command is the single persisted effect of a completed drag.
//
// For moves, ParentID is the new parent (nil = root). For reorders, ParentID is the
// parent whose children OrderedIDs lists.
type Command struct {
	ID         string      `json:"id"`
	Kind       CommandKind `json:"kind"`
	SubjectID  string      `json:"subjectId"`
	ParentID   *string     `json:"parentId"`
	SortOrder  *int        `json:"sortOrder,omitempty"`
	OrderedIDs []string    `json:"orderedIds,omitempty"`
}

func newCommand(kind CommandKind, subjectID string, parentID *string) Command {
	return Command{
		ID:        uuid.NewString(),
		Kind:      kind,
		SubjectID: subjectID,
		ParentID:  model.ParentPtr(derefStr(parentID)),
	}
}

// ApplyTo performs the command on t in place. Callers pass a clone.
func (c Command) ApplyTo(t *tree.Tree) error {
	switch c.Kind {
	case CommandMoveFolder:
		return t.MoveFolder(c.SubjectID, c.ParentID, c.SortOrder)
	case CommandMoveLeaf:
		return t.MoveLeaf(c.SubjectID, c.ParentID)
	case CommandReorderFolders:
		return t.Reorder(c.ParentID, model.KindFolder, c.OrderedIDs)
	case CommandReorderLeaves:
		return t.Reorder(c.ParentID, model.KindLeaf, c.OrderedIDs)
	default:
		return fmt.Errorf("unknown command kind: %s", c.Kind)
	}
}

func (c Command) String() string {
	parent := "root"
	if c.ParentID != nil {
		parent = *c.ParentID
	}
	switch c.Kind {
	case CommandReorderFolders, CommandReorderLeaves:
		return fmt.Sprintf("%s(%s, [%s])", c.Kind, parent, strings.Join(c.OrderedIDs, ", "))
	default:
		return fmt.Sprintf("%s(%s -> %s)", c.Kind, c.SubjectID, parent)
	}
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

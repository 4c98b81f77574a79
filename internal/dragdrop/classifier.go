package dragdrop

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"reqtree/internal/model"
	"reqtree/internal/tree"
)

// RootID is the synthetic id of the "move to root" drop zone.
const RootID = "ROOT"

type Position string

const (
	PositionNone   Position = ""
	PositionRoot   Position = "root"
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
	PositionInside Position = "inside"
)

// Rect is a row's vertical extent in host coordinates.
type Rect struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

func (r Rect) CenterY() float64 { return r.Top + r.Height/2 }

// Hover describes what the pointer is over. The zero value means nothing.
type Hover struct {
	ID   string
	Root bool
	Rect Rect
}

func (h Hover) Empty() bool { return !h.Root && h.ID == "" }

// DropDecision is what a release would do right now. HoveredID may differ from the
// row under the pointer when a drag is redirected to that row's folder.
type DropDecision struct {
	HoveredID string   `json:"hoveredId,omitempty"`
	Position  Position `json:"position,omitempty"`
}

func (d DropDecision) Empty() bool { return d.Position == PositionNone }

// Thresholds are the row-height fractions used to split a hovered row into bands.
type Thresholds struct {
	// FolderSurfaceEdge is the outer band of a folder row that still means before/after
	// when a leaf is dragged in from another parent.
	FolderSurfaceEdge float64 `json:"folderSurfaceEdge"`
	// FolderEdge is the top/bottom band of a folder row for same-parent drags.
	FolderEdge float64 `json:"folderEdge"`
	// LeafSplit divides a leaf row into before (above) and after.
	LeafSplit float64 `json:"leafSplit"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		FolderSurfaceEdge: 0.15,
		FolderEdge:        0.25,
		LeafSplit:         0.5,
	}
}

func (t Thresholds) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.FolderSurfaceEdge, validation.Required, validation.Min(0.0).Exclusive(), validation.Max(0.5).Exclusive()),
		validation.Field(&t.FolderEdge, validation.Required, validation.Min(0.0).Exclusive(), validation.Max(0.5).Exclusive()),
		validation.Field(&t.LeafSplit, validation.Required, validation.Min(0.0).Exclusive(), validation.Max(1.0).Exclusive()),
	)
}

// Classifier maps pointer geometry to a DropDecision. It keeps no state between
// calls.
type Classifier struct {
	Thresholds Thresholds
}

func NewClassifier(th Thresholds) Classifier {
	return Classifier{Thresholds: th}
}

// Classify resolves the drop decision for dragging subjectID with its row currently
// at pointer over hover.
func (c Classifier) Classify(pointer Rect, subjectID string, hover Hover, idx tree.Index) DropDecision {
	if hover.Root {
		return DropDecision{HoveredID: RootID, Position: PositionRoot}
	}
	if hover.Empty() {
		return DropDecision{}
	}
	subject, ok := idx.Lookup(subjectID)
	if !ok {
		return DropDecision{}
	}
	hovered, ok := idx.Lookup(hover.ID)
	if !ok {
		return DropDecision{}
	}

	height := hover.Rect.Height
	if height <= 0 {
		height = 1
	}
	rel := (pointer.CenterY() - hover.Rect.Top) / height
	crossing := !model.SameParent(subject.ParentID, hovered.ParentID)

	if subject.Item.IsLeaf() && crossing {
		// Dropping a request onto a request in a foreign folder means "put it in that folder".
		if hovered.Item.IsLeaf() && hovered.ParentID != nil {
			return DropDecision{HoveredID: *hovered.ParentID, Position: PositionInside}
		}
		if hovered.Item.IsFolder() {
			edge := c.Thresholds.FolderSurfaceEdge
			return DropDecision{HoveredID: hovered.Item.ID, Position: bands(rel, edge, 1-edge)}
		}
	}

	if hovered.Item.IsFolder() {
		edge := c.Thresholds.FolderEdge
		return DropDecision{HoveredID: hovered.Item.ID, Position: bands(rel, edge, 1-edge)}
	}
	if rel < c.Thresholds.LeafSplit {
		return DropDecision{HoveredID: hovered.Item.ID, Position: PositionBefore}
	}
	return DropDecision{HoveredID: hovered.Item.ID, Position: PositionAfter}
}

func bands(rel, lo, hi float64) Position {
	switch {
	case rel < lo:
		return PositionBefore
	case rel > hi:
		return PositionAfter
	default:
		return PositionInside
	}
}

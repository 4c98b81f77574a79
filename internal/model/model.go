package model

import (
	"strings"
	"time"
)

type Kind string

const (
	// KindFolder is a collection: it owns an ordered list of children.
	KindFolder Kind = "folder"
	// KindLeaf is a concrete request. It never has children.
	KindLeaf Kind = "leaf"
)

type Workspace struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Item is a node of the collection tree.
//
// Folders list their child folders first, then their child leaves; each of the
// two groups is ordered by SortOrder independently.
type Item struct {
	ID          string  `json:"id" yaml:"id"`
	Kind        Kind    `json:"kind" yaml:"kind"`
	Name        string  `json:"name" yaml:"name"`
	WorkspaceID string  `json:"workspaceId" yaml:"workspaceId"`
	ParentID    *string `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	SortOrder   int     `json:"sortOrder" yaml:"sortOrder"`

	Children []*Item `json:"children,omitempty" yaml:"children,omitempty"`

	// Leaf fields.
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`

	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

func (it *Item) IsFolder() bool { return it != nil && it.Kind == KindFolder }
func (it *Item) IsLeaf() bool   { return it != nil && it.Kind == KindLeaf }

// Parent returns the parent id, or "" for root-level items.
func (it *Item) Parent() string {
	if it == nil || it.ParentID == nil {
		return ""
	}
	return strings.TrimSpace(*it.ParentID)
}

// SameParent reports whether a and b point at the same parent (nil and "" both mean root).
func SameParent(a, b *string) bool {
	return deref(a) == deref(b)
}

// ParentPtr converts "" to nil so callers can compare parents uniformly.
func ParentPtr(id string) *string {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return &id
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

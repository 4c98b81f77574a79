package tui

import (
	"reqtree/internal/model"
	"reqtree/internal/tree"
)

type outlineRow struct {
	item        *model.Item
	parentID    string
	depth       int
	hasChildren bool
	collapsed   bool
}

// flattenTree lists the visible rows depth-first in display order. Children of
// collapsed folders are skipped.
func flattenTree(t *tree.Tree, collapsed map[string]bool) []outlineRow {
	if t == nil {
		return nil
	}
	var out []outlineRow
	var walk func(items []*model.Item, parentID string, depth int)
	walk = func(items []*model.Item, parentID string, depth int) {
		for _, it := range items {
			if it == nil {
				continue
			}
			out = append(out, outlineRow{
				item:        it,
				parentID:    parentID,
				depth:       depth,
				hasChildren: len(it.Children) > 0,
				collapsed:   it.IsFolder() && collapsed[it.ID],
			})
			if it.IsFolder() && !collapsed[it.ID] {
				walk(it.Children, it.ID, depth+1)
			}
		}
	}
	walk(t.Roots, "", 0)
	return out
}

func rowIndexByID(rows []outlineRow, id string) int {
	for i := range rows {
		if rows[i].item.ID == id {
			return i
		}
	}
	return -1
}

package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"reqtree/internal/model"
	"reqtree/internal/tree"
)

// RenderTreeMarkdown renders the workspace as a nested list in display order.
// Requests link to their own pages under requests/.
func RenderTreeMarkdown(ws model.Workspace, t *tree.Tree) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	title := strings.TrimSpace(ws.Name)
	if title == "" {
		title = ws.ID
	} else if ws.ID != "" {
		title += " (" + ws.ID + ")"
	}
	writeLn("# " + title)
	writeLn("")

	if t == nil || len(t.Roots) == 0 {
		writeLn("_No folders or requests._")
		return buf.String()
	}

	t.Walk(func(it *model.Item, depth int) bool {
		prefix := strings.Repeat("  ", depth)
		if it.IsFolder() {
			fmt.Fprintf(&buf, "%s- **%s/**\n", prefix, strings.TrimSpace(it.Name))
		} else {
			fmt.Fprintf(&buf, "%s- `%s` [%s](requests/%s.md)\n", prefix, methodOf(it), strings.TrimSpace(it.Name), it.ID)
		}
		return true
	})
	return buf.String()
}

// RenderRequestMarkdown renders one request page. path lists the names of the
// enclosing folders, outermost first.
func RenderRequestMarkdown(it *model.Item, path []string) (string, error) {
	if it == nil {
		return "", fmt.Errorf("missing item")
	}
	if !it.IsLeaf() {
		return "", fmt.Errorf("not a request: %s", it.ID)
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(it.Name))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + it.ID)
	writeLn("- Method: " + methodOf(it))
	if u := strings.TrimSpace(it.URL); u != "" {
		writeLn("- URL: " + u)
	}
	if len(path) > 0 {
		writeLn("- Folder: " + strings.Join(path, " / "))
	} else {
		writeLn("- Folder: (top level)")
	}
	if !it.CreatedAt.IsZero() {
		writeLn("- Created: " + it.CreatedAt.UTC().Format(time.RFC3339))
	}
	return buf.String(), nil
}

func methodOf(it *model.Item) string {
	m := strings.ToUpper(strings.TrimSpace(it.Method))
	if m == "" {
		return "GET"
	}
	return m
}

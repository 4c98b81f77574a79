package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"reqtree/internal/model"
	"reqtree/internal/tree"
)

type WriteOptions struct {
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteTree writes index.md plus one page per request under toDir.
func WriteTree(ws model.Workspace, t *tree.Tree, toDir string, opt WriteOptions) (WriteResult, error) {
	if t == nil {
		return WriteResult{}, errors.New("missing tree")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	requestsDir := filepath.Join(toDir, "requests")
	if err := os.MkdirAll(requestsDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderTreeMarkdown(ws, t)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	written := []string{indexPath}

	// Stops on the first error; pages already written stay.
	var path []string
	var werr error
	t.Walk(func(it *model.Item, depth int) bool {
		if werr != nil {
			return false
		}
		path = path[:min(depth, len(path))]
		if it.IsFolder() {
			path = append(path, strings.TrimSpace(it.Name))
			return true
		}
		md, err := RenderRequestMarkdown(it, path)
		if err != nil {
			werr = err
			return false
		}
		p := filepath.Join(requestsDir, it.ID+".md")
		if err := writeFile(p, []byte(md), opt.Overwrite); err != nil {
			werr = err
			return false
		}
		written = append(written, p)
		return true
	})
	if werr != nil {
		return WriteResult{}, werr
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}

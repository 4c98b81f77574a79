package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"reqtree/internal/model"
	"reqtree/internal/tree"
)

const DefaultTimeout = 10 * time.Second

// HTTPError is a non-2xx answer from the server.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Is lets callers match server rejections against the tree package's errors.
func (e *HTTPError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusConflict:
		return target == tree.ErrCycle
	case http.StatusUnprocessableEntity:
		return target == tree.ErrOrderMismatch
	}
	return false
}

// Client talks to a reqtree API server. It caches the last fetched tree per
// workspace; any mutation through the client drops the cache.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	log     logrus.FieldLogger

	mu    sync.Mutex
	cache map[string]*tree.Tree
}

func New(baseURL string, timeout time.Duration, log logrus.FieldLogger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote url must be http(s): %q", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Client{
		base:    u,
		http:    &http.Client{},
		timeout: timeout,
		log:     log.WithField("component", "remote"),
		cache:   map[string]*tree.Tree{},
	}, nil
}

// Invalidate drops every cached tree.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.cache = map[string]*tree.Tree{}
	c.mu.Unlock()
}

func (c *Client) FetchTree(ctx context.Context, workspaceID string) (*tree.Tree, error) {
	c.mu.Lock()
	cached := c.cache[workspaceID]
	c.mu.Unlock()
	if cached != nil {
		return cached.Clone(), nil
	}

	var t tree.Tree
	if err := c.do(ctx, http.MethodGet, "/api/v1/workspaces/"+url.PathEscape(workspaceID)+"/tree", nil, &t); err != nil {
		return nil, err
	}
	// Rebuild through New so sibling order is normalized locally.
	var flat []model.Item
	t.Walk(func(it *model.Item, _ int) bool {
		flat = append(flat, *it)
		return true
	})
	out := tree.New(t.WorkspaceID, flat)

	c.mu.Lock()
	c.cache[workspaceID] = out
	c.mu.Unlock()
	return out.Clone(), nil
}

type moveFolderRequest struct {
	ParentID  *string `json:"parentId"`
	SortOrder *int    `json:"sortOrder,omitempty"`
}

type moveLeafRequest struct {
	FolderID *string `json:"folderId"`
}

type reorderRequest struct {
	OrderedIDs []string `json:"orderedIds"`
}

func (c *Client) MoveFolder(ctx context.Context, folderID string, parentID *string, sortOrder *int) error {
	c.Invalidate()
	return c.do(ctx, http.MethodPost, "/api/v1/folders/"+url.PathEscape(folderID)+"/move", moveFolderRequest{ParentID: parentID, SortOrder: sortOrder}, nil)
}

func (c *Client) MoveLeaf(ctx context.Context, leafID string, folderID *string) error {
	c.Invalidate()
	return c.do(ctx, http.MethodPost, "/api/v1/leaves/"+url.PathEscape(leafID)+"/move", moveLeafRequest{FolderID: folderID}, nil)
}

func (c *Client) ReorderFolders(ctx context.Context, orderedIDs []string) error {
	c.Invalidate()
	return c.do(ctx, http.MethodPut, "/api/v1/folders/reorder", reorderRequest{OrderedIDs: orderedIDs}, nil)
}

func (c *Client) ReorderLeaves(ctx context.Context, orderedIDs []string) error {
	c.Invalidate()
	return c.do(ctx, http.MethodPut, "/api/v1/leaves/reorder", reorderRequest{OrderedIDs: orderedIDs}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("Remote call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var er struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &er) != nil || er.Error == "" {
			er.Error = strings.TrimSpace(string(raw))
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: er.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// IsUnavailable reports whether err came from the transport rather than the server.
func IsUnavailable(err error) bool {
	var he *HTTPError
	return err != nil && !errors.As(err, &he)
}

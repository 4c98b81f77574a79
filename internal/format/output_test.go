package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	WorkspaceID string   `json:"workspaceId" yaml:"workspaceId"`
	SortOrder   int      `json:"sortOrder" yaml:"sortOrder"`
	ParentID    *string  `json:"parentId" yaml:"parentId"`
	Tags        []string `json:"tags" yaml:"tags"`
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample{WorkspaceID: "ws-1", SortOrder: 2}, "", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{"workspaceId":"ws-1","sortOrder":2,"parentId":null,"tags":null}` + "\n"
	if buf.String() != want {
		t.Fatalf("expected %q; got %q", want, buf.String())
	}
}

func TestWrite_EDN(t *testing.T) {
	var buf bytes.Buffer
	v := sample{WorkspaceID: "ws-1", SortOrder: 2, Tags: []string{"a", "b"}}
	if err := Write(&buf, v, "edn", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{:parent-id nil :sort-order 2 :tags ["a" "b"] :workspace-id "ws-1"}` + "\n"
	if buf.String() != want {
		t.Fatalf("expected %q; got %q", want, buf.String())
	}

	buf.Reset()
	if err := WriteEDN(&buf, map[string]any{"xs": []any{}}, true); err != nil {
		t.Fatalf("write pretty: %v", err)
	}
	if got := buf.String(); got != "{\n  :xs []\n}\n" {
		t.Fatalf("unexpected pretty output: %q", got)
	}
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample{WorkspaceID: "ws-1", Tags: []string{"a"}}, "yaml", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"workspaceId: ws-1", "sortOrder: 0", "tags:\n  - a"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "xml", false); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEDNKeyword(t *testing.T) {
	cases := map[string]string{
		"workspaceId": "workspace-id",
		"id":          "id",
		"created_at":  "created-at",
		"a b":         "a-b",
	}
	for in, want := range cases {
		if got := ednKeyword(in); got != want {
			t.Fatalf("ednKeyword(%q) = %q; want %q", in, got, want)
		}
	}
}

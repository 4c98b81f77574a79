package cli

import (
	"errors"
	"fmt"
)

var (
	errNoWorkspace          = errors.New("no workspace; run `reqtree init` first")
	errRemoteNeedsWorkspace = errors.New("with --remote, pass --workspace <id> (or set currentWorkspace in config)")
)

type errAmbiguousWorkspace struct {
	count int
}

func (e errAmbiguousWorkspace) Error() string {
	return fmt.Sprintf("%d workspaces exist; pick one with --workspace or `reqtree workspaces use <name>`", e.count)
}

type flagConflictError struct {
	flags []string
}

func (e flagConflictError) Error() string {
	return fmt.Sprintf("provide exactly one of %s", joinFlags(e.flags))
}

func joinFlags(flags []string) string {
	switch len(flags) {
	case 0:
		return ""
	case 1:
		return flags[0]
	}
	out := ""
	for i, f := range flags {
		switch {
		case i == 0:
			out = f
		case i == len(flags)-1:
			out += " or " + f
		default:
			out += ", " + f
		}
	}
	return out
}

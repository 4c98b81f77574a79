package main

import (
	"os"
	"strings"

	"reqtree/internal/cli"
)

func isItemID(s string) bool {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"fld-", "req-"} {
		if strings.HasPrefix(s, prefix) && len(s) > len(prefix) {
			return true
		}
	}
	return false
}

// rewriteDirectItemLookupArgs makes `reqtree <id>` work like `reqtree show <id>`.
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten before
// parsing. Persistent flags may come first, so we look for the first positional token.
func rewriteDirectItemLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":       true,
		"--workspace": true,
		"--remote":    true,
		"--format":    true,
		"--log-level": true,
	}

	insertShow := func(at int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:at]...)
		out = append(out, "show")
		return append(out, argv[at:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) && isItemID(argv[i+1]) {
				return insertShow(i + 1)
			}
			return argv
		case strings.HasPrefix(a, "-"):
			// Unknown flags are skipped without consuming a value.
			if valueFlags[a] && !strings.Contains(a, "=") {
				i++
			}
			continue
		case isItemID(a):
			return insertShow(i)
		default:
			return argv
		}
	}
	return argv
}

func main() {
	os.Args = rewriteDirectItemLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

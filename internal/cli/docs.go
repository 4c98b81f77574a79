package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reqtree/internal/docs"
)

type docsTopic struct {
	Name  string `json:"name" yaml:"name"`
	Title string `json:"title" yaml:"title"`
}

func newDocsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show built-in documentation on moving items, configuration and sharing",
		Example: strings.TrimSpace(`
  reqtree docs
  reqtree docs moving --raw | less`),
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return docs.Topics(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				topics := []docsTopic{}
				for _, name := range docs.Topics() {
					topics = append(topics, docsTopic{Name: name, Title: docs.Title(name)})
				}
				if raw {
					for _, t := range topics {
						if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", t.Name, t.Title); err != nil {
							return err
						}
					}
					return nil
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"topics": topics}})
			}

			name := strings.ToLower(strings.TrimSpace(args[0]))
			body, ok := docs.Get(name)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs topic %q; available: %s", args[0], strings.Join(docs.Topics(), ", ")))
			}
			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"name":     name,
				"title":    docs.Title(name),
				"markdown": body,
			}})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print plain text instead of the output envelope")
	return cmd
}

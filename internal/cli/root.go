package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"reqtree/internal/format"
	"reqtree/internal/store"
)

type App struct {
	Dir        string
	Workspace  string
	Remote     string
	LogLevel   string
	PrettyJSON bool
	Format     string

	cfg *store.GlobalConfig
	log *logrus.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "reqtree",
		Short:        "Request collections (local-first) CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive sidebar
  reqtree

  # Scriptable commands
  reqtree tree --plain
  reqtree move req-ab12cd34 --inside fld-ef56gh78

  # Direct item lookup (shortcut for: reqtree show <id>)
  reqtree fld-ef56gh78
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive sidebar.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := store.LoadConfig()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		if app.Remote == "" {
			app.Remote = strings.TrimSpace(cfg.Remote)
		}
		level := app.LogLevel
		if level == "" {
			level = cfg.LogLevel
		}
		log, err := newLogger(cmd.ErrOrStderr(), level)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.log = log
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("REQTREE_DIR", ""), "Path to the .reqtree store dir (default: discovered from the working directory)")
	cmd.PersistentFlags().StringVar(&app.Workspace, "workspace", envOr("REQTREE_WORKSPACE", ""), "Workspace id or name (default: currentWorkspace from config)")
	cmd.PersistentFlags().StringVar(&app.Remote, "remote", envOr("REQTREE_REMOTE", ""), "Base URL of a reqtree server; when set, changes go through its API")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("REQTREE_LOG_LEVEL", ""), "Log level (error|warn|info|debug)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("REQTREE_FORMAT", "json"), "Output format (json|edn|yaml)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newWorkspacesCmd(app))
	cmd.AddCommand(newFoldersCmd(app))
	cmd.AddCommand(newRequestsCmd(app))
	cmd.AddCommand(newTreeCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newDragCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func newLogger(w io.Writer, level string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if level = strings.TrimSpace(level); level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		log.SetLevel(lvl)
	}
	return log, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

package cli

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"reqtree/internal/api"
)

func newServeCmd(app *App) *cobra.Command {
	var listen string
	var rpm int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local store over HTTP for other reqtree clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := localOnly(app, "serve"); err != nil {
				return writeErr(cmd, err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			srv := api.NewServer(app.log, st, api.Options{Listen: listen, RequestsPerMinute: rpm})
			if err := srv.Run(ctx); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", envOr("REQTREE_LISTEN", "127.0.0.1:8787"), "Address to listen on")
	cmd.Flags().IntVar(&rpm, "rate-limit", envInt("REQTREE_RATE_LIMIT", 600), "Mutating requests per minute per client IP (0 disables)")
	return cmd
}

func envInt(k string, d int) int {
	if v, err := strconv.Atoi(envOr(k, "")); err == nil {
		return v
	}
	return d
}

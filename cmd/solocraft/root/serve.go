package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"solocraft/internal/api"
	"solocraft/internal/ui"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API used by the web client",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				addr = cfg.Server.Addr
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconSparkle, "SoloCraft API on http://"+addr))
			return api.NewServer(svc, logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr from config)")
	return cmd
}

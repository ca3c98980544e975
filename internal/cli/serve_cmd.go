package cli

import (
	"time"

	"github.com/budeshi/budeshi/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(state *cmdState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat and project API over HTTP",
		Long: `Serve the JSON API:

  POST /v1/chat             answer a message, with history in the request
  GET  /v1/projects         list projects (q, status, ministry, min_budget, max_budget)
  GET  /v1/projects/search  ranked search (q)
  GET  /v1/projects/:id     one project
  GET  /v1/stats            summary statistics
  GET  /v1/facets           statuses and ministries
  GET  /v1/export.csv       CSV export
  GET  /healthz, /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := state.app
			srv := server.New(server.Deps{
				Projects:  app.Projects,
				Responder: app.Resolver,
				Metrics:   app.Metrics,
				Logger:    app.Logger,
			})
			timeout := time.Duration(app.Config.Server.ShutdownTimeoutMs) * time.Millisecond
			return srv.Run(cmd.Context(), app.Config.Server.Addr, timeout)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default \":8080\")")
	return cmd
}

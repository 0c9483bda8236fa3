package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/planvec/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Run planvec as an MCP (Model Context Protocol) server speaking JSON-RPC 2.0
over stdin and stdout. Logs go to stderr; set PLANVEC_LOG_LEVEL=debug for
per-stage detail. Configuration flags set the defaults every tool call
starts from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())
			logger.Debug("starting MCP server", "version", version, "commit", commit, "built", date)

			srv := server.New(cfg, logger)
			srv.Version = version
			return srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

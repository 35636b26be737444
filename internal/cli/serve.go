package cli

import (
	"formfill-agent/internal/adapter/mcpserver"

	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form tools over MCP",
		Long: `Serve fill_form_and_check, compose_form_task and classify_transcript as MCP
tools. Without --http the server speaks MCP over stdin/stdout; logs go to
the log directory and stderr only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.container("mcp")
			if err != nil {
				return err
			}
			defer c.Close()

			server := mcpserver.New(c.FormFiller(nil), c.Logger, a.version)
			if httpAddr != "" {
				return server.RunHTTP(cmd.Context(), httpAddr)
			}
			return server.RunStdio(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "Serve streamable HTTP on this address (e.g. :8080) instead of stdio")

	return cmd
}

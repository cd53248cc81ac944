package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/abdidvp/plugincheck/internal/adapters/inbound/mcp"
)

func newMCPCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the plugincheck MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(root))
	return cmd
}

func newMCPServeCmd(root *rootOptions) *cobra.Command {
	var pluginPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start plugincheck MCP server (stdio)",
		Long:  "Start the plugincheck MCP server using stdio transport. This lets AI coding assistants score and validate plugins and fetch recommendations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveRoot([]string{pluginPath})
			if err != nil {
				return err
			}
			// stdout carries the protocol; the progress bar and cache stay off.
			root.noProgress = true
			sess := root.newSession(path, false)
			s := mcpadapter.NewPluginCheckMCPServer(path, version, sess.svc)
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&pluginPath, "path", ".", "Plugin path (defaults to current working directory)")

	return cmd
}

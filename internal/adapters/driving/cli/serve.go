package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mcptube/internal/adapters/driving/mcp"
)

var (
	serveStdio bool
	serveHost  string
	servePort  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default the server listens for streamable HTTP on the configured host
and port (server.host, server.port). Use --stdio to speak JSON-RPC over
stdin/stdout instead, which is what desktop assistants launch.

Examples:
  # HTTP mode (MCP Inspector, remote clients)
  mcptube serve --port 9093

  # Stdio mode
  mcptube serve --stdio

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "mcptube": {
        "command": "/path/to/mcptube",
        "args": ["serve", "--stdio"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveStdio, "stdio", false, "use stdio transport instead of HTTP")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "host to bind to (default from settings)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to bind to (default from settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Library:   libraryService,
		Search:    searchService,
		Frame:     frameService,
		Discovery: discoveryService,
	})
	if err != nil {
		return err
	}

	if serveStdio {
		fmt.Fprintln(cmd.ErrOrStderr(), "Starting mcptube MCP server (stdio)...")
		return server.Run(cmd.Context())
	}

	addr, err := serveAddr()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Starting mcptube MCP server on http://%s%s\n", addr, mcp.EndpointPath)
	return server.RunHTTP(cmd.Context(), addr)
}

// serveAddr combines the flags with the configured defaults.
func serveAddr() (string, error) {
	host, port := serveHost, servePort
	if (host == "" || port == 0) && settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return "", fmt.Errorf("loading settings: %w", err)
		}
		if host == "" {
			host = settings.Server.Host
		}
		if port == 0 {
			port = settings.Server.Port
		}
	}
	if host == "" {
		host = "127.0.0.1"
	}
	if port <= 0 || port > 65535 {
		return "", fmt.Errorf("invalid port %d", port)
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

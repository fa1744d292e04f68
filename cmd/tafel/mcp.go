package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aretw0/tafel"
	"github.com/aretw0/tafel/internal/cli"
	"github.com/aretw0/tafel/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the assistant to AI agents as MCP tools (ask_faq, chat).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		sc := cli.NewShutdownContext(cmd.Context())
		defer sc.Stop()

		app, err := newApp(sc, cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		srv := mcp.NewServer(app.assistant, tafel.Version, mcp.WithLogger(app.logger))

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			app.logger.Info("starting MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			addr := fmt.Sprintf(":%d", port)
			return srv.ServeSSE(sc, addr, fmt.Sprintf("http://localhost:%d", port))
		default:
			return fmt.Errorf("unknown transport %q (use stdio or sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().Int("port", 8081, "Port for the sse transport")
}

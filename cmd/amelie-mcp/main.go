package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/adamavenir/amelie/internal/core"
	"github.com/adamavenir/amelie/internal/mcp"
)

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "-h", "--help", "help":
			printUsage()
			os.Exit(0)
		default:
			printUsage()
			os.Exit(1)
		}
	}

	settings, err := core.LoadSettings(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load settings: %v\n", err)
		os.Exit(1)
	}

	server, err := mcp.NewServer(settings, Version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start MCP server: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		_ = server.Close()
		os.Exit(0)
	}()

	if err := server.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
	_ = server.Close()
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: amelie-mcp")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Serves a travel guide session over MCP on stdio.")
	fmt.Fprintln(os.Stderr, "Settings come from ~/.config/amelie/config.json, .env and AMELIE_* variables.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Configure in an MCP client:")
	fmt.Fprintln(os.Stderr, "  {")
	fmt.Fprintln(os.Stderr, "    \"mcpServers\": {")
	fmt.Fprintln(os.Stderr, "      \"amelie\": {")
	fmt.Fprintln(os.Stderr, "        \"command\": \"/path/to/amelie-mcp\",")
	fmt.Fprintln(os.Stderr, "        \"env\": {\"AMELIE_API_BASE\": \"https://your-guide-service\"}")
	fmt.Fprintln(os.Stderr, "      }")
	fmt.Fprintln(os.Stderr, "    }")
	fmt.Fprintln(os.Stderr, "  }")
}

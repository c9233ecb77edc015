package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/richiexuetang/zodmon"
	"github.com/richiexuetang/zodmon/api"
	"github.com/richiexuetang/zodmon/logging"
	"github.com/richiexuetang/zodmon/mcpserver"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version", "-v", "--version":
		fmt.Println(zodmon.BuildInfo())
	case "help", "-h", "--help":
		printUsage()
	case "mcp":
		if err := handleMCP(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// mcpFlags contains flags for the mcp command
type mcpFlags struct {
	apiFile string
	baseURL string
	debug   bool
}

func setupMCPFlags() (*flag.FlagSet, *mcpFlags) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	flags := &mcpFlags{}

	fs.StringVar(&flags.apiFile, "api", "", "YAML or JSON API description (required)")
	fs.StringVar(&flags.baseURL, "base-url", "", "base URL; overrides the description and "+zodmon.EnvBaseURL)
	fs.BoolVar(&flags.debug, "debug", false, "log pipeline activity to stderr")

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: zodmon mcp -api <file> [flags]\n\n")
		_, _ = fmt.Fprintf(output, "Serve the endpoints of an API description as MCP tools over stdio.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(output, "\nExamples:\n")
		_, _ = fmt.Fprintf(output, "  zodmon mcp -api users.yaml\n")
		_, _ = fmt.Fprintf(output, "  zodmon mcp -api users.yaml -base-url http://localhost:8080\n")
	}

	return fs, flags
}

func handleMCP(args []string) error {
	fs, flags := setupMCPFlags()

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	client, err := buildClient(flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return mcpserver.Run(ctx, client)
}

// buildClient loads the description and applies, in increasing precedence,
// its baseURL, the environment and the flags.
func buildClient(flags *mcpFlags) (*zodmon.Client, error) {
	if flags.apiFile == "" {
		return nil, fmt.Errorf("mcp command requires -api")
	}

	data, err := os.ReadFile(flags.apiFile)
	if err != nil {
		return nil, fmt.Errorf("reading api description: %w", err)
	}
	doc, err := api.ParseDocument(data)
	if err != nil {
		return nil, err
	}

	var opts []zodmon.Option
	if doc.BaseURL != "" {
		opts = append(opts, zodmon.WithBaseURL(doc.BaseURL))
	}
	opts = append(opts, zodmon.OptionsFromEnv()...)
	if flags.baseURL != "" {
		opts = append(opts, zodmon.WithBaseURL(flags.baseURL))
	}
	if flags.debug {
		// stdout carries the MCP stream
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, zodmon.WithLogger(logging.NewSlogAdapter(slog.New(handler))))
	}

	return zodmon.New(doc.Endpoints, opts...)
}

func printUsage() {
	fmt.Println(`zodmon - declarative HTTP API client

Usage:
  zodmon <command> [flags]

Commands:
  mcp        Serve an API description as MCP tools over stdio
  version    Show build information
  help       Show this help message

Environment:
  ` + zodmon.EnvBaseURL + `        Base URL
  ` + zodmon.EnvValidate + `        all, request, response or none
  ` + zodmon.EnvTransform + `       all, request, response or none
  ` + zodmon.EnvSendDefaults + `   true or false

Run 'zodmon <command> --help' for more information on a command.`)
}

// Command holidaycal builds the public holiday calendar spreadsheet.
//
// Usage:
//
//	holidaycal populate [-year N] [-offset W] [-filter EXPR] [-xlsx PATH]
//	holidaycal override -file overrides.yaml [-document PATH]
//	holidaycal urls [-year N]
//	holidaycal export [-input PATH] [-output PATH]
//	holidaycal serve
//
// Settings come from the environment and an optional .env file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/holidaycal/internal/config"
	"github.com/JonMunkholm/holidaycal/internal/core"
	"github.com/JonMunkholm/holidaycal/internal/logging"
)

const usage = `usage: holidaycal <command> [flags]

commands:
  populate   build the calendar from the template and the listing site
  override   write hand-entered holidays into a populated calendar
  urls       rewrite the source URL column of the template
  export     convert a populated calendar to XLSX
  serve      run the HTTP API and the scheduled refresh

Run "holidaycal <command> -h" for the flags of a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(os.Stderr, ue.Error())
			os.Exit(2)
		}
		slog.Error("command failed", "command", os.Args[1], "code", core.MapError(err).Code, "error", err)
		fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		stop()
		os.Exit(1)
	}
}

// usageError is a command line mistake; it exits with status 2.
type usageError string

func (e usageError) Error() string { return string(e) }

func run(ctx context.Context, cfg *config.Config, command string, args []string) error {
	switch command {
	case "populate":
		return runPopulate(ctx, cfg, args)
	case "override":
		return runOverride(ctx, cfg, args)
	case "urls":
		return runURLs(ctx, cfg, args)
	case "export":
		return runExport(ctx, cfg, args)
	case "serve":
		return runServe(ctx, cfg)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		return usageError(fmt.Sprintf("unknown command %q\n\n%s", command, usage))
	}
}

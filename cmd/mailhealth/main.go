// Command mailhealth prints the email-authentication health of a domain.
//
// Usage:
//
//	mailhealth [-version] <domain>
//
// Resolver, output format and logging are configured through MAILHEALTH_*
// environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/synqronlabs/mailhealth"
	"github.com/synqronlabs/mailhealth/dns"
	"github.com/synqronlabs/mailhealth/internal/config"
	"github.com/synqronlabs/mailhealth/report"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil)
	stop()
	os.Exit(code)
}

// run executes the command. A nil resolver selects the one configured by
// MAILHEALTH_RESOLVER.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, resolver dns.Resolver) int {
	fs := flag.NewFlagSet("mailhealth", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showVersion := fs.Bool("version", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: mailhealth [-version] <domain>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *showVersion {
		fmt.Fprintln(stdout, "mailhealth", version)
		return exitOK
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitUsage
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if resolver == nil {
		resolver = cfg.NewResolver()
	}

	r, err := mailhealth.Check(ctx, fs.Arg(0),
		mailhealth.WithResolver(resolver),
		mailhealth.WithLogger(logger),
		mailhealth.WithSelectors(cfg.Selectors),
	)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		if errors.Is(err, mailhealth.ErrInvalidDomain) {
			return exitUsage
		}
		return exitError
	}

	opts := report.Options{Color: !cfg.NoColor && isTerminal(stdout)}
	if err := report.Write(stdout, r, cfg.Format, opts); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitError
	}
	return exitOK
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

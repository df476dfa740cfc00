// Command fetch downloads yearly private leaderboard snapshots into the data
// directory the server reads from.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/okian/starboard/internal/fetcher"
	"github.com/okian/starboard/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	def := fetcher.Defaults()
	return &cli.App{
		Name:  "fetch",
		Usage: "download private leaderboard snapshots",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "session", Usage: "session cookie (falls back to $" + fetcher.SessionEnv + ", then " + fetcher.ConfigFile + ")"},
			&cli.StringFlag{Name: "config", Value: fetcher.ConfigFile, Usage: "JSON file holding a \"session\" key"},
			&cli.StringFlag{Name: "dir", Value: def.Dir, Usage: "directory to write {year}.json and " + fetcher.ManifestName + " into"},
			&cli.IntFlag{Name: "from", Value: def.From, Usage: "first year"},
			&cli.IntFlag{Name: "to", Value: def.To, Usage: "last year"},
			&cli.StringFlag{Name: "board", Value: def.Board, Usage: "private leaderboard id"},
			&cli.StringFlag{Name: "base-url", Value: def.BaseURL, Usage: "event site root"},
			&cli.Float64Flag{Name: "rate", Value: def.Rate, Usage: "requests per second"},
			&cli.DurationFlag{Name: "timeout", Value: def.Timeout, Usage: "per request timeout"},
			&cli.IntFlag{Name: "workers", Value: def.Workers, Usage: "concurrent downloads"},
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "log level"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if err := logger.InitWith(os.Stderr, "text"); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := logger.SetLevelString(c.String("log-level")); err != nil {
		return err
	}

	session, err := fetcher.ResolveSession(c.String("session"), os.LookupEnv, c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	f, err := fetcher.New(fetcher.Config{
		BaseURL: c.String("base-url"),
		Session: session,
		Board:   c.String("board"),
		Dir:     c.String("dir"),
		From:    c.Int("from"),
		To:      c.Int("to"),
		Rate:    c.Float64("rate"),
		Timeout: c.Duration("timeout"),
		Workers: c.Int("workers"),
	}, fetcher.WithLogger(logger.Named("fetch")))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	report, err := f.Run(c.Context)
	if perr := report.Print(os.Stdout); perr != nil {
		logger.Get().Warn(c.Context, "failed to print report", logger.Error(perr))
	}
	if err != nil {
		return err
	}
	if len(report.Results) > 0 && report.Failed() == len(report.Results) {
		return cli.Exit("no year could be downloaded", 1)
	}
	return nil
}

// Command cardsnipe finds sports cards listed well below what matching
// cards sell for.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/guarzo/cardsnipe/internal/config"
	"github.com/guarzo/cardsnipe/internal/logger"
	"github.com/guarzo/cardsnipe/internal/model"
	"github.com/guarzo/cardsnipe/internal/progress"
	"github.com/guarzo/cardsnipe/internal/report"
	"github.com/guarzo/cardsnipe/internal/roster"
	"github.com/guarzo/cardsnipe/internal/scheduler"
	"github.com/guarzo/cardsnipe/internal/server"
)

const usage = `usage: cardsnipe <command> [flags]

commands:
  serve                 run the HTTP API and scheduled scans
  scan [flags]          run one scan and print the deals
  parse "<title>"       print the fingerprint of a listing title
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("no command given")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	switch args[0] {
	case "serve":
		return a.serve()
	case "scan":
		return a.scan(args[1:], stdout)
	case "parse":
		return a.parse(args[1:], stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *app) serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !a.cfg.EbayConfigured() {
		a.log.Warn().Msg("EBAY_CLIENT_ID/EBAY_CLIENT_SECRET not set; scans are disabled")
	}

	sc, err := a.newScanner(ctx, nil)
	if err != nil {
		return err
	}

	results := &scheduler.Results{}
	sched := scheduler.New(a.log)
	if a.cfg.ScanSchedule != "" && a.cfg.EbayConfigured() {
		job := scheduler.NewScanJob(scheduler.ScanJobConfig{
			Log:     a.log,
			Scanner: sc,
			Players: a.players,
			Results: results,
			Timeout: 30 * time.Minute,
		})
		if err := sched.AddJob(a.cfg.ScanSchedule, job); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:       a.cfg.Port,
		Log:        a.log,
		Scanner:    sc,
		Parser:     a.parser,
		Players:    a.players,
		Results:    results,
		Configured: a.cfg.EbayConfigured(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("Server forced to shutdown")
	}
	a.log.Info().Msg("Server stopped")
	return nil
}

// playerList collects repeated -player flags.
type playerList []string

func (p *playerList) String() string     { return strings.Join(*p, ",") }
func (p *playerList) Set(v string) error { *p = append(*p, v); return nil }

func (a *app) scan(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	csvPath := fs.String("csv", "", "write deals to this CSV file")
	asJSON := fs.Bool("json", false, "print the full scan result as JSON")
	quiet := fs.Bool("quiet", false, "hide the progress bar")
	var names playerList
	fs.Var(&names, "player", "scan only this player (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !a.cfg.EbayConfigured() {
		return errors.New("EBAY_CLIENT_ID and EBAY_CLIENT_SECRET are required to scan")
	}

	players, err := roster.Select(a.players, names)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bar := progress.NewIndicator("Scanning", len(players), !*quiet && !*asJSON)
	if !*quiet {
		// Keep log lines from tearing the progress bar.
		a.log = a.log.Level(maxLevel(a.log.GetLevel(), zerolog.WarnLevel))
	}
	sc, err := a.newScanner(ctx, bar.Step)
	if err != nil {
		return err
	}

	bar.Start()
	result, scanErr := sc.Scan(ctx, players)
	if scanErr != nil {
		bar.FinishWithError(scanErr)
		if result == nil {
			return scanErr
		}
		a.log.Warn().Err(scanErr).Msg("scan interrupted, reporting partial result")
	} else {
		bar.Finish(fmt.Sprintf("%d deals", len(result.Deals)))
	}

	if *csvPath != "" {
		if err := writeCSVFile(*csvPath, result); err != nil {
			return err
		}
	}
	if *asJSON {
		return report.WriteJSON(stdout, result)
	}
	return report.WriteSummary(stdout, result)
}

func writeCSVFile(path string, result *model.ScanResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := report.WriteCSV(f, result.Deals); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) parse(args []string, stdout io.Writer) error {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return errors.New(`usage: cardsnipe parse "<title>"`)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(a.parser.Parse(title))
}

func maxLevel(a, b zerolog.Level) zerolog.Level {
	if a > b {
		return a
	}
	return b
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adamthede/project-limitless-exporter/internal/api"
	"github.com/adamthede/project-limitless-exporter/internal/config"
	"github.com/adamthede/project-limitless-exporter/internal/exporter"
	"github.com/adamthede/project-limitless-exporter/internal/lifelog"
	"github.com/adamthede/project-limitless-exporter/internal/limitless"
	"github.com/adamthede/project-limitless-exporter/internal/notify"
	"github.com/adamthede/project-limitless-exporter/internal/planner"
	"github.com/adamthede/project-limitless-exporter/internal/store"
)

const usageText = `Usage: limitless-exporter <command> [flags]

Commands:
  plan     show the download plan for a day or range without downloading
  export   download planned audio chunks for a day or range
  fetch    pull a day's lifelog contents from the API into the archive
  usage    report downloaded-audio usage from the ledger
  serve    run the status API server
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down")
		cancel()
	}()

	var err error
	switch os.Args[1] {
	case "plan":
		err = runExport(ctx, cfg, os.Args[2:], true)
	case "export":
		err = runExport(ctx, cfg, os.Args[2:], false)
	case "fetch":
		err = runFetch(ctx, cfg, os.Args[2:])
	case "usage":
		err = runUsage(ctx, cfg, os.Args[2:])
	case "serve":
		err = runServe(cfg)
	default:
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

// dateFlags adds the shared date-selection flags to a flag set.
type dateFlags struct {
	date      string
	month     string
	start     string
	end       string
	yesterday bool
}

func (d *dateFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&d.date, "date", "", "single date (YYYY-MM-DD)")
	fs.StringVar(&d.month, "month", "", "whole month (YYYY-MM)")
	fs.StringVar(&d.start, "start", "", "range start (YYYY-MM-DD)")
	fs.StringVar(&d.end, "end", "", "range end (YYYY-MM-DD)")
	fs.BoolVar(&d.yesterday, "yesterday", false, "use yesterday's date")
}

func (d *dateFlags) resolve() ([]string, error) {
	switch {
	case d.yesterday:
		return exporter.ExpandRange(exporter.Yesterday(), "")
	case d.date != "":
		return exporter.ExpandRange(d.date, "")
	case d.month != "":
		return exporter.ExpandRange(d.month, "")
	case d.start != "":
		return exporter.ExpandRange(d.start, d.end)
	default:
		return nil, fmt.Errorf("specify -date, -month, -start/-end, or -yesterday")
	}
}

func runExport(ctx context.Context, cfg config.Config, args []string, dryRun bool) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var dates dateFlags
	dates.register(fs)
	fetch := fs.Bool("fetch", false, "fetch missing days from the API")
	resume := fs.Bool("resume", false, "skip days already completed in the state file")
	delay := fs.Duration("delay", time.Second, "pause between chunk downloads")
	dryRunFlag := fs.Bool("dry-run", false, "plan only, download nothing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dryRun = dryRun || *dryRunFlag

	days, err := dates.resolve()
	if err != nil {
		return err
	}

	archive := lifelog.NewArchive(cfg.ExportDir, slog.Default())
	pl := planner.New(cfg.PlannerOptions(), slog.Default())

	var client *limitless.Client
	if !dryRun || *fetch {
		if cfg.APIKey == "" {
			return fmt.Errorf("LIMITLESS_API_KEY is required")
		}
		client = limitless.NewClient(cfg.APIKey, cfg.APIURL, cfg.Timezone)
	}

	var ledger *store.Store
	if cfg.DatabaseURL != "" && !dryRun {
		ledger, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
		defer ledger.Close()
		if err := ledger.EnsureSchema(ctx); err != nil {
			return err
		}
		slog.Info("export ledger connected")
	}

	var notifier *notify.Publisher
	if cfg.NatsURL != "" && !dryRun {
		notifier, err = notify.NewPublisher(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Warn("NATS unavailable, continuing without events", "error", err)
		} else {
			defer notifier.Close()
		}
	}

	runCfg := exporter.Config{
		OutputDir: cfg.ExportDir + "/audio",
		Dates:     days,
		DryRun:    dryRun,
		Fetch:     *fetch,
		Resume:    *resume,
		PageLimit: cfg.PageLimit,
		Delay:     *delay,
	}
	runner := exporter.NewRunner(runCfg, pl, archive, client, ledger, notifier, slog.Default())

	stats, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\nDays processed: %d (audio: %d, no data: %d, no recordings: %d)\n",
		len(stats.Days), stats.DaysWithAudio, stats.DaysNoData, stats.DaysNoRecordings)
	fmt.Printf("Chunks downloaded: %d, skipped: %d, errors: %d\n",
		stats.Downloaded, stats.Skipped, stats.Errors)
	fmt.Printf("Total audio: %.1f hours\n", stats.AudioDuration.Hours())
	return nil
}

func runFetch(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	var dates dateFlags
	dates.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	days, err := dates.resolve()
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("LIMITLESS_API_KEY is required")
	}

	archive := lifelog.NewArchive(cfg.ExportDir, slog.Default())
	client := limitless.NewClient(cfg.APIKey, cfg.APIURL, cfg.Timezone)

	for _, date := range days {
		logs, err := client.AllLifelogs(ctx, date, cfg.PageLimit)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", date, err)
		}
		if len(logs) == 0 {
			slog.Warn("no lifelogs for date", "date", date)
			continue
		}
		entries := make([]lifelog.Entry, len(logs))
		for i, l := range logs {
			entries[i] = lifelog.Entry{ID: l.ID, FullMarkdown: l.Markdown, Contents: l.Contents}
		}
		if err := archive.SaveContents(date, entries); err != nil {
			return err
		}
	}
	return nil
}

func runUsage(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("usage", flag.ExitOnError)
	month := fs.String("month", "", "month to report (YYYY-MM); omit for the all-months summary")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for usage reports")
	}
	ledger, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	if *month != "" {
		usage, err := ledger.DailyUsageForMonth(ctx, *month)
		if err != nil {
			return err
		}
		for _, u := range usage {
			fmt.Printf("%s  %3d chunks  %6.1f MB  %5.1f h\n",
				u.Day, u.Chunks, float64(u.Bytes)/1024/1024, u.Duration.Hours())
		}
		return nil
	}

	usage, err := ledger.MonthlyUsageSummary(ctx)
	if err != nil {
		return err
	}
	for _, u := range usage {
		fmt.Printf("%s  %2d days  %4d chunks  %7.1f MB  %6.1f h\n",
			u.Month, u.Days, u.Chunks, float64(u.Bytes)/1024/1024, u.Duration.Hours())
	}
	return nil
}

func runServe(cfg config.Config) error {
	archive := lifelog.NewArchive(cfg.ExportDir, slog.Default())
	pl := planner.New(cfg.PlannerOptions(), slog.Default())

	srv := api.NewServer(cfg.Port, archive, pl, cfg.ExportDir+"/audio")
	return srv.Start()
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

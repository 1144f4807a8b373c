package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/podpulse/pkg/config"
	"github.com/umputun/podpulse/pkg/domain"
	"github.com/umputun/podpulse/pkg/feed"
	"github.com/umputun/podpulse/pkg/health"
	"github.com/umputun/podpulse/pkg/metrics"
	"github.com/umputun/podpulse/pkg/repository"
	"github.com/umputun/podpulse/pkg/scheduler"
	"github.com/umputun/podpulse/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" description:"configuration file (yaml), defaults used if empty"`
	DB     string `long:"db" env:"DB" description:"database file or DSN, overrides config"`

	Server struct {
		Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`
	} `command:"server" description:"run periodic scans and the HTTP API"`
	Scan struct {
		Force bool `short:"f" long:"force" description:"run even if the last pass is recent"`
	} `command:"scan" description:"run a scan pass if it is due"`
	Check       idCommand `command:"check" description:"check a single feed now, auto-disabled included"`
	Reactivate  idCommand `command:"reactivate" description:"re-enable an auto-disabled feed"`
	ResetErrors idCommand `command:"reset-errors" description:"clear failure counters of a feed"`
	Remove      idCommand `command:"remove" description:"stop tracking a feed"`
	Add         struct {
		URL   string `short:"u" long:"url" required:"true" description:"feed url"`
		Title string `short:"t" long:"title" description:"feed title, replaced on first successful check"`
	} `command:"add" description:"track a new feed"`
	List   struct{} `command:"list" description:"list tracked feeds with health status"`
	Import struct {
		File string `short:"f" long:"file" required:"true" description:"OPML file to import"`
	} `command:"import" description:"track feeds from an OPML file"`
	Export struct {
		File string `short:"f" long:"file" description:"output file, stdout if empty"`
	} `command:"export" description:"export tracked feeds as OPML"`

	// common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

type idCommand struct {
	ID int64 `long:"id" required:"true" description:"feed id"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	parser.SubcommandsOptional = true
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	if opts.NoColor {
		color.NoColor = true
	}
	setupLog(opts.Debug)

	command := "server"
	if parser.Active != nil {
		command = parser.Active.Name
	}

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts, command, os.Stdout)
	cancel()

	if err != nil {
		log.Printf("[ERROR] %s failed: %v", command, err)
		os.Exit(1)
	}
}

// app holds services shared by all commands
type app struct {
	cfg       *config.Config
	repos     *repository.Repositories
	health    *health.Service
	scanner   *scheduler.Scanner
	collector *metrics.Collector
	out       io.Writer
	debug     bool
}

// run executes command, the returned error maps to exit code 1
func run(ctx context.Context, opts Opts, command string, out io.Writer) error {
	a, err := newApp(ctx, opts, out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.repos.Close(); cerr != nil {
			log.Printf("[WARN] failed to close database: %v", cerr)
		}
	}()

	switch command {
	case "server":
		return a.runServer(ctx, opts.Server.Listen)
	case "scan":
		return a.runScan(ctx, opts.Scan.Force)
	case "check":
		return a.runCheck(ctx, opts.Check.ID)
	case "reactivate":
		return a.printFeed(a.health.ReactivateFeed(ctx, opts.Reactivate.ID))
	case "reset-errors":
		return a.printFeed(a.health.ResetErrors(ctx, opts.ResetErrors.ID))
	case "remove":
		if err := a.repos.Feed.DeleteFeed(ctx, opts.Remove.ID); err != nil {
			return fmt.Errorf("remove feed %d: %w", opts.Remove.ID, err)
		}
		fmt.Fprintf(a.out, "feed %d removed\n", opts.Remove.ID)
		return nil
	case "add":
		return a.runAdd(ctx, opts.Add.URL, opts.Add.Title)
	case "list":
		return a.runList(ctx)
	case "import":
		return a.runImport(ctx, opts.Import.File)
	case "export":
		return a.runExport(ctx, opts.Export.File)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func newApp(ctx context.Context, opts Opts, out io.Writer) (*app, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if opts.DB != "" {
		cfg.Database.DSN = dbDSN(opts.DB)
	}

	repos, err := repository.NewRepositories(ctx, cfg.RepositoryConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	collector, err := metrics.NewCollector()
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("failed to make metrics: %w", err)
	}

	healthSvc := health.NewService(repos.Feed, health.NewTracker(cfg.HealthPolicy()))
	scanner := scheduler.NewScanner(scheduler.ScannerParams{
		Registry:   repos.Feed,
		Fetcher:    feed.NewHTTPFetcher(cfg.FetcherConfig()),
		Normalizer: feed.NewNormalizer(cfg.NormalizerConfig()),
		Health:     healthSvc,
		Metrics:    collector,
		Delay:      cfg.Scan.Delay,
		Workers:    cfg.Scan.Workers,
	})

	return &app{cfg: cfg, repos: repos, health: healthSvc, scanner: scanner, collector: collector,
		out: out, debug: opts.Debug}, nil
}

// runServer starts the periodic scan loop and serves the API until ctx is canceled
func (a *app) runServer(ctx context.Context, listen string) error {
	if listen != "" {
		a.cfg.Server.Listen = listen
	}
	log.Printf("[INFO] starting podpulse version %s", revision)

	cron := scheduler.NewScheduler(a.repos.Setting, "cron", a.cfg.Scan.CronInterval)
	lazy := scheduler.NewScheduler(a.repos.Setting, "lazy", a.cfg.Scan.LazyInterval)

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		cron.Loop(loopCtx, a.scanner, a.cfg.Scan.CheckInterval)
	}()

	srv := server.New(a.cfg, server.Deps{
		Feeds:   a.repos.Feed,
		Health:  a.health,
		Scanner: a.scanner,
		Trigger: lazy,
		Metrics: a.collector,
	}, revision, a.debug)

	err := srv.Run(ctx)
	stopLoop()
	<-loopDone
	if err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	log.Print("[INFO] shutdown complete")
	return nil
}

// runScan is the cron entry point. Without force the pass runs only when the cron interval elapsed.
func (a *app) runScan(ctx context.Context, force bool) error {
	cron := scheduler.NewScheduler(a.repos.Setting, "cron", a.cfg.Scan.CronInterval)
	now := time.Now()
	if force {
		if err := cron.MarkRunStarted(ctx, now); err != nil {
			return fmt.Errorf("mark scan start: %w", err)
		}
	} else {
		started, err := cron.TryStart(ctx, now)
		if err != nil {
			return fmt.Errorf("claim scan: %w", err)
		}
		if !started {
			fmt.Fprintln(a.out, "scan is not due yet")
			return nil
		}
	}

	run, err := a.scanner.RunPass(ctx)
	if run != nil {
		a.printRun(run)
	}
	if err != nil {
		return fmt.Errorf("scan pass: %w", err)
	}
	return nil
}

func (a *app) printRun(run *domain.ScanRun) {
	fmt.Fprintf(a.out, "scan %s: total %d, updated %d, skipped %d, failed %d, took %v\n",
		run.ID, run.Total, run.Updated, run.Skipped, run.Failed, run.Elapsed().Round(time.Millisecond))
	failures := run.Failures()
	if len(failures) == 0 {
		return
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(failures); err != nil {
		log.Printf("[WARN] can't encode failures: %v", err)
	}
}

// runCheck checks one feed on demand, a failed check is an error
func (a *app) runCheck(ctx context.Context, id int64) error {
	out, err := a.scanner.ForceCheck(ctx, id)
	if out == nil {
		return err
	}
	fmt.Fprintf(a.out, "feed %d: %s in %v, health %s\n", id, out.Status,
		out.ResponseTime.Round(time.Millisecond), statusColor(out.HealthStatus))
	if err != nil {
		fmt.Fprintf(a.out, "  %s: %s\n", domain.CategoryOf(err), err.Error())
		return fmt.Errorf("check feed %d: %w", id, err)
	}
	return nil
}

func (a *app) runAdd(ctx context.Context, feedURL, title string) error {
	feedURL = strings.TrimSpace(feedURL)
	if err := feed.ValidateURL(feedURL); err != nil {
		return err
	}
	rec := &domain.FeedRecord{FeedURL: feedURL, Title: strings.TrimSpace(title)}
	if err := a.repos.Feed.CreateFeed(ctx, rec); err != nil {
		return fmt.Errorf("add feed: %w", err)
	}
	fmt.Fprintf(a.out, "feed %d added: %s\n", rec.ID, rec.FeedURL)
	return nil
}

func (a *app) runList(ctx context.Context) error {
	feeds, err := a.repos.Feed.ListFeeds(ctx)
	if err != nil {
		return fmt.Errorf("list feeds: %w", err)
	}
	for _, f := range feeds {
		title := f.Title
		if title == "" {
			title = "-"
		}
		fmt.Fprintf(a.out, "%5d  %-8s  %5.1f%%  %3d  %s  %s\n", f.ID, statusColor(f.Health.Status),
			f.Health.SuccessRate, f.Health.ConsecutiveFailures, title, f.FeedURL)
	}
	return nil
}

// runImport adds feeds from an OPML file, already tracked and invalid urls are skipped
func (a *app) runImport(ctx context.Context, path string) error {
	fh, err := os.Open(path) //nolint:gosec // path comes from CLI flag
	if err != nil {
		return fmt.Errorf("open opml: %w", err)
	}
	defer fh.Close()

	entries, err := feed.ParseOPML(fh)
	if err != nil {
		return fmt.Errorf("parse opml: %w", err)
	}

	var added, skipped int
	for _, e := range entries {
		if err := feed.ValidateURL(e.FeedURL); err != nil {
			log.Printf("[WARN] skip %q: %v", e.FeedURL, err)
			skipped++
			continue
		}
		rec := &domain.FeedRecord{FeedURL: e.FeedURL, Title: e.Title}
		if err := a.repos.Feed.CreateFeed(ctx, rec); err != nil {
			if errors.Is(err, domain.ErrFeedExists) {
				skipped++
				continue
			}
			return fmt.Errorf("import %s: %w", e.FeedURL, err)
		}
		added++
	}
	fmt.Fprintf(a.out, "imported %d feeds, skipped %d\n", added, skipped)
	return nil
}

func (a *app) runExport(ctx context.Context, path string) error {
	feeds, err := a.repos.Feed.ListFeeds(ctx)
	if err != nil {
		return fmt.Errorf("list feeds: %w", err)
	}
	doc, err := feed.NewOPMLGenerator("").Generate(feeds)
	if err != nil {
		return err
	}
	if path == "" {
		_, err = io.WriteString(a.out, doc)
		return err
	}
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		return fmt.Errorf("write opml: %w", err)
	}
	fmt.Fprintf(a.out, "exported %d feeds to %s\n", len(feeds), path)
	return nil
}

func (a *app) printFeed(rec *domain.FeedRecord, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "feed %d: health %s, consecutive failures %d, auto-disabled %v\n",
		rec.ID, statusColor(rec.Health.Status), rec.Health.ConsecutiveFailures, rec.Health.AutoDisabled)
	return nil
}

func statusColor(st domain.HealthStatus) string {
	switch st {
	case domain.HealthHealthy:
		return color.GreenString(string(st))
	case domain.HealthWarning:
		return color.YellowString(string(st))
	case domain.HealthDegraded, domain.HealthCritical:
		return color.RedString(string(st))
	case domain.HealthInactive:
		return color.HiBlackString(string(st))
	}
	return string(st)
}

// dbDSN turns a bare file path into a sqlite DSN with the required pragmas
func dbDSN(db string) string {
	if strings.HasPrefix(db, "file:") || strings.Contains(db, "?") {
		return db
	}
	return "file:" + db + "?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}

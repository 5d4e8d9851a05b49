package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/config"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/db"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/discovery"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/repository"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/youtube"
)

// Options are the command-line flags. They deliberately carry no struct
// defaults: an unset flag must be distinguishable from a set one, because
// flag values win over job-file values and job-file values win over the
// built-in defaults.
type Options struct {
	Keywords    string `long:"keywords" description:"Comma-separated search keywords (default: 패션,운동,육아)"`
	Context     string `long:"context" description:"Context keyword that earns the score bonus (default: 의류)"`
	Target      int    `long:"target" description:"Qualified channels to collect per keyword (default: 3)"`
	Concurrency int    `long:"concurrency" description:"Concurrent keyword sessions (default: 3)"`
	JobFile     string `long:"job" description:"YAML job file path"`

	DatabaseURL string  `long:"database-url" env:"DATABASE_URL" description:"PostgreSQL connection string (omit to report without persisting)"`
	APIKey      string  `long:"api-key" env:"YOUTUBE_API_KEY" description:"YouTube Data API key (required)"`
	RateLimit   float64 `long:"rate-limit" env:"YOUTUBE_RATE_LIMIT" description:"Outbound API requests per second"`
	LogLevel    string  `long:"log-level" env:"LOG_LEVEL" default:"info" description:"Log level"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	lvl, err := zerolog.ParseLevel(opts.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(lvl).With().
		Timestamp().
		Str("service", "inviteai-discover").
		Logger()

	job, err := resolveJob(opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid run configuration")
	}

	factory, err := youtube.NewFactory(opts.APIKey, opts.RateLimit, youtube.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Warn().Str("signal", sig.String()).Msg("aborting run")
		cancel()
	}()

	store, cleanup := openStore(ctx, opts.DatabaseURL, logger)
	defer cleanup()

	orch := discovery.NewOrchestrator(
		factory.NewDirectoryClient,
		store,
		discovery.NewFilterChain(job.Filters.Blacklist, job.Filters.MinSubscribers, job.Filters.MinVideos),
		discovery.NewActivityScorer(),
		logger,
	)

	logger.Info().
		Strs("keywords", job.Keywords).
		Str("context_keyword", job.ContextKeyword).
		Int("per_keyword_target", job.PerKeywordTarget).
		Int("concurrency", job.Concurrency).
		Msg("starting discovery run")

	res, err := orch.RunDiscovery(ctx, discovery.Request{
		Keywords:         job.Keywords,
		ContextKeyword:   job.ContextKeyword,
		PerKeywordTarget: job.PerKeywordTarget,
		Concurrency:      job.Concurrency,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("discovery run failed")
	}

	for kw, out := range res.Outcomes {
		evt := logger.Info()
		if out.Err != nil {
			evt = logger.Error().Err(out.Err)
		}
		evt.Str("keyword", kw).Int("qualified", out.Qualified).Msg("keyword session finished")
	}

	logger.Info().
		Int("profiles", len(res.Profiles)).
		Int("failed_sessions", res.Failed()).
		Int64("quota_units", res.QuotaUnits).
		Dur("elapsed", res.Elapsed.Round(time.Millisecond)).
		Msg("discovery run complete")

	if len(res.Outcomes) > 0 && res.Failed() == len(res.Outcomes) {
		os.Exit(1)
	}
}

// resolveJob layers the run configuration: built-in defaults, then the
// job file, then explicit flags.
func resolveJob(opts Options) (config.Job, error) {
	job := config.DefaultJob()
	if opts.JobFile != "" {
		loaded, err := config.LoadJob(opts.JobFile)
		if err != nil {
			return config.Job{}, err
		}
		job = loaded
	}

	if opts.Keywords != "" {
		job.Keywords = splitKeywords(opts.Keywords)
	}
	if opts.Context != "" {
		job.ContextKeyword = opts.Context
	}
	if opts.Target > 0 {
		job.PerKeywordTarget = opts.Target
	}
	if opts.Concurrency > 0 {
		job.Concurrency = opts.Concurrency
	}

	if err := job.Validate(); err != nil {
		return config.Job{}, err
	}
	return job, nil
}

// openStore connects to PostgreSQL when a URL is given. Without one the
// run still executes; profiles are reported but not persisted.
func openStore(ctx context.Context, databaseURL string, logger zerolog.Logger) (discovery.ProfileStore, func()) {
	if databaseURL == "" {
		logger.Warn().Msg("no DATABASE_URL configured, profiles will not be persisted")
		return discovery.DiscardStore{}, func() {}
	}

	version, err := db.RunMigrations(databaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	logger.Info().Uint("version", version).Msg("database schema ready")

	pool, err := db.NewPool(ctx, databaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	return repository.NewProfileRepo(pool), pool.Close
}

func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

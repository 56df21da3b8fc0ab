package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/lmittmann/tint"

	"github.com/ogri-la/wowhead-scraper-go/src/cache"
	"github.com/ogri-la/wowhead-scraper-go/src/cli"
	httpClient "github.com/ogri-la/wowhead-scraper-go/src/http"
	"github.com/ogri-la/wowhead-scraper-go/src/retry"
)

var APP_VERSION = "unreleased"
var APP_LOC = "https://github.com/ogri-la/wowhead-scraper-go"

func main() {
	// Parse command line flags
	flags, err := cli.ParseFlags(os.Args, APP_VERSION)
	if err != nil {
		slog.Error("failed to parse flags", "error", err)
		os.Exit(1)
	}

	// Setup logging
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: flags.LogLevel,
	})))

	handler, err := cli.NewCommandHandler()
	if err != nil {
		slog.Error("failed to load validation rules", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	config := flags.Config

	// Execute command
	switch flags.SubCommand {
	case cli.ScrapeSubCommand:
		// Setup HTTP client with caching, throttling and retries
		cachingTransport := cache.NewFileCachingTransport(cache.DefaultCacheConfig(config.CacheDir), http.DefaultTransport)
		client := retry.NewFetcher(httpClient.NewRealHTTPClient(cachingTransport, userAgent()), retry.Config{
			Delay:         config.Delay,
			MaxAttempts:   config.MaxAttempts,
			MaxRetryAfter: retry.DefaultConfig().MaxRetryAfter,
		})

		if err := handler.Scrape(ctx, config, client, cachingTransport); err != nil {
			slog.Error("scrape command failed", "error", err)
			os.Exit(1)
		}

	case cli.ValidateSubCommand:
		if err := handler.Validate(ctx, config); err != nil {
			slog.Error("validate command failed", "error", err)
			os.Exit(1)
		}

	case cli.LoadSubCommand:
		if err := handler.Load(ctx, config); err != nil {
			slog.Error("load command failed", "error", err)
			os.Exit(1)
		}

	default:
		slog.Error("unknown subcommand", "subcommand", flags.SubCommand)
		os.Exit(1)
	}
}

func userAgent() string {
	return "wowhead-scraper-go/" + APP_VERSION + " (" + APP_LOC + ")"
}

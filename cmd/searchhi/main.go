// Package main is the searchhi CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/searchhi/internal/cli"
	"github.com/hyperjump/searchhi/internal/config"
	"github.com/hyperjump/searchhi/internal/models"
	"github.com/hyperjump/searchhi/internal/pages"
	"github.com/hyperjump/searchhi/internal/server"
	"github.com/hyperjump/searchhi/internal/watcher"
	"github.com/hyperjump/searchhi/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/searchhi/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml in
// the current directory takes precedence so that "searchhi server" run from a
// project directory picks up the project's config.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// loadConfigOrDefaults is loadConfig for commands that can run without a
// config file: a missing default config yields built-in defaults.
func loadConfigOrDefaults(path string) (*config.Config, error) {
	cfg, _, err := loadConfig(path)
	if err == nil {
		return cfg, nil
	}
	if path == defaultConfigPath {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			cfg = &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, nil
		}
	}
	return nil, err
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "terms":
		runTerms()
	case "highlight":
		runHighlight()
	case "version", "--version", "-v":
		fmt.Printf("searchhi version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (page changes, highlight counts, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	store, err := pages.NewStore(cfg.Content.Root)
	if err != nil {
		logger.Fatal("Failed to open content root", zap.Error(err))
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Content.WatchOrDefault() {
		watchOpts := []watcher.WatcherOption{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc := watcher.NewWatcher(
			[]string{store.Root()},
			cfg.Content.Extensions,
			cfg.Content.RecursiveOrDefault(),
			store.Invalidate,
			store.Invalidate,
			watchOpts...,
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
	}

	srv := server.NewServer(cfg.Highlight.NewHighlighter(), store, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// argsReorder moves any flags (and their values) that appear after the first
// positional argument to the front of the slice so that flag.Parse() sees them.
// Go's flag package stops at the first non-flag argument, so
// "searchhi terms <url> --output json" would otherwise leave --output unparsed.
// A bare "-" is positional (stdin).
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 1 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runTerms() {
	fs := flag.NewFlagSet("terms", flag.ExitOnError)
	referrer := fs.String("referrer", "", "referring URL, used when the page URL has no terms")
	output := fs.String("output", "text", "output format: text, compact or json")
	configPath := fs.String("config", defaultConfigPath, "config file path (query params and term limits)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: searchhi terms [flags] <url>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if fs.NArg() == 0 && *referrer == "" {
		fs.Usage()
		os.Exit(1)
	}
	cfg, err := loadConfigOrDefaults(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	h := cfg.Highlight.NewHighlighter()
	ts, source := h.Extractor().FromPage(fs.Arg(0), *referrer)
	if err := cli.WriteTerms(os.Stdout, &models.TermsResponse{Terms: ts, Source: source}, format, h); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runHighlight() {
	fs := flag.NewFlagSet("highlight", flag.ExitOnError)
	pageURL := fs.String("url", "", "URL the page was requested with")
	referrer := fs.String("referrer", "", "referring URL, used when --url has no terms")
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "log the extracted terms to stderr")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: searchhi highlight [flags] <file|->\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	cfg, err := loadConfigOrDefaults(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	in, closeIn, err := openInput(fs.Arg(0))
	if err != nil {
		logger.Fatal("Failed to open input", zap.Error(err))
	}
	defer closeIn()

	res, err := cfg.Highlight.NewHighlighter().Rewrite(in, os.Stdout, *pageURL, *referrer)
	if err != nil {
		logger.Fatal("Highlight failed", zap.Error(err))
	}
	logger.Debug("highlighted",
		zap.String("terms", cli.TermsLine(res.Terms)),
		zap.String("source", string(res.Source)),
		zap.Int("searchable", res.Searchable),
		zap.Int("highlights", res.Highlights),
	)
}

// openInput opens name for reading; "-" is stdin.
func openInput(name string) (io.Reader, func(), error) {
	if name == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, func() { _ = f.Close() }, nil
}

func printUsage() {
	fmt.Println(`searchhi - Highlight search terms in served pages

Usage:
  searchhi server [flags]              Start the HTTP server
  searchhi terms [flags] <url>         Print the search terms in a URL
  searchhi highlight [flags] <file|->  Highlight an HTML document to stdout
  searchhi version                     Show version
  searchhi help                        Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/searchhi/config.yaml)
  --debug            Enable debug logging (page changes, highlight counts, etc.)

Terms Flags:
  --referrer string  Referring URL, used when <url> has no terms
  --output string    Output format: text, compact or json (default: text)
  --config string    Config file path (query params and term limits)

Highlight Flags:
  --url string       URL the page was requested with
  --referrer string  Referring URL, used when --url has no terms
  --config string    Config file path
  --debug            Log the extracted terms to stderr

Examples:
  searchhi server
  searchhi terms "https://trac.example.com/search?q=wiki+macros"
  searchhi terms --referrer "https://www.google.com/search?q=formatter" /ticket/42
  searchhi terms "/search?q=wiki" --output json
  searchhi highlight --url "/wiki/Start?q=macros" page.html
  curl -s http://trac.example.com/ticket/42 | searchhi highlight --referrer "https://www.google.com/search?q=wiki" -`)
}

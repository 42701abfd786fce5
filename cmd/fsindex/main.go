// Command fsindex is a local full-text search engine: it builds a
// segmented inverted index over a directory tree and answers ranked
// keyword queries against it, from the command line or over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rhea-dev/fsindex/internal/httpapi"
	"github.com/rhea-dev/fsindex/internal/query"
	"github.com/rhea-dev/fsindex/internal/writer"
	"github.com/rhea-dev/fsindex/pkg/config"
	apperrors "github.com/rhea-dev/fsindex/pkg/errors"
	"github.com/rhea-dev/fsindex/pkg/health"
	"github.com/rhea-dev/fsindex/pkg/logger"
	"github.com/rhea-dev/fsindex/pkg/metrics"
)

const version = "0.1.0"

const usage = `fsindex — a local full-text search engine

Usage:
  fsindex index [--path P] [--output D] [--hidden] [--skip-paths X [--skip-paths Y ...]] [--log F] [--config FILE] [--dump-format bytes|json]
  fsindex query --query Q [--index D] [--count K] [--output F]
  fsindex serve [--index D] [--port P]
  fsindex --help
  fsindex --version
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		fmt.Fprint(os.Stdout, usage)
		return 0
	case "--version", "version":
		fmt.Fprintf(os.Stdout, "fsindex %s\n", version)
		return 0
	case "index":
		return runIndex(args[1:])
	case "query":
		return runQuery(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "fsindex: unknown subcommand %q\n\n%s", args[0], usage)
		return 1
	}
}

func defaultIndexDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".indexer"
	}
	return filepath.Join(home, ".indexer")
}

// exitCode maps an error to the process exit code per the error handling
// design: 0 success, 1 user/config error, 2 I/O or internal error.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, apperrors.ErrUserInput) {
		return 1
	}
	return 2
}

type skipPaths []string

func (s *skipPaths) String() string { return strings.Join(*s, ",") }
func (s *skipPaths) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func runIndex(args []string) int {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	path := fs.String("path", ".", "root path to index")
	output := fs.String("output", defaultIndexDir(), "index directory")
	hidden := fs.Bool("hidden", false, "include hidden files and directories")
	logPath := fs.String("log", "", "log file path (default: stdout)")
	configPath := fs.String("config", "", "path to YAML config file")
	dumpFormat := fs.String("dump-format", "bytes", "DocumentStore format written alongside the binary index: bytes or json")
	var skip skipPaths
	fs.Var(&skip, "skip-paths", "path substring to skip (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *dumpFormat != "bytes" && *dumpFormat != "json" {
		fmt.Fprintf(os.Stderr, "fsindex: index: --dump-format must be \"bytes\" or \"json\", got %q\n", *dumpFormat)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fsindex: %v\n", err)
		return 1
	}

	setupLogging(cfg, *logPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	start := time.Now()
	result, err := writer.Run(ctx, writer.Options{
		Root:                 *path,
		IndexDir:             *output,
		IncludeHidden:        *hidden,
		SkipPaths:            skip,
		SegmentMaxDocs:       cfg.Indexer.SegmentMaxDocs,
		DumpFormat:           *dumpFormat,
		ExtractRetryAttempts: cfg.Indexer.ExtractRetryAttempts,
		ExtractTimeout:       cfg.Indexer.ExtractTimeout,
	}, m)
	if err != nil && result == nil {
		fmt.Fprintf(os.Stderr, "fsindex: indexing failed: %v\n", err)
		return exitCode(err)
	}

	elapsed := time.Since(start)
	fmt.Fprintf(os.Stdout, "indexed %d documents, skipped %d, failed %d, flushed %d segments in %s\n",
		result.Indexed, result.Skipped, result.Failed, result.SegmentsFlushed, elapsed.Round(time.Millisecond))
	if err != nil {
		fmt.Fprintf(os.Stderr, "fsindex: %v\n", err)
		return exitCode(err)
	}
	return 0
}

func runQuery(args []string) int {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	queryText := fs.String("query", "", "query text")
	indexDir := fs.String("index", defaultIndexDir(), "index directory")
	count := fs.Int("count", 0, "number of results (default: implementation-defined)")
	outputPath := fs.String("output", "", "write results to this file instead of stdout")
	scores := fs.Bool("scores", false, "append a score column to each result line")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *queryText == "" {
		fmt.Fprintln(os.Stderr, "fsindex: query: --query is required")
		return 1
	}

	e, err := query.Open(*indexDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fsindex: %v\n", err)
		return exitCode(err)
	}
	defer e.Close()

	results, err := e.Query(*queryText, *count)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fsindex: %v\n", err)
		return exitCode(err)
	}

	out := os.Stdout
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fsindex: %v\n", err)
			return 2
		}
		defer f.Close()
		out = f
	}
	for _, r := range results {
		if *scores {
			fmt.Fprintf(out, "%s\t%g\n", r.Path, r.Score)
		} else {
			fmt.Fprintf(out, "%s\n", r.Path)
		}
	}
	return 0
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	indexDir := fs.String("index", defaultIndexDir(), "index directory")
	port := fs.Int("port", 8765, "HTTP port")
	configPath := fs.String("config", "", "path to YAML config file")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fsindex: %v\n", err)
		return 1
	}
	setupLogging(cfg, "")

	e, err := query.Open(*indexDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fsindex: %v\n", err)
		return exitCode(err)
	}
	defer e.Close()

	m := metrics.New()
	checker := health.NewChecker()
	checker.Register("index", health.CheckIndexDir(*indexDir))

	h := httpapi.New(e, cfg.Search.DefaultCount, m, nil)
	mux := httpapi.NewMux(h, m, checker, cfg.Server.WriteTimeout)

	addr := fmt.Sprintf(":%d", *port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("fsindex serving", "addr", addr, "index_dir", *indexDir)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		return 2
	}
	slog.Info("fsindex stopped")
	return 0
}

func setupLogging(cfg *config.Config, logPath string) {
	if logPath == "" {
		logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
		return
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
		slog.Warn("could not open log file, falling back to stdout", "path", logPath, "error", err)
		return
	}
	logger.SetupOutput(f, cfg.Logging.Level, cfg.Logging.Format)
}

// Package main implements the querycache CLI: it runs SQL statements
// against a database through the result cache and reports cache
// statistics.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/electwix/querycache/internal/cache"
	"github.com/electwix/querycache/internal/cli"
	"github.com/electwix/querycache/internal/config"
	"github.com/electwix/querycache/internal/logging"
	"github.com/electwix/querycache/internal/query"
	"github.com/electwix/querycache/internal/warmup"
)

func main() {
	code := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := cli.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			_, _ = fmt.Fprintln(stdout, err.Error())
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}

	logger := logging.New(logging.Options{
		Verbose: opts.Verbose,
		Writer:  stderr,
	})

	cfg := config.Default()
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
		if err != nil {
			_, _ = fmt.Fprintln(stderr, err.Error())
			return 1
		}
	}
	if opts.DSN != "" {
		cfg.Database.DSN = opts.DSN
	}

	queries, err := collectQueries(opts)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if len(queries) == 0 && opts.WarmupPath == "" {
		_, _ = fmt.Fprintln(stderr, "no queries given; pass statements as arguments or via -queries")
		return 1
	}

	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "open database: %v\n", err)
		return 1
	}
	defer db.Close()
	if strings.Contains(cfg.Database.DSN, ":memory:") {
		// One connection keeps the in-memory database alive across
		// statements.
		db.SetMaxOpenConns(1)
	}

	mgrOpts := cfg.Cache.ManagerOptions()
	mgrOpts.Logger = logger
	mgr := cache.New(mgrOpts)
	exec := query.NewExecutor(query.NewSQLRunner(db), mgr, logger)

	if opts.WarmupPath != "" {
		manifest, err := warmup.Load(opts.WarmupPath)
		if err != nil {
			_, _ = fmt.Fprintln(stderr, err.Error())
			return 1
		}
		warmup.Run(ctx, mgr, exec, manifest)
		logger.Info("warm-up finished", "items", len(manifest.Items), "cached", mgr.Len())
	}

	for _, q := range queries {
		if query.IsCacheable(q) {
			res, err := exec.Query(ctx, q)
			if err != nil {
				_, _ = fmt.Fprintf(stderr, "query failed: %v\n", err)
				return 1
			}
			logger.Debug("query done", "rows", len(res.Rows))
			continue
		}
		affected, err := exec.Exec(ctx, q)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "statement failed: %v\n", err)
			return 1
		}
		logger.Debug("statement done", "rows_affected", affected)
	}

	_, _ = fmt.Fprint(stdout, formatStats(mgr.Stats()))
	return 0
}

// collectQueries merges the -queries file and positional arguments, in
// that order.
func collectQueries(opts cli.Options) ([]string, error) {
	var queries []string
	if opts.QueriesPath != "" {
		data, err := os.ReadFile(opts.QueriesPath)
		if err != nil {
			return nil, fmt.Errorf("read queries: %w", err)
		}
		queries = append(queries, splitQueryLines(string(data))...)
	}
	queries = append(queries, opts.Args...)
	return queries, nil
}

// splitQueryLines returns non-empty, non-comment lines as statements.
func splitQueryLines(data string) []string {
	var out []string
	for _, line := range strings.Split(data, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// formatStats renders the statistics report printed after a run.
func formatStats(snap cache.Snapshot) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "cache statistics:\n")
	fmt.Fprintf(&buf, "  hits:          %d\n", snap.Hits)
	fmt.Fprintf(&buf, "  misses:        %d\n", snap.Misses)
	fmt.Fprintf(&buf, "  evictions:     %d\n", snap.Evictions)
	fmt.Fprintf(&buf, "  total queries: %d\n", snap.TotalQueries)
	fmt.Fprintf(&buf, "  hit rate:      %.2f%%\n", snap.HitRate*100)
	fmt.Fprintf(&buf, "  entries:       %d\n", snap.EntryCount)
	fmt.Fprintf(&buf, "  total size:    %d bytes\n", snap.TotalSize)
	return buf.String()
}

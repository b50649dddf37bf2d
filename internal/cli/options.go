// Package cli parses command line options for the querycache binary.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// Options holds the parsed command line flags.
type Options struct {
	ConfigPath  string
	DSN         string
	WarmupPath  string
	QueriesPath string
	Verbose     bool
	Args        []string
}

// Parse reads flags from args. Positional arguments are treated as SQL
// statements to execute.
func Parse(args []string) (Options, error) {
	var opts Options

	fs := flag.NewFlagSet("querycache", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to TOML configuration file")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to TOML configuration file")
	fs.StringVar(&opts.DSN, "db", "", "Override the database DSN from the configuration")
	fs.StringVar(&opts.WarmupPath, "warmup", "", "Path to a YAML warm-up manifest executed before the queries")
	fs.StringVar(&opts.QueriesPath, "queries", "", "Path to a file with one SQL statement per line")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.Verbose, "v", false, "Enable verbose logging")

	if err := fs.Parse(args); err != nil {
		usage := Usage(fs)
		if errors.Is(err, flag.ErrHelp) {
			return Options{}, fmt.Errorf("%w\n\n%s", err, usage)
		}
		return Options{}, fmt.Errorf("%w\n\n%s", err, usage)
	}

	opts.Args = fs.Args()
	return opts, nil
}

// Usage renders the flag set's help text.
func Usage(fs *flag.FlagSet) string {
	if fs == nil {
		return ""
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "Usage of %s:\n", fs.Name())
	out := fs.Output()
	fs.SetOutput(&buf)
	fs.PrintDefaults()
	fs.SetOutput(out)
	return buf.String()
}

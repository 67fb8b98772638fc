// Package cmd provides the Cobra CLI command structure for duacct.
//
// This package defines the root command and all CLI flags: the
// filesystem-accounting core lives in internal/engine and internal/
// aggregate; this package only parses flags, drives a traversal, and
// formats the result.
package cmd

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/mwillner/duacct/internal/aggregate"
	"github.com/mwillner/duacct/internal/engine"
	"github.com/mwillner/duacct/internal/report"
	"github.com/mwillner/duacct/internal/sizefmt"
	"github.com/mwillner/duacct/internal/userdb"
)

// version is stamped at release time; "dev" is the value for local builds.
var version = "dev"

var (
	maxDepth       int
	fileLimitStr   string
	sizeLimitStr   string
	excludePattern string
	includePattern string
	excludeSubdirs bool
	quiet          bool
	perUser        bool
	humanReadable  bool
	statusSeconds  int
	workers        int
	pretty         bool
	showVersion    bool
)

// parseError marks an error that happened while interpreting CLI flags
// (exit code 2, per spec.md §6) rather than during the traversal itself
// (exit code 1).
type parseError struct{ err error }

func (e *parseError) Error() string { return e.err.Error() }
func (e *parseError) Unwrap() error { return e.err }

// IsParseError reports whether err should map to the CLI-parse-error exit
// code rather than the general fatal-error exit code.
func IsParseError(err error) bool {
	var pe *parseError
	return errors.As(err, &pe)
}

var rootCmd = &cobra.Command{
	Use:   "duacct [paths...]",
	Short: "Parallel filesystem accounting",
	Long: `duacct walks one or more directory trees in parallel and reports
cumulative file counts and byte totals per directory.

Examples:
  duacct .
  duacct --user --human-readable /var/log
  duacct --max-depth 2 --size-limit 1G /srv
  duacct --exclude '\.tmp$' --workers 16 /data`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAccount,
}

func init() {
	// Override cobra's default help flag so -h is free for
	// --human-readable, matching the flag surface spec.md §6 mandates.
	rootCmd.PersistentFlags().BoolP("help", "", false, "help for "+rootCmd.Name())

	rootCmd.Flags().IntVarP(&maxDepth, "max-depth", "d", math.MaxInt32,
		"inclusive depth cap on output")
	rootCmd.Flags().StringVarP(&fileLimitStr, "file-limit", "n", "0",
		"minimum file count to emit (accepts B/K/M/G/T/P/E/Z/Y suffix)")
	rootCmd.Flags().StringVarP(&sizeLimitStr, "size-limit", "k", "0",
		"minimum byte count to emit (accepts B/K/M/G/T/P/E/Z/Y suffix)")
	rootCmd.Flags().StringVar(&excludePattern, "exclude", "",
		"regex anchored to end-of-path; matching paths are skipped entirely")
	rootCmd.Flags().StringVar(&includePattern, "include", "",
		"regex anchored to end-of-path; non-matching files are skipped")
	rootCmd.Flags().BoolVar(&excludeSubdirs, "exclude-subdirs", false,
		"report direct counts per directory only; no subtree roll-up")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress column header")
	rootCmd.Flags().BoolVarP(&perUser, "user", "u", false,
		"split output by owning UID")
	rootCmd.Flags().BoolVarP(&humanReadable, "human-readable", "h", false,
		"render sizes with unit suffixes")
	rootCmd.Flags().IntVarP(&statusSeconds, "status", "s", 0,
		"stderr progress every S seconds; 0 disables")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 8,
		"worker count, lower-bounded by 1")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false,
		"render output as a styled table instead of fixed-width columns")
	rootCmd.Flags().BoolVar(&showVersion, "version", false,
		"print the version and exit")
}

// ranRunE tracks whether cobra got as far as invoking RunE. An error
// returned before that point is a flag/argument syntax problem (exit code
// 2, spec.md §6); an error from RunE itself is a fatal runtime error (exit
// code 1), even when it is itself caused by a bad --exclude/--include
// regex or limit value, which spec.md §6/§7 classify as fatal, not a parse
// error.
var ranRunE bool

// Execute runs the root command. The returned error should be tested with
// IsParseError to pick the right process exit code.
func Execute() error {
	ranRunE = false
	err := rootCmd.Execute()
	if err != nil && !ranRunE {
		return &parseError{err}
	}
	return err
}

func runAccount(cmd *cobra.Command, args []string) error {
	ranRunE = true
	if showVersion {
		fmt.Fprintf(cmd.OutOrStdout(), "duacct %s\n", version)
		return nil
	}

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}

	exclude, err := compileAnchored(excludePattern)
	if err != nil {
		return fmt.Errorf("compiling --exclude: %w", err)
	}
	include, err := compileAnchored(includePattern)
	if err != nil {
		return fmt.Errorf("compiling --include: %w", err)
	}

	fileLimit, err := sizefmt.FromHuman(fileLimitStr)
	if err != nil {
		return fmt.Errorf("parsing --file-limit: %w", err)
	}
	sizeLimit, err := sizefmt.FromHuman(sizeLimitStr)
	if err != nil {
		return fmt.Errorf("parsing --size-limit: %w", err)
	}

	opts := engine.Options{
		Workers:        workers,
		FileLimit:      fileLimit,
		SizeLimit:      sizeLimit,
		Exclude:        exclude,
		Include:        include,
		ExcludeSubdirs: excludeSubdirs,
		PerUser:        perUser,
		StatusInterval: statusSeconds,
		StatusWriter:   cmd.ErrOrStderr(),
	}

	results, err := engine.Run(roots, opts)
	if err != nil {
		return fmt.Errorf("traversal: %w", err)
	}

	store := aggregate.NewStore()
	for _, d := range results.Dirs {
		store.Add(aggregate.DirResult{
			Name:        d.Name,
			ParentInode: d.ParentInode,
			Inode:       d.Inode,
			FilesByUID:  d.FilesByUID,
			SizeByUID:   d.SizeByUID,
		})
	}

	rows := aggregate.Run(store, aggregate.Options{
		MaxDepth:       maxDepth,
		FileLimit:      fileLimit,
		SizeLimit:      sizeLimit,
		Exclude:        exclude,
		Include:        include,
		ExcludeSubdirs: excludeSubdirs,
		PerUser:        perUser,
	})

	var users userdb.Table
	f := report.New(cmd.OutOrStdout(), &users, perUser, humanReadable, quiet, pretty)
	if err := f.Write(rows); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if len(results.Errs) > 0 {
		for _, e := range results.Errs {
			fmt.Fprintf(cmd.ErrOrStderr(), "duacct: %s: %v\n", e.Path, e.Err)
		}
	}

	return nil
}

// compileAnchored compiles pattern with the implicit end-of-string anchor
// spec.md §6 requires ("Both include and exclude patterns are implicitly
// anchored with an end-of-string match"). An empty pattern means "no
// filter" and returns a nil *regexp.Regexp.
func compileAnchored(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile("(?:" + pattern + ")$")
}

// Package main provides the entry point for the duacct CLI tool.
//
// duacct walks one or more directory trees in parallel and reports
// cumulative file counts and byte totals per directory, with optional
// per-user splitting, depth limiting, and min-count/min-size filtering.
//
// Usage:
//
//	duacct [flags] [paths...]
//
// Examples:
//
//	duacct .
//	duacct --user --human-readable /var/log
//	duacct --max-depth 2 --size-limit 1G /srv
package main

import (
	"fmt"
	"os"

	"github.com/mwillner/duacct/cmd/duacct/cmd"
)

func main() {
	switch err := cmd.Execute(); {
	case err == nil:
		os.Exit(0)
	case cmd.IsParseError(err):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

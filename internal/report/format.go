// Package report prints aggregate.Row slices in the two supported output
// modes: the spec-mandated fixed-width columns, and an opt-in go-pretty
// table rendering for interactive use.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mwillner/duacct/internal/aggregate"
	"github.com/mwillner/duacct/internal/sizefmt"
	"github.com/mwillner/duacct/internal/userdb"
)

// Formatter writes aggregate.Row slices to an io.Writer in one of the two
// supported styles (spec.md §6 plain columns, or the supplemental --pretty
// table).
type Formatter struct {
	w             io.Writer
	users         *userdb.Table
	perUser       bool
	humanReadable bool
	quiet         bool
	pretty        bool
}

func New(w io.Writer, users *userdb.Table, perUser, humanReadable, quiet, pretty bool) *Formatter {
	return &Formatter{w: w, users: users, perUser: perUser, humanReadable: humanReadable, quiet: quiet, pretty: pretty}
}

// Write renders rows using the Formatter's configured style.
func (f *Formatter) Write(rows []aggregate.Row) error {
	if f.pretty {
		return f.writePretty(rows)
	}
	return f.writePlain(rows)
}

// writePlain renders the exact column layout spec.md §6 mandates:
// "%15s %15s %s" without --user, "%15s %15s %15s %s" with it.
func (f *Formatter) writePlain(rows []aggregate.Row) error {
	if !f.quiet {
		if f.perUser {
			if _, err := fmt.Fprintf(f.w, "%15s %15s %15s %s\n", "User", "Files", "Size", "Path"); err != nil {
				return err
			}
		} else {
			if _, err := fmt.Fprintf(f.w, "%15s %15s %s\n", "Files", "Size", "Path"); err != nil {
				return err
			}
		}
	}

	for _, r := range rows {
		size := f.formatSize(r.Size)
		if f.perUser {
			user := f.users.Name(r.UID)
			if _, err := fmt.Fprintf(f.w, "%15s %15d %15s %s\n", user, r.Files, size, r.Path); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(f.w, "%15d %15s %s\n", r.Files, size, r.Path); err != nil {
			return err
		}
	}
	return nil
}

func (f *Formatter) formatSize(n int64) string {
	if f.humanReadable {
		return sizefmt.ToHuman(n)
	}
	return strconv.FormatInt(n, 10)
}

// writePretty is pure presentation sugar over the same rows (spec.md §6.1
// enrichment): it does not change which rows were selected, only how they
// render. Columns that are all zero across every row are suppressed,
// mirroring the teacher's formatAlignedColumn behavior.
func (f *Formatter) writePretty(rows []aggregate.Row) error {
	t := table.NewWriter()
	t.SetOutputMirror(f.w)
	t.SetStyle(table.StyleColoredDark)

	allZeroFiles, allZeroSize := true, true
	for _, r := range rows {
		if r.Files != 0 {
			allZeroFiles = false
		}
		if r.Size != 0 {
			allZeroSize = false
		}
	}

	var header table.Row
	if f.perUser {
		header = append(header, "User")
	}
	if !allZeroFiles {
		header = append(header, "Files")
	}
	if !allZeroSize {
		header = append(header, "Size")
	}
	header = append(header, "Path")
	t.AppendHeader(header)

	for _, r := range rows {
		var row table.Row
		if f.perUser {
			row = append(row, f.users.Name(r.UID))
		}
		if !allZeroFiles {
			row = append(row, r.Files)
		}
		if !allZeroSize {
			row = append(row, humanize.IBytes(uint64(r.Size)))
		}
		row = append(row, r.Path)
		t.AppendRow(row)
	}

	t.Render()
	return nil
}

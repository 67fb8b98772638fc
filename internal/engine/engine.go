package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"
)

// Results is the raw output of a traversal: every successfully accounted
// directory plus every directory that could not be accounted for. The
// caller (the Aggregator) rolls DirResults up the tree.
type Results struct {
	Dirs []DirResult
	Errs []ErrResult
}

// Run drives one full traversal of roots to completion: it dedups roots by
// prefix, seeds the queue and Coordinator, starts the worker pool, and
// drains results until quiescence is detected (spec.md §4.4/§4.5).
func Run(roots []string, opts Options) (Results, error) {
	if len(roots) == 0 {
		roots = []string{"."}
	}
	roots = dedupRootsByPrefix(roots)

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	queue := newWorkQueue()
	results := make(chan any, 1024)
	coord := newCoordinator(queue, workers, time.Duration(opts.StatusInterval)*time.Second, opts.StatusWriter)
	coord.seed(len(roots))

	onTick := func(dir string, count, size int64) {
		coord.msgCh <- tickMsg{dir: dir, count: count, size: size}
	}

	wg := make([]*worker, workers)
	for i := range wg {
		wg[i] = newWorker(i, queue, opts.Exclude, opts.Include, onTick, results, coord)
		go wg[i].run()
	}
	go coord.run()

	rootItems, err := resolveRoots(roots)
	if err != nil {
		return Results{}, err
	}
	for _, item := range rootItems {
		queue.push(queueItem{work: item})
	}
	// Balances the synthetic "+1" the Coordinator seeded for this initial
	// submission (spec.md §4.5 "Bootstrapping"): the manager's own
	// submission is immediately marked done once the roots are queued, so
	// quiescence becomes reachable once every real WorkItem has finished.
	coord.msgCh <- dirStateMsg{submitted: 0, workerID: 0}

	var out Results
	var managerTotal int
	collecting := true
	for collecting {
		select {
		case msg := <-results:
			switch m := msg.(type) {
			case DirResult:
				out.Dirs = append(out.Dirs, m)
			case ErrResult:
				out.Errs = append(out.Errs, m)
			}
		case done := <-coord.doneCh:
			managerTotal = done.totalWork
			collecting = false
		}
	}

	// A worker reports its dirStateMsg (which can trigger quiescence and
	// the doneCh send) before it pushes the matching result, so doneCh can
	// race ahead of the last few results still in flight. Block for them:
	// every dirStateMsg has a matching result already queued or inbound.
	for len(out.Dirs)+len(out.Errs) < managerTotal {
		switch m := (<-results).(type) {
		case DirResult:
			out.Dirs = append(out.Dirs, m)
		case ErrResult:
			out.Errs = append(out.Errs, m)
		}
	}

	return out, nil
}

// resolveRoots stats each root directory and turns it into a synthetic
// top-level WorkItem with ParentInode 0, per spec.md's data model. A root's
// Name is the path exactly as the caller gave it, matching the GLOSSARY's
// rule that the reported path is the joined sequence of names from root to
// node: the root's own row uses the root argument verbatim.
func resolveRoots(roots []string) ([]WorkItem, error) {
	items := make([]WorkItem, 0, len(roots))
	for _, r := range roots {
		fi, err := os.Lstat(r)
		if err != nil {
			return nil, fmt.Errorf("engine: root %q: %w", r, err)
		}
		st, ok := fi.Sys().(*syscall.Stat_t)
		if !ok {
			return nil, fmt.Errorf("engine: root %q: no stat_t available", r)
		}
		items = append(items, WorkItem{
			ParentPath:  "",
			Name:        r,
			ParentInode: 0,
			Inode:       st.Ino,
		})
	}
	return items, nil
}

// dedupRootsByPrefix drops any root that is the same path as, or nested
// under, another root already in the list, per the GLOSSARY's "Root" entry.
func dedupRootsByPrefix(roots []string) []string {
	type resolved struct {
		orig string
		abs  string
	}
	rs := make([]resolved, 0, len(roots))
	for _, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			abs = r
		}
		rs = append(rs, resolved{orig: r, abs: filepath.Clean(abs)})
	}
	sort.Slice(rs, func(i, j int) bool { return len(rs[i].abs) < len(rs[j].abs) })

	var kept []resolved
	for _, r := range rs {
		covered := false
		for _, k := range kept {
			if r.abs == k.abs || strings.HasPrefix(r.abs, k.abs+string(filepath.Separator)) {
				covered = true
				break
			}
		}
		if !covered {
			kept = append(kept, r)
		}
	}

	out := make([]string, len(kept))
	for i, k := range kept {
		out[i] = k.orig
	}
	return out
}

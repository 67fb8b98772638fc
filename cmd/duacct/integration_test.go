package main

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"github.com/mwillner/duacct/internal/aggregate"
	"github.com/mwillner/duacct/internal/engine"
)

func mustWriteFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

func rowsFor(t *testing.T, root string, opts engine.Options) []aggregate.Row {
	t.Helper()
	if opts.Workers == 0 {
		opts.Workers = 2
	}
	results, err := engine.Run([]string{root}, opts)
	if err != nil {
		t.Fatalf("engine.Run: %v", err)
	}
	store := aggregate.NewStore()
	for _, d := range results.Dirs {
		store.Add(aggregate.DirResult{
			Name: d.Name, ParentInode: d.ParentInode, Inode: d.Inode,
			FilesByUID: d.FilesByUID, SizeByUID: d.SizeByUID,
		})
	}
	return aggregate.Run(store, aggregate.Options{
		MaxDepth:       1 << 30,
		Exclude:        opts.Exclude,
		Include:        opts.Include,
		ExcludeSubdirs: opts.ExcludeSubdirs,
		PerUser:        opts.PerUser,
	})
}

func rowByPath(rows []aggregate.Row, path string) (aggregate.Row, bool) {
	for _, r := range rows {
		if r.Path == path {
			return r, true
		}
	}
	return aggregate.Row{}, false
}

// Scenario 1: an empty tree reports one zero row for the root.
func TestScenarioEmptyTree(t *testing.T) {
	root := t.TempDir()
	rows := rowsFor(t, root, engine.Options{})
	r, ok := rowByPath(rows, root)
	if !ok {
		t.Fatalf("missing root row in %+v", rows)
	}
	if r.Files != 0 || r.Size != 0 {
		t.Errorf("empty tree: got files=%d size=%d, want 0 0", r.Files, r.Size)
	}
}

// Scenario 2: two direct files roll up to the root's direct tally.
func TestScenarioSimpleFiles(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a"), 1)
	mustWriteFile(t, filepath.Join(root, "b"), 2)

	rows := rowsFor(t, root, engine.Options{})
	r, ok := rowByPath(rows, root)
	if !ok {
		t.Fatalf("missing root row in %+v", rows)
	}
	if r.Files != 2 || r.Size != 3 {
		t.Errorf("got files=%d size=%d, want 2 3", r.Files, r.Size)
	}
}

// Scenario 3: nested subdirectory rolls up into the parent, and the
// subdirectory's own inode is credited as one file on its parent.
func TestScenarioNestedSubdirRollup(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	mustWriteFile(t, filepath.Join(sub, "c"), 10)
	mustWriteFile(t, filepath.Join(sub, "d"), 20)

	rows := rowsFor(t, root, engine.Options{})

	subRow, ok := rowByPath(rows, sub)
	if !ok {
		t.Fatalf("missing sub row in %+v", rows)
	}
	if subRow.Files != 2 || subRow.Size != 30 {
		t.Errorf("sub: got files=%d size=%d, want 2 30", subRow.Files, subRow.Size)
	}

	rootRow, ok := rowByPath(rows, root)
	if !ok {
		t.Fatalf("missing root row in %+v", rows)
	}
	if rootRow.Files != 3 || rootRow.Size < 30 {
		t.Errorf("root: got files=%d size=%d, want files=3 (sub's two files plus sub's own inode) size>=30 (30 plus sub's own inode size)", rootRow.Files, rootRow.Size)
	}
}

// Scenario 4: two names for the same inode contribute to file count twice
// but to size only once.
func TestScenarioHardLinks(t *testing.T) {
	root := t.TempDir()
	x := filepath.Join(root, "x")
	y := filepath.Join(root, "y")
	mustWriteFile(t, x, 100)
	if err := os.Link(x, y); err != nil {
		t.Skipf("hard links unsupported: %v", err)
	}

	rows := rowsFor(t, root, engine.Options{Workers: 1})
	r, ok := rowByPath(rows, root)
	if !ok {
		t.Fatalf("missing root row in %+v", rows)
	}
	if r.Files != 2 || r.Size != 100 {
		t.Errorf("hard links: got files=%d size=%d, want 2 100", r.Files, r.Size)
	}
}

// Scenario 5: an excluded file is dropped entirely from the tally.
func TestScenarioExclude(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "keep"), 5)
	mustWriteFile(t, filepath.Join(root, "drop.tmp"), 500)

	exclude := regexp.MustCompile(`\.tmp$`)
	rows := rowsFor(t, root, engine.Options{Exclude: exclude})
	r, ok := rowByPath(rows, root)
	if !ok {
		t.Fatalf("missing root row in %+v", rows)
	}
	if r.Files != 1 || r.Size != 5 {
		t.Errorf("exclude: got files=%d size=%d, want 1 5", r.Files, r.Size)
	}
}

// Scenario 6: a directory with 2000 entries exercises the Stat Batcher's
// sharding path; every entry must still appear exactly once.
func TestScenarioLargeDirectorySharding(t *testing.T) {
	root := t.TempDir()
	const n = 2000
	for i := 0; i < n; i++ {
		mustWriteFile(t, filepath.Join(root, "f"+strconv.Itoa(i)), 1)
	}

	rows := rowsFor(t, root, engine.Options{})
	r, ok := rowByPath(rows, root)
	if !ok {
		t.Fatalf("missing root row in %+v", rows)
	}
	if r.Files != n || r.Size != n {
		t.Errorf("sharded directory: got files=%d size=%d, want %d %d", r.Files, r.Size, n, n)
	}
}

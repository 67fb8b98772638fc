package aggregate

import (
	"regexp"
	"testing"
)

func dirResult(name string, parent, inode uint64, files, size map[uint32]int64) DirResult {
	return DirResult{Name: name, ParentInode: parent, Inode: inode, FilesByUID: files, SizeByUID: size}
}

func u(v int64) map[uint32]int64 { return map[uint32]int64{0: v} }

func TestRunSimpleFiles(t *testing.T) {
	s := NewStore()
	s.Add(dirResult("R", 0, 1, u(3), u(60)))

	rows := Run(s, Options{MaxDepth: 1 << 30})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1: %+v", len(rows), rows)
	}
	if rows[0].Path != "R" || rows[0].Files != 3 || rows[0].Size != 60 {
		t.Errorf("unexpected row: %+v", rows[0])
	}
}

func TestRunNestedRollup(t *testing.T) {
	s := NewStore()
	// R (dir entry for "sub" counted as 1 file of its own inode size)
	s.Add(dirResult("R", 0, 1, u(1+1), u(10+20)))
	s.Add(dirResult("sub", 1, 2, u(2), u(30)))

	rows := Run(s, Options{MaxDepth: 1 << 30})
	byPath := map[string]Row{}
	for _, r := range rows {
		byPath[r.Path] = r
	}
	if r, ok := byPath["R/sub"]; !ok || r.Files != 2 || r.Size != 30 {
		t.Errorf("R/sub row = %+v, ok=%v", r, ok)
	}
	root, ok := byPath["R"]
	if !ok {
		t.Fatalf("missing root row")
	}
	if root.Files != (1+1)+2 || root.Size != (10+20)+30 {
		t.Errorf("root rollup = %+v", root)
	}
}

func TestRunMaxDepthZero(t *testing.T) {
	s := NewStore()
	s.Add(dirResult("R", 0, 1, u(2), u(30)))
	s.Add(dirResult("sub", 1, 2, u(2), u(30)))

	rows := Run(s, Options{MaxDepth: 0})
	if len(rows) != 1 || rows[0].Path != "R" {
		t.Fatalf("max-depth 0 should report only root, got %+v", rows)
	}
}

func TestRunExcludeSubdirs(t *testing.T) {
	s := NewStore()
	s.Add(dirResult("R", 0, 1, u(1), u(10)))
	s.Add(dirResult("sub", 1, 2, u(2), u(30)))

	rows := Run(s, Options{MaxDepth: 1 << 30, ExcludeSubdirs: true})
	byPath := map[string]Row{}
	for _, r := range rows {
		byPath[r.Path] = r
	}
	if root := byPath["R"]; root.Files != 1 || root.Size != 10 {
		t.Errorf("exclude-subdirs root should keep direct tally only, got %+v", root)
	}
}

func TestRunPerUser(t *testing.T) {
	s := NewStore()
	s.Add(dirResult("R", 0, 1, map[uint32]int64{100: 2, 200: 0}, map[uint32]int64{100: 20, 200: 0}))

	rows := Run(s, Options{MaxDepth: 1 << 30, PerUser: true})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (uid 200 has zero count/size): %+v", len(rows), rows)
	}
	if rows[0].UID != 100 || rows[0].Files != 2 || rows[0].Size != 20 {
		t.Errorf("unexpected row: %+v", rows[0])
	}
}

func TestRunFileLimit(t *testing.T) {
	s := NewStore()
	s.Add(dirResult("R", 0, 1, u(1), u(5)))

	rows := Run(s, Options{MaxDepth: 1 << 30, FileLimit: 2})
	if len(rows) != 0 {
		t.Fatalf("expected row suppressed below file-limit, got %+v", rows)
	}
}

func TestRunErroredBranchOmitted(t *testing.T) {
	s := NewStore()
	s.Add(dirResult("R", 0, 1, u(1), u(10)))
	s.tree[1] = append(s.tree[1], 99) // child inode 99 never Added: errored branch

	rows := Run(s, Options{MaxDepth: 1 << 30})
	if len(rows) != 1 || rows[0].Files != 1 || rows[0].Size != 10 {
		t.Errorf("errored child should contribute nothing, got %+v", rows)
	}
}

func TestRunZeroSumFilteredBranchSuppressed(t *testing.T) {
	s := NewStore()
	s.Add(dirResult("R", 0, 1, map[uint32]int64{}, map[uint32]int64{}))

	rows := Run(s, Options{MaxDepth: 1 << 30, Include: regexp.MustCompile(`nevermatches$`)})
	if len(rows) != 0 {
		t.Errorf("zero-sum node failing include should be suppressed, got %+v", rows)
	}
}

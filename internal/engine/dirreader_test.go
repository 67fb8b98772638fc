package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStreamRootDirSkipsDotEntries(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a"), nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		t.Fatalf("OpenRoot: %v", err)
	}
	defer root.Close()

	var got []entry
	if err := streamRootDir(root, func(e entry) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("streamRootDir: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(got), got)
	}
	byName := map[string]bool{}
	for _, e := range got {
		byName[e.name] = e.isDir
	}
	if isDir, ok := byName["a"]; !ok || isDir {
		t.Errorf("expected file entry 'a', got isDir=%v ok=%v", isDir, ok)
	}
	if isDir, ok := byName["sub"]; !ok || !isDir {
		t.Errorf("expected dir entry 'sub', got isDir=%v ok=%v", isDir, ok)
	}
}

func TestStreamRootDirLargeDirectory(t *testing.T) {
	dir := t.TempDir()
	const n = dirReadBatch + 500
	for i := 0; i < n; i++ {
		f, err := os.CreateTemp(dir, "f*")
		if err != nil {
			t.Fatalf("CreateTemp: %v", err)
		}
		f.Close()
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		t.Fatalf("OpenRoot: %v", err)
	}
	defer root.Close()

	count := 0
	if err := streamRootDir(root, func(entry) error {
		count++
		return nil
	}); err != nil {
		t.Fatalf("streamRootDir: %v", err)
	}
	if count != n {
		t.Errorf("got %d entries across multiple ReadDir batches, want %d", count, n)
	}
}

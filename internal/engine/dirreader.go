package engine

import (
	"io"
	"os"
)

// dirReadBatch bounds how many entries are materialized per ReadDir call so
// that directories with millions of entries are streamed rather than
// slurped whole into memory.
const dirReadBatch = 4096

// entry is one (name, dtype) pair yielded by the Directory Reader. isDir
// reflects the filesystem's d_type hint when the platform's dirent carries
// one; Go's os.DirEntry.Type() already falls back to an lstat when the
// dirent type is DT_UNKNOWN, which is exactly the "follow-up stat to
// determine kind" behavior spec.md §4.1 calls for, so no separate unknown
// state needs to be threaded through here.
type entry struct {
	name  string
	isDir bool
}

// streamRootDir streams the entries of root itself (the directory root was
// opened on) to fn, skipping "." and "..". It never buffers the full
// listing: each ReadDir call returns at most dirReadBatch entries.
//
// root is an *os.Root scoped to one WorkItem's absolute path — all reads
// and stats for that item go through it, so no worker ever calls
// os.Chdir and the process-wide cwd is never mutated. This is the
// dirfd-relative strategy spec.md §4.3/§9 prefers over chdir, letting
// workers be goroutines sharing one process instead of separate processes.
//
// An error returned from open surfaces to the caller as a directory-level
// error (handled by the Accountant, per spec). An error returned mid-stream
// from fn or from ReadDir itself terminates iteration immediately.
func streamRootDir(root *os.Root, fn func(entry) error) error {
	f, err := root.Open(".")
	if err != nil {
		return err
	}
	defer f.Close()
	return streamOpenDir(f, fn)
}

func streamOpenDir(f *os.File, fn func(entry) error) error {
	for {
		dirents, err := f.ReadDir(dirReadBatch)
		for _, de := range dirents {
			name := de.Name()
			if name == "." || name == ".." {
				continue
			}
			if err := fn(entry{name: name, isDir: de.IsDir()}); err != nil {
				return err
			}
		}
		if err == io.EOF || (err == nil && len(dirents) == 0) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

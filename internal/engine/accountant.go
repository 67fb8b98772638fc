package engine

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"syscall"
)

// progressTickEvery is how many stat'd entries elapse between progress
// ticks sent to the Coordinator, per spec.md §4.3 step 2. A var, not a
// const, so tests can shrink it instead of creating huge fixtures.
var progressTickEvery int64 = 10000

// accountant implements the Per-Directory Accountant (spec.md §4.3) for one
// worker. Its HardLinkSet is worker-local for the worker's entire lifetime.
type accountant struct {
	hardlinks *hardLinkSet
	exclude   *regexp.Regexp
	include   *regexp.Regexp
	onTick    func(path string, count int64, size int64)
}

func newAccountant(exclude, include *regexp.Regexp, onTick func(string, int64, int64)) *accountant {
	return &accountant{
		hardlinks: newHardLinkSet(),
		exclude:   exclude,
		include:   include,
		onTick:    onTick,
	}
}

// dispatchError wraps an open/enumerate failure on a WorkItem's directory,
// classified per spec.md §4.3/§7.
type dispatchError struct {
	path string
	err  error
}

func (e *dispatchError) Error() string { return fmt.Sprintf("%s: %v", e.path, e.err) }
func (e *dispatchError) Unwrap() error { return e.err }

// account runs the full per-directory pipeline for item and returns its
// DirResult plus the child WorkItems discovered (both subdirectories that
// matched the include filter and those that didn't, per the Open Question
// in spec.md §9 — non-matching subdirectories are still submitted as work
// so traversal continues, just uncredited).
func (a *accountant) account(item WorkItem) (DirResult, []WorkItem, error) {
	absPath := item.AbsPath()

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return DirResult{}, nil, &dispatchError{path: absPath, err: err}
	}
	defer root.Close()

	result := DirResult{
		Name:        item.Name,
		ParentInode: item.ParentInode,
		Inode:       item.Inode,
		FilesByUID:  make(map[uint32]int64),
		SizeByUID:   make(map[uint32]int64),
	}

	var dirNames []string
	var maybeFileNames []string

	err = streamRootDir(root, func(e entry) error {
		entryAbsPath := absPath + "/" + e.name
		if a.exclude != nil && a.exclude.MatchString(entryAbsPath) {
			return nil
		}
		if e.isDir {
			dirNames = append(dirNames, e.name)
		} else {
			maybeFileNames = append(maybeFileNames, e.name)
		}
		return nil
	})
	if err != nil {
		return DirResult{}, nil, &dispatchError{path: absPath, err: err}
	}

	var processed, lastTickCount, lastTickSize int64
	maybeTick := func() {
		processed++
		if processed%progressTickEvery != 0 || a.onTick == nil {
			return
		}
		count, size := sumInt64(result.FilesByUID), sumInt64(result.SizeByUID)
		a.onTick(absPath, count-lastTickCount, size-lastTickSize)
		lastTickCount, lastTickSize = count, size
	}

	// Stat non-dirs first. Some of these will turn out to be directories
	// when the d_type hint was unavailable (spec.md §4.3 step 2).
	for sr := range statBatch(root, maybeFileNames) {
		if !sr.ok {
			continue
		}
		rec := sr.rec

		if rec.IsDir {
			dirNames = append(dirNames, rec.Name)
			maybeTick()
			continue
		}

		entryAbsPath := absPath + "/" + rec.Name
		if a.include != nil && !a.include.MatchString(entryAbsPath) {
			maybeTick()
			continue
		}

		if a.hardlinks.creditSize(rec.Ino, rec.Nlink) {
			result.SizeByUID[rec.UID] += rec.Size
		}
		result.FilesByUID[rec.UID]++
		maybeTick()
	}

	// Stat subdirectories and submit them as child work. Per the Open
	// Question in spec.md §9, a subdirectory that fails the include filter
	// is still submitted (so traversal continues into it) but is not
	// credited to this directory's own tally.
	var children []WorkItem
	for sr := range statBatch(root, dirNames) {
		if !sr.ok {
			continue
		}
		rec := sr.rec

		entryAbsPath := absPath + "/" + rec.Name
		if a.include == nil || a.include.MatchString(entryAbsPath) {
			result.FilesByUID[rec.UID]++
			result.SizeByUID[rec.UID] += rec.Size
		}
		maybeTick()

		children = append(children, WorkItem{
			ParentPath:  absPath,
			Name:        rec.Name,
			ParentInode: item.Inode,
			Inode:       rec.Ino,
		})
	}

	return result, children, nil
}

func sumInt64(m map[uint32]int64) int64 {
	var total int64
	for _, v := range m {
		total += v
	}
	return total
}

// classifyDispatchError reports the errno class of a dispatch failure per
// spec.md §7: EACCES and ENOENT are warnings, anything else is fatal for the
// worker that hit it.
func classifyDispatchError(err error) (warning bool, errno syscall.Errno, ok bool) {
	var de *dispatchError
	if !errors.As(err, &de) {
		return false, 0, false
	}
	var se syscall.Errno
	if !errors.As(de.err, &se) {
		return false, 0, false
	}
	switch se {
	case syscall.EACCES, syscall.ENOENT:
		return true, se, true
	default:
		return false, se, true
	}
}

// Package engine implements the parallel directory-tree accounting core:
// directory enumeration, stat batching, per-directory tallying, the worker
// pool, and the termination-detecting coordinator.
package engine

import "regexp"

// WorkItem names one directory still to be accounted for. ParentInode is 0
// for root directories (the synthetic root parent per spec).
type WorkItem struct {
	ParentPath  string
	Name        string
	ParentInode uint64
	Inode       uint64
}

// AbsPath returns the absolute path this work item refers to.
func (w WorkItem) AbsPath() string {
	if w.ParentPath == "" {
		return w.Name
	}
	return w.ParentPath + "/" + w.Name
}

// DirResult is the direct-children tally for one successfully accounted
// directory.
type DirResult struct {
	Name        string
	ParentInode uint64
	Inode       uint64
	FilesByUID  map[uint32]int64
	SizeByUID   map[uint32]int64
}

// ErrResult signals that a directory could not be accounted for. It carries
// no tally and is consumed only for termination bookkeeping.
type ErrResult struct {
	Path string
	Err  error
}

// StatRecord holds the lstat(2) fields the Accountant needs: mode bits via
// IsDir, size, inode, link count and owning UID.
type StatRecord struct {
	Name   string
	Ino    uint64
	Size   int64
	Nlink  uint64
	UID    uint32
	IsDir  bool
	Exists bool
}

// Options configures a traversal. The zero value is usable: Run treats a
// Workers value below 1 as 1, and nil filters and a zero StatusInterval
// disable filtering and progress output.
type Options struct {
	Workers         int
	MaxDepth        int
	FileLimit       int64
	SizeLimit       int64
	Exclude         *regexp.Regexp
	Include         *regexp.Regexp
	ExcludeSubdirs  bool
	PerUser         bool
	StatusInterval  int // seconds; 0 disables periodic progress
	StatusWriter    ProgressWriter
}

// ProgressWriter receives periodic progress lines. Implemented by os.Stderr
// wrapped through fmt.Fprintf at the call site; split out as an interface so
// tests can capture output without touching the real stderr.
type ProgressWriter interface {
	Write(p []byte) (int, error)
}

package aggregate

import (
	"regexp"
)

// Options configures the roll-up and row-filtering pass (spec.md §4.6/§6).
type Options struct {
	MaxDepth       int
	FileLimit      int64
	SizeLimit      int64
	Exclude        *regexp.Regexp
	Include        *regexp.Regexp
	ExcludeSubdirs bool
	PerUser        bool
}

// Row is one emitted output line: either a single aggregate row or, in
// per-user mode, one row per qualifying UID.
type Row struct {
	Path  string
	UID   uint32
	User  bool
	Files int64
	Size  int64
}

type stackNode struct {
	inode uint64
	path  string
	depth int
}

// Run performs the depth-first post-order roll-up described in spec.md
// §4.6 over every root in store, returning the filtered report rows in
// traversal order.
func Run(store *Store, opts Options) []Row {
	var rows []Row
	for _, rootInode := range store.Roots() {
		root, ok := store.all[rootInode]
		if !ok {
			continue
		}
		rows = append(rows, runOne(store, rootInode, root.name, opts)...)
	}
	return rows
}

func runOne(store *Store, rootInode uint64, rootPath string, opts Options) []Row {
	// Build the reverse-order stack: pop a node, record it, push its
	// children. Consuming the recorded order back-to-front yields a
	// post-order traversal, per spec.md §4.6.
	stack := []stackNode{{inode: rootInode, path: rootPath, depth: 0}}
	var order []stackNode
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, n)
		for _, childInode := range store.tree[n.inode] {
			child, ok := store.all[childInode]
			if !ok {
				// Invariant: a TREE child absent from ALL was an errored
				// branch; it contributes nothing and is omitted.
				continue
			}
			stack = append(stack, stackNode{
				inode: childInode,
				path:  n.path + "/" + child.name,
				depth: n.depth + 1,
			})
		}
	}

	var rows []Row
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		node := store.all[n.inode]

		if !opts.ExcludeSubdirs {
			for _, childInode := range store.tree[n.inode] {
				child, ok := store.all[childInode]
				if !ok || child.countedFlag {
					continue
				}
				addInto(node.filesByUID, child.filesByUID)
				addInto(node.sizeByUID, child.sizeByUID)
				child.countedFlag = true
			}
		}

		sumCount := sumInt64(node.filesByUID)
		sumSize := sumInt64(node.sizeByUID)

		if sumCount == 0 && sumSize == 0 && filteredOut(n.path, opts) {
			continue
		}

		if n.depth > opts.MaxDepth {
			continue
		}

		if opts.PerUser {
			for uid, files := range node.filesByUID {
				size := node.sizeByUID[uid]
				if files > opts.FileLimit || size > opts.SizeLimit {
					rows = append(rows, Row{Path: n.path, UID: uid, User: true, Files: files, Size: size})
				}
			}
			continue
		}

		if sumCount >= opts.FileLimit && sumSize >= opts.SizeLimit {
			rows = append(rows, Row{Path: n.path, Files: sumCount, Size: sumSize})
		}
	}
	return rows
}

// filteredOut reports whether path would have been dropped by the
// exclude/include filters, used only to suppress empty output lines for
// branches that were entirely filtered out during traversal (spec.md
// §4.6).
func filteredOut(path string, opts Options) bool {
	if opts.Exclude != nil && opts.Exclude.MatchString(path) {
		return true
	}
	if opts.Include != nil && !opts.Include.MatchString(path) {
		return true
	}
	return false
}

func addInto(dst, src map[uint32]int64) {
	for uid, v := range src {
		dst[uid] += v
	}
}

func sumInt64(m map[uint32]int64) int64 {
	var total int64
	for _, v := range m {
		total += v
	}
	return total
}

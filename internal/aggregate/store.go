// Package aggregate implements the Result Store and the post-traversal
// depth-first roll-up that turns a flat set of per-directory tallies into
// the filtered, depth-bounded report rows the Formatter prints.
package aggregate

// entry is one node's accumulated state: its own direct tally plus,
// once roll-up visits it, its subtree tally folded in.
type entry struct {
	name        string
	parentInode uint64
	filesByUID  map[uint32]int64
	sizeByUID   map[uint32]int64
	countedFlag bool
}

// Store is the ResultStore of spec.md §3/§4.6: ALL keyed by inode, TREE
// keyed by parent inode with children in arrival order. Root directories
// are recorded under the synthetic parent inode 0.
type Store struct {
	all  map[uint64]*entry
	tree map[uint64][]uint64
}

// DirResult mirrors engine.DirResult without importing the engine package,
// keeping aggregate usable standalone and in tests.
type DirResult struct {
	Name        string
	ParentInode uint64
	Inode       uint64
	FilesByUID  map[uint32]int64
	SizeByUID   map[uint32]int64
}

func NewStore() *Store {
	return &Store{
		all:  make(map[uint64]*entry),
		tree: make(map[uint64][]uint64),
	}
}

// Add records one successfully accounted directory. ErrResults carry no
// tally and are never added; their only role is termination bookkeeping,
// already accounted for in the engine.
func (s *Store) Add(r DirResult) {
	s.all[r.Inode] = &entry{
		name:        r.Name,
		parentInode: r.ParentInode,
		filesByUID:  r.FilesByUID,
		sizeByUID:   r.SizeByUID,
	}
	s.tree[r.ParentInode] = append(s.tree[r.ParentInode], r.Inode)
}

// Roots returns the inodes recorded directly under the synthetic root
// parent, in arrival order.
func (s *Store) Roots() []uint64 {
	return s.tree[0]
}

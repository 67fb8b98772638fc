// Package userdb resolves UIDs to user names for the --user report column,
// caching lookups against the system user database (spec.md §3 "UID name
// table").
package userdb

import (
	"fmt"
	"os/user"
	"strconv"
	"sync"
)

// Table is a lazily-populated UID -> name cache. The zero value is ready to
// use. Misses and lookup failures both render as "unknown(<id>)" rather
// than erroring, since a missing passwd entry is not a fatal condition for
// a reporting tool.
type Table struct {
	mu    sync.Mutex
	names map[uint32]string
}

// Name returns the user name for uid, consulting the system user database
// on first use and caching the result (including failures) for the life of
// the Table.
func (t *Table) Name(uid uint32) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.names == nil {
		t.names = make(map[uint32]string)
	}
	if name, ok := t.names[uid]; ok {
		return name
	}

	name := fmt.Sprintf("unknown(%d)", uid)
	if u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10)); err == nil {
		name = u.Username
	}
	t.names[uid] = name
	return name
}

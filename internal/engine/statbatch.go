package engine

import (
	"os"
	"sync"
	"syscall"
)

// statShardThreshold is the input size above which the Stat Batcher splits
// work across auxiliary goroutines (spec.md §4.2: "≈1000 names").
const statShardThreshold = 1000

// statShardCount is the number of auxiliary shards used for large batches.
// Kept small per spec.md §4.2 ("C small, e.g. 2"): lstat is cheap enough
// that more shards mostly add scheduling overhead.
const statShardCount = 2

// statResult pairs a name with its stat outcome. A name whose lstat fails is
// delivered with ok false and an empty rec; callers skip such results.
type statResult struct {
	rec StatRecord
	ok  bool
}

// statBatch produces exactly one StatRecord per input name that could be
// stat'd (lstat-equivalent; symlinks are never followed), delivered on a
// bounded channel in unspecified order. Below statShardThreshold the
// caller's own goroutine does all the work; above it, names are sharded
// across statShardCount auxiliary goroutines feeding the same channel.
func statBatch(root *os.Root, names []string) <-chan statResult {
	if len(names) <= statShardThreshold {
		out := make(chan statResult, len(names))
		for _, n := range names {
			statOne(root, n, out)
		}
		close(out)
		return out
	}

	out := make(chan statResult, min(len(names), 256)+1)
	go func() {
		defer close(out)
		var wg sync.WaitGroup
		shardSize := (len(names) + statShardCount - 1) / statShardCount
		for i := 0; i < len(names); i += shardSize {
			end := min(i+shardSize, len(names))
			shard := names[i:end]
			wg.Add(1)
			go func(shard []string) {
				defer wg.Done()
				for _, n := range shard {
					statOne(root, n, out)
				}
			}(shard)
		}
		wg.Wait()
	}()

	return out
}

func statOne(root *os.Root, name string, out chan<- statResult) {
	fi, err := root.Lstat(name)
	if err != nil {
		out <- statResult{ok: false}
		return
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		out <- statResult{ok: false}
		return
	}
	out <- statResult{
		ok: true,
		rec: StatRecord{
			Name:   name,
			Ino:    st.Ino,
			Size:   fi.Size(),
			Nlink:  uint64(st.Nlink),
			UID:    st.Uid,
			IsDir:  fi.IsDir(),
			Exists: true,
		},
	}
}

package engine

import (
	"fmt"
	"time"

	"github.com/mwillner/duacct/internal/sizefmt"
)

// dirStateMsg reports that a worker finished accounting one directory and
// how many child work items it submitted while doing so (spec.md §4.5).
type dirStateMsg struct {
	submitted int
	workerID  int
}

// tickMsg is a periodic progress report from a worker mid-directory
// (spec.md §4.3 step 2 / §4.5).
type tickMsg struct {
	dir   string
	count int64
	size  int64
}

// managerDone carries the total number of result messages (DirResult +
// ErrResult) the main flow should expect to drain, per spec.md §4.5.
type managerDone struct {
	totalWork int
}

// coordinator tracks outstanding work across all workers, detects
// quiescence, and forwards shutdown (spec.md §4.5).
type coordinator struct {
	submitted []int
	done      []int

	msgCh  chan any
	doneCh chan managerDone
	queue  *workQueue
	nworkers int

	statusInterval time.Duration
	statusOut      ProgressWriter

	// progress accounting, reset each tick so the printed rate is a
	// windowed rate since the last tick rather than a lifetime average.
	cumCount    int64
	cumSize     int64
	lastCount   int64
	lastTick    time.Time
	currentDir  string
}

func newCoordinator(queue *workQueue, nworkers int, statusInterval time.Duration, statusOut ProgressWriter) *coordinator {
	return &coordinator{
		submitted: make([]int, nworkers),
		done:      make([]int, nworkers),
		msgCh:     make(chan any, 1024),
		doneCh:    make(chan managerDone, 1),
		queue:     queue,
		nworkers:  nworkers,
		statusInterval: statusInterval,
		statusOut: statusOut,
		lastTick:  time.Now(),
	}
}

// seed bootstraps submission counts before any worker starts: 1 for the
// synthetic manager submission plus R for the root directories themselves
// (spec.md §4.5 "Bootstrapping").
func (c *coordinator) seed(numRoots int) {
	c.submitted[0] += 1 + numRoots
}

// run processes messages until quiescence is detected, then pushes nworkers
// shutdown markers and reports ManagerDone. It is meant to run in its own
// goroutine for the lifetime of one traversal.
func (c *coordinator) run() {
	var ticker *time.Ticker
	var tickC <-chan time.Time
	if c.statusInterval > 0 && c.statusOut != nil {
		ticker = time.NewTicker(c.statusInterval)
		tickC = ticker.C
		defer ticker.Stop()
	}

	for {
		select {
		case msg := <-c.msgCh:
			switch m := msg.(type) {
			case dirStateMsg:
				c.submitted[m.workerID] += m.submitted
				c.done[m.workerID]++
				if c.quiesced() {
					c.shutdown()
					return
				}
			case tickMsg:
				c.cumCount += m.count
				c.cumSize += m.size
				c.currentDir = m.dir
			}
		case <-tickC:
			c.printStatus()
		}
	}
}

func (c *coordinator) quiesced() bool {
	var s, d int
	for i := range c.submitted {
		s += c.submitted[i]
		d += c.done[i]
	}
	return s == d
}

func (c *coordinator) shutdown() {
	for i := 0; i < c.nworkers; i++ {
		c.queue.push(queueItem{shutdown: true})
	}
	var d int
	for _, v := range c.done {
		d += v
	}
	c.doneCh <- managerDone{totalWork: d - 1}
}

func (c *coordinator) printStatus() {
	now := time.Now()
	elapsed := now.Sub(c.lastTick).Seconds()
	rate := int64(0)
	if elapsed > 0 {
		rate = int64(float64(c.cumCount-c.lastCount) / elapsed)
	}
	fmt.Fprintf(c.statusOut, "# %5d files/s %6d %4s %s\n",
		rate, c.cumCount, sizefmt.ToHuman(c.cumSize), c.currentDir)
	c.lastCount = c.cumCount
	c.lastTick = now
}

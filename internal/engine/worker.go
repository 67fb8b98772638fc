package engine

import (
	"log"
	"regexp"
	"syscall"
)

// worker pulls items from the shared queue until it receives a shutdown
// marker, accounting each directory it pops and forwarding both its result
// and any child work it discovers (spec.md §4.4).
type worker struct {
	id         int
	queue      *workQueue
	accountant *accountant
	results    chan<- any
	coord      *coordinator
}

func newWorker(id int, queue *workQueue, exclude, include *regexp.Regexp, onTick func(string, int64, int64), results chan<- any, coord *coordinator) *worker {
	return &worker{
		id:         id,
		queue:      queue,
		accountant: newAccountant(exclude, include, onTick),
		results:    results,
		coord:      coord,
	}
}

// run is the worker's main loop. It exits when it pops a shutdown marker or
// when a non-warning errno makes further progress on this worker pointless
// (spec.md §7: fatal errno classes abort the worker, not the whole run).
func (w *worker) run() {
	for {
		item := w.queue.pop()
		if item.shutdown {
			return
		}

		result, children, err := w.accountant.account(item.work)
		if err != nil {
			warning, errno, known := classifyDispatchError(err)
			switch {
			case known && warning && errno == syscall.EACCES:
				log.Printf("# access denied to directory %s\n", item.work.AbsPath())
			case known && warning && errno == syscall.ENOENT:
				log.Printf("# could not access dir,file or file in dir %s\n", item.work.AbsPath())
			default:
				log.Printf("ERROR processing %q: %v\n", item.work.AbsPath(), err)
			}
			w.results <- ErrResult{Path: item.work.AbsPath(), Err: err}
			w.coord.msgCh <- dirStateMsg{submitted: 0, workerID: w.id}
			if known && !warning {
				return
			}
			_ = errno
			continue
		}

		// Announce the submission before the children are actually queued
		// (spec.md §4.3 step 3 / §4.5): workQueue.push/pop and msgCh sends
		// have no happens-before relationship across goroutines, so pushing
		// children first could let another worker pop and finish a leaf
		// child — sending its own dirStateMsg — before this worker's own
		// submitted:N message arrives, making quiescence detectable one
		// message early and undercounting totalWork.
		w.coord.msgCh <- dirStateMsg{submitted: len(children), workerID: w.id}
		for _, child := range children {
			w.queue.push(queueItem{work: child})
		}
		w.results <- result
	}
}

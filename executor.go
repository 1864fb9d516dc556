package hubbub

import (
	"log/slog"
	"runtime"
	"sync"

	"github.com/hubbub-go/hubbub/pkg/slogx"
)

// Executor is the notification execution context: delivery closures matched
// by Notify are submitted here and run without the publisher waiting for
// them. Implementations must not block Go for long; Notify calls it while
// iterating its snapshot.
type Executor interface {
	Go(fn func())
}

// protect runs fn and keeps a panic inside a delivery from escaping into the
// executor. Publishers never observe subscriber faults.
func protect(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("notification delivery panicked", slogx.Recovered(r))
		}
	}()
	fn()
}

// GoExecutor runs every delivery on its own goroutine. This is the default
// execution context.
type GoExecutor struct{}

func (GoExecutor) Go(fn func()) {
	go protect(fn)
}

// CallerExecutor runs deliveries inline on the notifying goroutine, in
// submission order. Useful for tests and for callers that want Notify to
// imply completed side effects.
type CallerExecutor struct{}

func (CallerExecutor) Go(fn func()) {
	protect(fn)
}

// PoolExecutor runs deliveries on a fixed set of worker goroutines fed by a
// bounded queue.
type PoolExecutor struct {
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

// NewPoolExecutor starts a pool with the given worker count and queue
// capacity. Non-positive workers defaults to GOMAXPROCS; a negative queue is
// treated as unbuffered.
func NewPoolExecutor(workers, queue int) *PoolExecutor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if queue < 0 {
		queue = 0
	}
	p := &PoolExecutor{tasks: make(chan func(), queue)}
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *PoolExecutor) worker() {
	defer p.wg.Done()
	for fn := range p.tasks {
		protect(fn)
	}
}

// Go submits fn to the pool, blocking while the queue is full. Submissions
// after Close are dropped.
func (p *PoolExecutor) Go(fn func()) {
	defer func() {
		if recover() != nil {
			slog.Debug("delivery submitted after pool close, dropped")
		}
	}()
	p.tasks <- fn
}

// Close stops intake and waits for queued deliveries to finish.
func (p *PoolExecutor) Close() {
	p.once.Do(func() { close(p.tasks) })
	p.wg.Wait()
}

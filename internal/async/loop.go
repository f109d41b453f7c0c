// Package async provides the cooperative frame loop that tile loading runs on.
//
// Blocking work is handed to a worker pool, but every continuation, future
// resolution and event callback runs on the goroutine that calls Poll. Code
// driven from the loop can therefore touch tile state without locks.
package async

import (
	"sync"
	"time"

	"github.com/alitto/pond/v2"
)

// Loop is a queue of callbacks drained once per frame.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	pool pond.Pool
}

// NewLoop creates a loop whose blocking tasks run on a pool of the given size.
func NewLoop(workers int) *Loop {
	if workers < 1 {
		workers = 1
	}
	return &Loop{
		wake: make(chan struct{}, 1),
		pool: pond.NewPool(workers),
	}
}

// Post queues fn to run during the next Poll. It is safe to call from any
// goroutine. Callbacks posted after Close are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Poll runs queued callbacks on the calling goroutine until the queue is
// empty and returns how many ran. Callbacks queued while polling also run.
func (l *Loop) Poll() int {
	ran := 0
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return ran
		}
		for _, fn := range batch {
			fn()
			ran++
		}
	}
}

// Pending returns the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Wake is signalled whenever a callback is posted.
func (l *Loop) Wake() <-chan struct{} {
	return l.wake
}

// RunUntil polls until cond holds, sleeping on Wake between polls. It
// reports false if timeout passes first.
func (l *Loop) RunUntil(cond func() bool, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		l.Poll()
		if cond() {
			return true
		}
		select {
		case <-l.wake:
		case <-time.After(10 * time.Millisecond):
		case <-deadline.C:
			l.Poll()
			return cond()
		}
	}
}

// Close waits for running tasks to finish and drops anything still queued.
func (l *Loop) Close() {
	l.pool.StopAndWait()

	l.mu.Lock()
	l.closed = true
	l.queue = nil
	l.mu.Unlock()
}

// Go runs fn on the loop's worker pool and settles the returned future on
// the loop goroutine.
func Go[T any](l *Loop, fn func() (T, error)) *Future[T] {
	f := NewFuture[T]()
	l.pool.Submit(func() {
		v, err := fn()
		l.Post(func() { f.settle(v, err) })
	})
	return f
}

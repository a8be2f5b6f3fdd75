// internal/eventloop/loop.go
//
// Single-goroutine cooperative event loop.
//
// Context
// -------
// Every task that touches the page document runs here, one at a time, in
// the order it was posted.  Work that blocks (HTTP, unit loads) happens on
// other goroutines and posts its completion back with Post.  This gives the
// widget code the same guarantees a browser page has: no two tasks
// interleave, and a task posted during a turn runs after that turn ends.
//
// Timers
// ------
// After and Every return a *Timer whose Stop cancels future firings.  A
// fired timer does not run its callback directly; it posts it, so timer
// callbacks obey the same ordering as every other task.  Close stops every
// timer the loop still owns.
//
// Notes
// -----
// • Post never blocks; the queue is unbounded.
// • A panicking task is recovered and logged; the loop keeps running.
// • Oxford commas, two spaces after periods.
package eventloop

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("event loop closed")

// Loop executes posted tasks sequentially on the goroutine running Run.
type Loop struct {
	log *zap.SugaredLogger

	mu     sync.Mutex
	queue  []func()
	closed bool
	timers map[*Timer]struct{}

	wake chan struct{}
	done chan struct{}
}

// New returns an idle loop.  Call Run to start processing.
func New(log *zap.SugaredLogger) *Loop {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Loop{
		log:    log,
		timers: make(map[*Timer]struct{}),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Post schedules fn for a later turn.  It reports false once the loop is
// closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do posts fn and waits for it to finish.  Never call Do from a task; it
// would wait on itself.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrClosed
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes tasks until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.drain()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
		}
	}
}

// drain runs tasks until the queue is empty, including tasks posted by the
// tasks it runs.
func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 || l.closed {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.run(fn)
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Errorw("event loop task panicked", "panic", r)
		}
	}()
	fn()
}

// Pending reports the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Close stops every timer, drops queued tasks, and ends Run.  Safe to call
// more than once.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.queue = nil
	timers := l.timers
	l.timers = make(map[*Timer]struct{})
	l.mu.Unlock()

	for t := range timers {
		t.stop()
	}
	close(l.done)
}

//
// Timers
//

// Timer is a cancel handle for After and Every.
type Timer struct {
	loop *Loop
	once sync.Once
	quit chan struct{}

	mu sync.Mutex
	t  *time.Timer
	tk *time.Ticker
}

// After runs fn on the loop once d has elapsed.
func (l *Loop) After(d time.Duration, fn func()) *Timer {
	tm := &Timer{loop: l, quit: make(chan struct{})}
	l.track(tm)
	t := time.AfterFunc(d, func() {
		l.forget(tm)
		select {
		case <-tm.quit:
			return
		default:
		}
		l.Post(fn)
	})
	tm.mu.Lock()
	tm.t = t
	tm.mu.Unlock()
	return tm
}

// Every runs fn on the loop each time d elapses, until stopped.  d must be
// positive.
func (l *Loop) Every(d time.Duration, fn func()) *Timer {
	tm := &Timer{loop: l, quit: make(chan struct{}), tk: time.NewTicker(d)}
	l.track(tm)
	go func() {
		for {
			select {
			case <-tm.quit:
				return
			case <-tm.tk.C:
				l.Post(fn)
			}
		}
	}()
	return tm
}

// Stop cancels future firings.  A callback already posted still runs.
func (t *Timer) Stop() {
	if t == nil {
		return
	}
	t.loop.forget(t)
	t.stop()
}

func (t *Timer) stop() {
	t.once.Do(func() {
		close(t.quit)
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.t != nil {
			t.t.Stop()
		}
		if t.tk != nil {
			t.tk.Stop()
		}
	})
}

func (l *Loop) track(t *Timer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		t.stop()
		return
	}
	l.timers[t] = struct{}{}
}

func (l *Loop) forget(t *Timer) {
	l.mu.Lock()
	delete(l.timers, t)
	l.mu.Unlock()
}

// Timers reports how many timers are still armed.
func (l *Loop) Timers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers)
}

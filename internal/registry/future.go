package registry

import (
	"context"
	"errors"
	"sync"

	"github.com/yanizio/informer/internal/widget"
)

// ErrPending is returned by Future.Result before the future settles.
var ErrPending = errors.New("class resolution pending")

// Future is the shared, settle-once outcome of resolving one type.  Every
// requester of a type holds the same Future.
type Future struct {
	once  sync.Once
	done  chan struct{}
	class *widget.Class
	err   error
}

func newFuture() *Future { return &Future{done: make(chan struct{})} }

// Done is closed once the future settles.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the future settles or ctx ends.
func (f *Future) Wait(ctx context.Context) (*widget.Class, error) {
	select {
	case <-f.done:
		return f.class, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result reports the outcome without blocking.
func (f *Future) Result() (*widget.Class, error) {
	select {
	case <-f.done:
		return f.class, f.err
	default:
		return nil, ErrPending
	}
}

// settle records the outcome.  Later calls are no-ops and report false.
func (f *Future) settle(c *widget.Class, err error) bool {
	first := false
	f.once.Do(func() {
		f.class, f.err = c, err
		close(f.done)
		first = true
	})
	return first
}

func (f *Future) settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

package async

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Future is the pending result of a function started with Go.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// Go runs fn in a new goroutine. A context that is already cancelled
// short-circuits fn. A panic in fn is recovered and reported as an error
// wrapping ErrPanic.
func Go[U any](ctx context.Context, fn func(context.Context) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()
		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.result, f.err = fn(ctx)
	}()
	return f
}

// Await blocks until the function returns.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitTimeout is Await bounded by timeout; it returns ErrTimeout when the
// function is still running.
func (f *Future[U]) AwaitTimeout(timeout time.Duration) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero U
		return zero, ErrTimeout
	}
}

func (f *Future[U]) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result is the settled outcome of one Future.
type Result[U any] struct {
	Value U
	Err   error
}

// Settle waits for every future and returns their outcomes in order. Unlike
// a fail-fast wait, one failure never hides the others.
func Settle[U any](futures ...*Future[U]) []Result[U] {
	out := make([]Result[U], len(futures))
	for i, f := range futures {
		out[i].Value, out[i].Err = f.Await()
	}
	return out
}

// Group runs detached background tasks and lets the owner wait for them,
// typically at shutdown or at the end of a test.
type Group struct {
	wg sync.WaitGroup
}

// Detach runs fn in the background with a context that keeps ctx's values
// but not its cancellation, bounded by timeout when it is positive. Panics
// in fn are recovered and passed to onPanic when it is not nil.
func (g *Group) Detach(ctx context.Context, timeout time.Duration, fn func(context.Context), onPanic func(any)) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil && onPanic != nil {
				onPanic(r)
			}
		}()

		bg := context.WithoutCancel(ctx)
		if timeout > 0 {
			var cancel context.CancelFunc
			bg, cancel = context.WithTimeout(bg, timeout)
			defer cancel()
		}
		fn(bg)
	}()
}

// Wait blocks until every detached task has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}

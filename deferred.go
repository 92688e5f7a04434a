package willitserver

import (
	"context"
	"fmt"
)

// Future is a value that may not be settled yet. Await blocks until the
// value settles or ctx is done.
type Future interface {
	Await(ctx context.Context) (any, error)
}

var _ Future = (*Deferred)(nil)

// Deferred is a Future that settles exactly once. Every Await observes the
// same value or error.
type Deferred struct {
	done chan struct{}
	val  any
	err  error
}

// Go runs fn in its own goroutine and settles with its outcome. A panic in
// fn settles the Deferred with an error.
func Go(fn func() (any, error)) *Deferred {
	d := &Deferred{done: make(chan struct{})}
	go func() {
		defer close(d.done)
		defer func() {
			if msg := recover(); msg != nil {
				d.err = fmt.Errorf("willitserver: deferred function panicked: %v", msg)
			}
		}()
		d.val, d.err = fn()
	}()
	return d
}

// Resolved returns a Deferred already settled with val.
func Resolved(val any) *Deferred {
	d := &Deferred{done: make(chan struct{}), val: val}
	close(d.done)
	return d
}

// Rejected returns a Deferred already settled with err.
func Rejected(err error) *Deferred {
	d := &Deferred{done: make(chan struct{}), err: err}
	close(d.done)
	return d
}

func (d *Deferred) Await(ctx context.Context) (any, error) {
	select {
	case <-d.done:
		return d.val, d.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed once d settles.
func (d *Deferred) Done() <-chan struct{} {
	return d.done
}

// settle awaits value when it is a Future. Only the outermost value is
// inspected, futures nested in composites are left alone.
func settle(ctx context.Context, value any) (any, error) {
	f, ok := value.(Future)
	if !ok {
		return value, nil
	}
	if d, isDeferred := f.(*Deferred); isDeferred && d == nil {
		return nil, nil
	}
	return f.Await(ctx)
}

// Package fetch wraps one backend call in a tri-state result so views can
// render loading, data and failure without sharing state between panels.
package fetch

import (
	"context"
	"errors"
	"sync"
)

// State is the lifecycle of a Result.
type State int

const (
	Loading State = iota
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "unknown"
}

// Result holds the outcome of a single fetch. The zero value is Loading.
type Result[T any] struct {
	State State
	Data  T
	Err   error
}

// Done reports whether the fetch has settled.
func (r Result[T]) Done() bool {
	return r.State != Loading
}

// OK reports whether the fetch succeeded.
func (r Result[T]) OK() bool {
	return r.State == Success
}

// Message is the human-readable failure text, or "" unless failed.
func (r Result[T]) Message() string {
	if r.State != Failure || r.Err == nil {
		return ""
	}
	if errors.Is(r.Err, context.Canceled) {
		return "Request cancelled"
	}
	return r.Err.Error()
}

// Succeeded builds a settled successful Result.
func Succeeded[T any](data T) Result[T] {
	return Result[T]{State: Success, Data: data}
}

// Failed builds a settled failed Result.
func Failed[T any](err error) Result[T] {
	return Result[T]{State: Failure, Err: err}
}

// Load runs fn once and settles the Result. No data is kept on failure.
func Load[T any](ctx context.Context, fn func(context.Context) (T, error)) Result[T] {
	data, err := fn(ctx)
	if err != nil {
		return Failed[T](err)
	}
	return Succeeded(data)
}

// Group runs independent loads concurrently. One load failing never
// cancels or blocks the others.
type Group struct {
	wg sync.WaitGroup
}

// Go starts fn. Results are written through the closure, so each load must
// own its destination.
func (g *Group) Go(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn()
	}()
}

// Wait blocks until every started load has settled.
func (g *Group) Wait() {
	g.wg.Wait()
}

// Into schedules a Load on g whose Result is stored in dst.
func Into[T any](ctx context.Context, g *Group, dst *Result[T], fn func(context.Context) (T, error)) {
	*dst = Result[T]{}
	g.Go(func() {
		*dst = Load(ctx, fn)
	})
}

package dialog

import (
	"context"
	"sync"
)

type outcome struct {
	path *FilePath
	err  error
}

// Await starts a dialog through open and waits for its callback.
//
// The callback resolves a single-slot future: only its first invocation is
// kept and it never blocks, so a driver that fires late (after the wait was
// abandoned) does not leak a goroutine. When ctx ends first, Await returns
// context.Cause(ctx).
func Await(ctx context.Context, open func(cb Callback)) (*FilePath, error) {
	ch := make(chan outcome, 1)
	var once sync.Once
	open(func(path *FilePath, err error) {
		once.Do(func() {
			ch <- outcome{path: path, err: err}
		})
	})

	select {
	case o := <-ch:
		return o.path, o.err
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}

// Gate admits one dialog at a time. Later callers queue in Acquire until the
// holder calls the returned release func or their own ctx ends.
type Gate struct {
	slot chan struct{}
}

// NewGate creates an open gate.
func NewGate() *Gate {
	return &Gate{slot: make(chan struct{}, 1)}
}

// Acquire blocks until the gate is free. A nil Gate never blocks.
func (g *Gate) Acquire(ctx context.Context) (release func(), err error) {
	if g == nil {
		return func() {}, nil
	}
	select {
	case g.slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-g.slot }) }, nil
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}

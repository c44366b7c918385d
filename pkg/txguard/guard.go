// Package txguard serialises ledger mutations and rejects re-entrant calls.
package txguard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var ErrReentrantCall = errors.New("reentrant call rejected")

type ctxKey struct{}

type hold struct {
	g        *Guard
	released atomic.Bool
}

// Guard admits one mutating operation at a time. The context returned by
// Enter is tagged; an operation started with a tagged context (for example
// from inside a transfer callback) fails instead of deadlocking.
type Guard struct {
	slot chan struct{}
}

func New() *Guard { return &Guard{slot: make(chan struct{}, 1)} }

// Enter waits until the guard is free or ctx is done. The release func must
// be called on every exit path; it is safe to call more than once. After
// release the returned context no longer counts as holding the guard.
func (g *Guard) Enter(ctx context.Context) (context.Context, func(), error) {
	if g.Held(ctx) {
		return ctx, func() {}, ErrReentrantCall
	}
	select {
	case g.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx, func() {}, ctx.Err()
	}
	h := &hold{g: g}
	var once sync.Once
	release := func() {
		once.Do(func() {
			h.released.Store(true)
			<-g.slot
		})
	}
	return context.WithValue(ctx, ctxKey{}, h), release, nil
}

// Held reports whether ctx was produced by Enter on g and not yet released.
func (g *Guard) Held(ctx context.Context) bool {
	h, _ := ctx.Value(ctxKey{}).(*hold)
	return h != nil && h.g == g && !h.released.Load()
}

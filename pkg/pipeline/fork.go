package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Fork runs the remaining steps of the level once per item, with the item bound to name in a
// snapshot of the level context. See ForkWith.
func (f *Flow) Fork(name string, items []any) {
	f.ForkWith(name, items, nil)
}

// ForkWith runs the remaining steps of the level once per item, in order, each run being an
// independent branch whose context is a snapshot of the level context plus name: item plus
// extra(item). Branch k+1 starts once branch k completed. The first branch error stops the
// iteration; an ignoring branch does not. The level then completes with its own context: nothing
// a branch sets is merged back.
func (f *Flow) ForkWith(name string, items []any, extra ForkExtra) {
	err, ok := f.settle(nil)
	if !ok {
		return
	}
	if err != nil {
		f.lvl.finish(err)

		return
	}

	it := &forkIterator{
		flow:  f,
		name:  name,
		items: items,
		extra: extra,
	}
	it.loop()
}

// ForkConcurrent is like ForkWith but runs up to limit branches at the same time, limit <= 0
// meaning no limit. The reported error is the first one observed in completion order. Once a
// branch failed no new branch is started, branches already running complete. Options observing
// the pipeline may be called concurrently.
func (f *Flow) ForkConcurrent(name string, items []any, limit int, extra ForkExtra) {
	err, ok := f.settle(nil)
	if !ok {
		return
	}
	if err != nil {
		f.lvl.finish(err)

		return
	}

	errGrp, dCtx := errgroup.WithContext(context.Background())
	if limit > 0 {
		errGrp.SetLimit(limit)
	}

	for k, item := range items {
		if dCtx.Err() != nil {
			break
		}
		ctx := branchContext(f.lvl.base, name, item, extra)
		errGrp.Go(func() error {
			if dCtx.Err() != nil {
				return nil
			}

			errc := make(chan error, 1)
			f.lvl.newBranch(f, k, ctx, func(err error, _ *Context) {
				errc <- err
			}).advance(0)

			return <-errc
		})
	}

	f.lvl.finish(errGrp.Wait())
}

func branchContext(base *Context, name string, item any, extra ForkExtra) *Context {
	ctx := base.Clone()
	ctx.Set(name, item)
	if extra != nil {
		ctx.Merge(extra(item))
	}

	return ctx
}

// forkIterator runs fork branches one after the other. Branches completing synchronously are
// iterated in a loop, a suspended branch resumes the loop from its own goroutine.
type forkIterator struct {
	flow  *Flow
	name  string
	items []any
	extra ForkExtra

	mu      sync.Mutex
	next    int
	err     error
	pending bool
	resume  bool
}

func (it *forkIterator) loop() {
	for {
		it.mu.Lock()
		if it.err != nil || it.next >= len(it.items) {
			err := it.err
			it.mu.Unlock()
			it.flow.lvl.finish(err)

			return
		}
		k := it.next
		it.pending = true
		it.mu.Unlock()

		ctx := branchContext(it.flow.lvl.base, it.name, it.items[k], it.extra)
		it.flow.lvl.newBranch(it.flow, k, ctx, it.done).advance(0)

		it.mu.Lock()
		if it.pending {
			it.resume = true
			it.mu.Unlock()

			return
		}
		it.mu.Unlock()
	}
}

func (it *forkIterator) done(err error, _ *Context) {
	it.mu.Lock()
	it.pending = false
	it.next++
	it.err = err
	resume := it.resume
	it.resume = false
	it.mu.Unlock()

	if resume {
		it.loop()
	}
}

package pipeline

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// Interceptor is a teardown callback registered with Flow.Intercept. It runs once the outcome of
// its level is known and must call proceed exactly once: with nil to keep the outcome, with an
// error to replace it and stop the chain, or with ErrRecovered to clear the outcome error.
type Interceptor func(err error, ctx *Context, proceed func(error))

// unwind runs the level interceptors, last registered first, then calls then with the outcome.
func (l *level) unwind(err error, then func(error)) {
	l.intercept(len(l.interceptors)-1, err, then)
}

func (l *level) intercept(i int, err error, then func(error)) {
	if i < 0 {
		then(err)

		return
	}

	var called atomic.Bool
	proceed := func(proceedErr error) {
		if !called.CompareAndSwap(false, true) {
			l.run.logger(nil).Warn("interceptor proceeded twice")

			return
		}

		switch {
		case errors.Is(proceedErr, ErrRecovered):
			l.intercept(i-1, nil, then)
		case proceedErr != nil:
			then(proceedErr)
		default:
			l.intercept(i-1, err, then)
		}
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if called.Load() {
			panic(r)
		}
		proceed(newPanicError(l.prefix+"interceptor", r))
	}()

	l.interceptors[i](err, l.base, proceed)
}

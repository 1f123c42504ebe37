package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/askiada/go-flow/pkg/pipeline/model"
)

// Flow is the control surface handed to a step. The step must call exactly one of Next, Error,
// Ignore, IgnoreChain, Fork, ForkWith, ForkConcurrent, Intercept or Retry, either before returning
// or later from any goroutine. Calls after the first one are dropped.
type Flow struct {
	lvl     *level
	index   int
	info    *model.StepInfo
	started time.Time
	settled atomic.Bool
}

// Step describes the step this flow belongs to.
func (f *Flow) Step() *model.StepInfo {
	return f.info
}

// Value returns a value of the level context.
func (f *Flow) Value(key string) (any, bool) {
	return f.lvl.base.Lookup(key)
}

// Context returns a snapshot of the level context.
func (f *Flow) Context() *Context {
	return f.lvl.base.Clone()
}

func (f *Flow) isSettled() bool {
	return f.settled.Load()
}

// settle marks the flow as used and runs the after step hooks. ok is false when the flow had
// already settled. The returned error is stepErr, or the hook error if the step succeeded.
func (f *Flow) settle(stepErr error) (err error, ok bool) {
	if !f.settled.CompareAndSwap(false, true) {
		f.lvl.run.logger(f.info).WithError(ErrFlowSettled).Warn("flow call dropped")

		return nil, false
	}

	hookErr := f.lvl.run.afterStep(f.info, time.Since(f.started), stepErr)
	if hookErr != nil && stepErr == nil {
		return hookErr, true
	}

	return stepErr, true
}

// Next merges data into the level context and runs the next step. On the last step of a level,
// the level completes.
func (f *Flow) Next(data Data) {
	err, ok := f.settle(nil)
	if !ok {
		return
	}
	if err != nil {
		f.lvl.finish(err)

		return
	}

	f.lvl.base.Merge(data)
	if f.index+1 < len(f.lvl.steps) {
		f.lvl.advance(f.index + 1)

		return
	}
	f.lvl.finish(nil)
}

// Intercept registers fn on the level interceptor chain and continues like Next(nil).
func (f *Flow) Intercept(fn Interceptor) {
	if fn != nil && !f.isSettled() {
		f.lvl.interceptors = append(f.lvl.interceptors, fn)
	}
	f.Next(nil)
}

// Error aborts the level with err. The error is reported as is, never wrapped.
func (f *Flow) Error(err error) {
	if err == nil {
		err = ErrNilError
	}
	err, ok := f.settle(err)
	if !ok {
		return
	}
	f.lvl.finish(err)
}

// Retry aborts the level with a *RetryError asking the caller to run the pipeline again after delay.
func (f *Flow) Retry(delay time.Duration) {
	f.Error(&RetryError{Delay: delay})
}

// Ignore skips the remaining steps of the level without error. When called from the last step of
// a nested level, the enclosing level is skipped too.
func (f *Flow) Ignore() {
	f.ignore(false)
}

// IgnoreChain skips the remaining steps of the level and of every enclosing nested level.
func (f *Flow) IgnoreChain() {
	f.ignore(true)
}

func (f *Flow) ignore(chain bool) {
	err, ok := f.settle(nil)
	if !ok {
		return
	}
	if err != nil {
		f.lvl.finish(err)

		return
	}

	l := f.lvl
	l.ignored = true
	if l.parent != nil && (chain || f.index == len(l.steps)-1) {
		l.chainIgnore()

		return
	}
	l.finish(nil)
}

// OK returns an error first callback: a non nil error aborts the level, otherwise then is called
// with the value. A nil then continues with Next, merging the value when it is a Data.
func (f *Flow) OK(then func(value any)) Callback {
	if then == nil {
		then = func(value any) {
			switch data := value.(type) {
			case Data:
				f.Next(data)
			case map[string]any:
				f.Next(data)
			default:
				f.Next(nil)
			}
		}
	}

	return func(err error, value any) {
		if err != nil {
			f.Error(err)

			return
		}
		then(value)
	}
}

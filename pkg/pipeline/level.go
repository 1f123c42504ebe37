package pipeline

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/go-flow/pkg/pipeline/model"
)

// level is the activation record of one step list: the top level, a nested list or a fork branch.
type level struct {
	run   *run
	steps Steps
	base  *Context

	// offset and prefix map local indexes to paths in the step tree.
	offset int
	prefix string
	depth  int
	branch int

	ignored      bool
	interceptors []Interceptor

	// parent is the flow of the enclosing nested step; nil for the top level and fork branches,
	// which report to done instead.
	parent *Flow
	done   DoneFunc

	owner *model.StepInfo
	last  *model.StepInfo
}

func (l *level) path(i int) string {
	return l.prefix + strconv.Itoa(l.offset+i)
}

// advance runs the step at index i.
func (l *level) advance(i int) {
	if l.ignored || i >= len(l.steps) {
		l.finish(nil)

		return
	}

	step := l.steps[i]
	f := l.newFlow(i, step)

	prev := l.last
	if prev == nil {
		prev = l.owner
	}
	if prev == nil {
		prev = model.StartStep
	}
	l.last = f.info

	err := l.run.beforeStep(prev, f.info)
	if err != nil {
		f.Error(err)

		return
	}

	if nested, ok := step.(Steps); ok {
		child := &level{
			run:    l.run,
			steps:  nested,
			base:   l.base.Clone(),
			prefix: f.info.Path + ".",
			depth:  l.depth + 1,
			branch: -1,
			parent: f,
			owner:  f.info,
		}
		child.advance(0)

		return
	}

	dispatch(f, step)
}

func (l *level) newFlow(i int, step Step) *Flow {
	path := l.path(i)
	info := &model.StepInfo{
		RunID:  l.run.info.ID,
		ID:     uuid.New(),
		Path:   path,
		Name:   path,
		Index:  l.offset + i,
		Depth:  l.depth,
		Branch: l.branch,
	}
	if l.owner != nil {
		info.ParentID = l.owner.ID
	}
	if step != nil {
		info.Kind = step.stepKind()
		info.Name = stepName(step, path)
	}

	return &Flow{
		lvl:     l,
		index:   i,
		info:    info,
		started: time.Now(),
	}
}

// newBranch creates the level running the steps after index i for one fork item.
func (l *level) newBranch(f *Flow, k int, ctx *Context, done DoneFunc) *level {
	return &level{
		run:    l.run,
		steps:  l.steps[f.index+1:],
		base:   ctx,
		offset: l.offset + f.index + 1,
		prefix: l.prefix,
		depth:  l.depth,
		branch: k,
		done:   done,
		owner:  f.info,
	}
}

// finish runs the interceptor chain then reports the outcome.
func (l *level) finish(err error) {
	l.unwind(err, l.report)
}

func (l *level) report(err error) {
	switch {
	case l.parent == nil:
		l.done(err, l.base)
	case err != nil:
		l.parent.Error(err)
	default:
		l.parent.Next(nil)
	}
}

// chainIgnore reports a chained ignore to the parent level once the interceptors have run.
func (l *level) chainIgnore() {
	l.unwind(nil, func(err error) {
		if err != nil {
			l.parent.Error(err)

			return
		}
		l.parent.IgnoreChain()
	})
}

func dispatch(f *Flow, step Step) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if f.isSettled() {
			// raised after the step handed control back: not this step's failure
			panic(r)
		}
		f.Error(newPanicError(f.info.Path, r))
	}()

	var err error
	switch s := step.(type) {
	case Func:
		if s == nil {
			err = errors.Wrap(ErrInvalidStep, "nil function")

			break
		}
		s(f)
	case *Descriptor:
		if s == nil {
			err = errors.Wrap(ErrInvalidStep, "nil descriptor")

			break
		}
		err = s.call(f)
	default:
		err = errors.Wrapf(ErrInvalidStep, "unsupported step type %T", step)
	}

	if err == nil {
		return
	}
	if f.isSettled() {
		f.lvl.run.logger(f.info).WithError(err).Warn("step returned an error after handing control back")

		return
	}
	f.Error(err)
}

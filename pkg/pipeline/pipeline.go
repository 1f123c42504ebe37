package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/askiada/go-flow/pkg/pipeline/logger"
	"github.com/askiada/go-flow/pkg/pipeline/model"
)

// Pipeline runs step lists. It holds the options observing every run.
type Pipeline struct {
	opts []model.PipelineOption
	log  logrus.FieldLogger
}

// New creates a new pipeline.
func New(opts ...model.PipelineOption) (*Pipeline, error) {
	pipe := &Pipeline{
		opts: opts,
		log:  discardLogger(),
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
		if provider, ok := opt.(model.LoggerProvider); ok {
			pipe.log = provider.Logger()
		}
	}

	return pipe, nil
}

var defaultPipeline = &Pipeline{log: discardLogger()}

// Run starts steps on a pipeline without options. See Pipeline.Run.
func Run(initial Data, steps Steps, onDone DoneFunc) {
	defaultPipeline.Run(initial, steps, onDone)
}

// Execute runs steps on a pipeline without options and waits for the outcome. See Pipeline.Execute.
func Execute(ctx context.Context, initial Data, steps Steps) (*Context, error) {
	return defaultPipeline.Execute(ctx, initial, steps)
}

// Run starts a top level pipeline over steps with a context seeded from initial.
// onDone is called exactly once, with the top level context, when the pipeline completes. Values
// merged by a nested level never reach the top level context, even when that level fails: values
// needed after a failure are read from an interceptor of the nested level.
// Run returns as soon as every step has either completed or suspended: a step that calls its flow
// from another goroutine later resumes the pipeline on that goroutine.
func (p *Pipeline) Run(initial Data, steps Steps, onDone DoneFunc) {
	if onDone == nil {
		onDone = func(error, *Context) {}
	}

	r := &run{
		pipe: p,
		info: &model.RunInfo{
			ID:      uuid.New(),
			Started: time.Now(),
		},
	}
	base := NewContext(initial)

	err := r.beforeRun()
	if err != nil {
		onDone(err, base)

		return
	}

	top := &level{
		run:    r,
		steps:  steps,
		base:   base,
		branch: -1,
	}
	top.done = func(err error, ctx *Context) {
		r.info.Last = top.last
		onDone(r.finish(err), ctx)
	}
	top.advance(0)
}

// Execute runs steps and blocks until the pipeline completes or ctx is done.
// When ctx ends first, Execute returns its error but the pipeline itself is not interrupted.
func (p *Pipeline) Execute(ctx context.Context, initial Data, steps Steps) (*Context, error) {
	type outcome struct {
		ctx *Context
		err error
	}

	res := make(chan outcome, 1)
	p.Run(initial, steps, func(err error, c *Context) {
		res <- outcome{ctx: c, err: err}
	})

	select {
	case out := <-res:
		return out.ctx, out.err
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "pipeline did not complete")
	}
}

// run holds what every level of one Run call shares.
type run struct {
	pipe *Pipeline
	info *model.RunInfo
}

func (r *run) beforeRun() error {
	for _, opt := range r.pipe.opts {
		err := opt.BeforeRun(r.info)
		if err != nil {
			return errors.Wrap(err, "unable to run before run hook")
		}
	}

	return nil
}

func (r *run) beforeStep(parent, step *model.StepInfo) error {
	for _, opt := range r.pipe.opts {
		err := opt.BeforeStep(parent, step)
		if err != nil {
			return errors.Wrapf(err, "unable to run before step hook of %s", step.Name)
		}
	}

	return nil
}

func (r *run) afterStep(step *model.StepInfo, elapsed time.Duration, stepErr error) error {
	for _, opt := range r.pipe.opts {
		err := opt.AfterStep(step, elapsed, stepErr)
		if err != nil {
			return errors.Wrapf(err, "unable to run after step hook of %s", step.Name)
		}
	}

	return nil
}

// finish runs the Finish hooks and returns the outcome to report.
func (r *run) finish(runErr error) error {
	r.info.Elapsed = time.Since(r.info.Started)
	r.info.Err = runErr

	for _, opt := range r.pipe.opts {
		err := opt.Finish(r.info)
		if err != nil && runErr == nil {
			runErr = errors.Wrap(err, "unable to finish pipeline option")
			r.info.Err = runErr
		}
	}

	return runErr
}

func (r *run) logger(step *model.StepInfo) logrus.FieldLogger {
	if step == nil {
		return r.pipe.log.WithFields(logger.RunFields(r.info.ID))
	}

	return r.pipe.log.WithFields(logger.StepFields(step))
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

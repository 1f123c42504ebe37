// Package tracing turns pipeline runs into OpenTelemetry spans: one span per run and one span
// per step invocation, nested steps and fork branches being children of the step that started
// them.
package tracing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/askiada/go-flow/pkg/pipeline/model"
)

type activeSpan struct {
	ctx  context.Context
	span trace.Span
}

type pipelineTracer struct {
	tracer trace.Tracer

	mu   sync.Mutex
	runs map[uuid.UUID]activeSpan

	// steps holds the step spans of every active run, by run ID then step ID.
	steps map[uuid.UUID]map[uuid.UUID]activeSpan
}

// PipelineTracer returns an option creating spans with tracer.
func PipelineTracer(tracer trace.Tracer) model.PipelineOption {
	return &pipelineTracer{
		tracer: tracer,
		runs:   make(map[uuid.UUID]activeSpan),
		steps:  make(map[uuid.UUID]map[uuid.UUID]activeSpan),
	}
}

func (pt *pipelineTracer) New() error {
	return nil
}

func (pt *pipelineTracer) BeforeRun(run *model.RunInfo) error {
	ctx, span := pt.tracer.Start(context.Background(), "pipeline.run",
		trace.WithAttributes(attribute.String("pipeline.run_id", run.ID.String())),
		trace.WithTimestamp(run.Started),
	)

	pt.mu.Lock()
	pt.runs[run.ID] = activeSpan{ctx: ctx, span: span}
	pt.steps[run.ID] = make(map[uuid.UUID]activeSpan)
	pt.mu.Unlock()

	return nil
}

func (pt *pipelineTracer) BeforeStep(parentStep, step *model.StepInfo) error {
	pt.mu.Lock()
	parent, ok := pt.steps[step.RunID][step.ParentID]
	if !ok {
		parent = pt.runs[step.RunID]
	}
	pt.mu.Unlock()

	parentCtx := parent.ctx
	if parentCtx == nil {
		parentCtx = context.Background()
	}

	attrs := []attribute.KeyValue{
		attribute.String("pipeline.run_id", step.RunID.String()),
		attribute.String("pipeline.step.path", step.Path),
		attribute.String("pipeline.step.kind", string(step.Kind)),
		attribute.Int("pipeline.step.depth", step.Depth),
	}
	if step.Branch >= 0 {
		attrs = append(attrs, attribute.Int("pipeline.step.branch", step.Branch))
	}

	ctx, span := pt.tracer.Start(parentCtx, "step:"+step.Name, trace.WithAttributes(attrs...))

	pt.mu.Lock()
	if spans, ok := pt.steps[step.RunID]; ok {
		spans[step.ID] = activeSpan{ctx: ctx, span: span}
	}
	pt.mu.Unlock()

	return nil
}

// AfterStep ends the step span. The span context is kept until the run finishes: steps started
// by a nested or forking step refer to it as their parent.
func (pt *pipelineTracer) AfterStep(step *model.StepInfo, elapsed time.Duration, err error) error {
	pt.mu.Lock()
	active, ok := pt.steps[step.RunID][step.ID]
	pt.mu.Unlock()
	if !ok {
		return nil
	}

	active.span.SetAttributes(attribute.String("pipeline.step.elapsed", elapsed.String()))
	end(active.span, err)

	return nil
}

func (pt *pipelineTracer) Finish(run *model.RunInfo) error {
	pt.mu.Lock()
	active, ok := pt.runs[run.ID]
	delete(pt.runs, run.ID)
	delete(pt.steps, run.ID)
	pt.mu.Unlock()
	if !ok {
		return nil
	}

	end(active.span, run.Err)

	return nil
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

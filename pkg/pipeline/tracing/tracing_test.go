package tracing_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/askiada/go-flow/pkg/pipeline"
	"github.com/askiada/go-flow/pkg/pipeline/tracing"
)

func newPipeline(t *testing.T) (*pipeline.Pipeline, *tracetest.InMemoryExporter) {
	t.Helper()

	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})

	pipe, err := pipeline.New(tracing.PipelineTracer(tp.Tracer("go-flow")))
	require.NoError(t, err)

	return pipe, exp
}

func byName(spans tracetest.SpanStubs) map[string][]tracetest.SpanStub {
	out := make(map[string][]tracetest.SpanStub)
	for _, span := range spans {
		out[span.Name] = append(out[span.Name], span)
	}

	return out
}

func next(f *pipeline.Flow) {
	f.Next(nil)
}

func TestPipelineTracer(t *testing.T) {
	t.Parallel()

	pipe, exp := newPipeline(t)

	_, err := pipe.Execute(t.Context(), nil, pipeline.Steps{
		pipeline.Func(next),
		pipeline.Steps{pipeline.Func(next)},
		pipeline.Func(func(f *pipeline.Flow) {
			f.Fork("n", pipeline.Items([]int{1, 2}))
		}),
		pipeline.Func(next),
	})
	require.NoError(t, err)

	spans := byName(exp.GetSpans())
	require.Len(t, exp.GetSpans(), 7)
	require.Len(t, spans["pipeline.run"], 1)
	require.Len(t, spans["step:3"], 2)

	run := spans["pipeline.run"][0]
	assert.False(t, run.Parent.IsValid())
	assert.Equal(t, codes.Ok, run.Status.Code)

	assert.Equal(t, run.SpanContext.SpanID(), spans["step:0"][0].Parent.SpanID())
	assert.Equal(t, run.SpanContext.SpanID(), spans["step:1"][0].Parent.SpanID())
	assert.Equal(t, spans["step:1"][0].SpanContext.SpanID(), spans["step:1.0"][0].Parent.SpanID())
	for _, branch := range spans["step:3"] {
		assert.Equal(t, spans["step:2"][0].SpanContext.SpanID(), branch.Parent.SpanID())
		assert.Equal(t, run.SpanContext.TraceID(), branch.SpanContext.TraceID())
	}
}

func TestPipelineTracerFailure(t *testing.T) {
	t.Parallel()

	pipe, exp := newPipeline(t)

	boom := errors.New("boom")
	_, err := pipe.Execute(t.Context(), nil, pipeline.Steps{
		pipeline.Func(func(f *pipeline.Flow) {
			f.Error(boom)
		}),
	})
	require.ErrorIs(t, err, boom)

	spans := byName(exp.GetSpans())
	require.Len(t, spans["step:0"], 1)
	assert.Equal(t, codes.Error, spans["step:0"][0].Status.Code)
	assert.Equal(t, "boom", spans["step:0"][0].Status.Description)
	assert.Equal(t, codes.Error, spans["pipeline.run"][0].Status.Code)
}

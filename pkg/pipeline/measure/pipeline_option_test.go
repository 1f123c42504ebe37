package measure_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-flow/pkg/pipeline"
	"github.com/askiada/go-flow/pkg/pipeline/measure"
	"github.com/askiada/go-flow/pkg/pipeline/model"
)

func TestPipelineMeasure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	m := measure.NewDefaultMeasure()
	pipe, err := pipeline.New(measure.PipelineMeasure(m))
	require.NoError(t, err)

	require.NotNil(t, m.GetMetric(model.StartStep.Name))
	require.NotNil(t, m.GetMetric(model.EndStep.Name))

	steps := pipeline.Steps{
		pipeline.Wrap(func(f *pipeline.Flow) {
			f.Fork("n", pipeline.Items([]int{1, 2, 3}))
		}, pipeline.FlowInput).Named("split"),
		pipeline.Wrap(func(f *pipeline.Flow) {
			f.Next(nil)
		}, pipeline.FlowInput).Named("load"),
	}
	_, err = pipe.Execute(t.Context(), nil, steps)
	require.NoError(t, err)

	assert.Equal(t, int64(1), m.GetMetric("split").Count())
	assert.Equal(t, int64(3), m.GetMetric("load").Count())
	assert.Equal(t, int64(1), m.GetMetric(model.EndStep.Name).Count())
	assert.Positive(t, m.GetMetric(model.EndStep.Name).GetTotalDuration())

	_, err = pipe.Execute(t.Context(), nil, pipeline.Steps{
		pipeline.Wrap(func(f *pipeline.Flow) {
			f.Error(boom)
		}, pipeline.FlowInput).Named("load"),
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, int64(4), m.GetMetric("load").Count())
	assert.Equal(t, int64(1), m.GetMetric("load").Failures())
	assert.Equal(t, int64(1), m.GetMetric(model.EndStep.Name).Failures())
	assert.Equal(t, int64(2), m.GetMetric(model.EndStep.Name).Count())
}

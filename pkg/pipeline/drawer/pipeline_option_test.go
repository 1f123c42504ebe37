package drawer_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-flow/pkg/pipeline"
	"github.com/askiada/go-flow/pkg/pipeline/drawer"
	"github.com/askiada/go-flow/pkg/pipeline/measure"
)

func TestPipelineDrawer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	m := measure.NewDefaultMeasure()
	pipe, err := pipeline.New(
		measure.PipelineMeasure(m),
		drawer.PipelineDrawer(drawer.NewWriterDrawer(&buf), m),
	)
	require.NoError(t, err)

	_, err = pipe.Execute(t.Context(), pipeline.Data{"id": 1}, pipeline.Steps{
		pipeline.Wrap(func(id int, f *pipeline.Flow) {
			f.Next(pipeline.Data{"doc": id})
		}, "id", pipeline.FlowInput).Named("load"),
		pipeline.Steps{
			pipeline.Wrap(func(doc int, f *pipeline.Flow) {
				f.Next(nil)
			}, "doc", pipeline.FlowInput).Named("save"),
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"start" -> "load"`)
	assert.Contains(t, out, `"load" -> "1"`)
	assert.Contains(t, out, `"1" -> "save"`)
	assert.Contains(t, out, `"1" -> "end"`)
	assert.Contains(t, out, "end: ")
}

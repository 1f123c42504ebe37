package drawer_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-flow/pkg/pipeline/drawer"
	"github.com/askiada/go-flow/pkg/pipeline/measure"
)

func TestBottlenecks(t *testing.T) {
	t.Parallel()

	d := drawer.NewWriterDrawer(&bytes.Buffer{})
	for _, name := range []string{"start", "load", "save", "end"} {
		require.NoError(t, d.AddStep(name))
	}
	require.NoError(t, d.AddLink("start", "load"))
	require.NoError(t, d.AddLink("load", "save"))
	require.NoError(t, d.AddLink("save", "end"))

	m := measure.NewDefaultMeasure()
	m.AddMetric("load").AddDuration(time.Millisecond)
	save := m.AddMetric("save")
	save.AddDuration(3 * time.Millisecond)
	save.AddFailure()

	got, err := d.Bottlenecks(m)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, drawer.Bottleneck{StepName: "save", Avg: 3 * time.Millisecond, Failures: 1}, got[0])
	assert.Equal(t, drawer.Bottleneck{StepName: "load", Avg: time.Millisecond}, got[1])
	assert.Equal(t, "start", got[2].StepName)
	assert.Equal(t, "end", got[3].StepName)
}

func TestBottlenecksNoPath(t *testing.T) {
	t.Parallel()

	d := drawer.NewWriterDrawer(&bytes.Buffer{})
	require.NoError(t, d.AddStep("start"))
	require.NoError(t, d.AddStep("end"))

	_, err := d.Bottlenecks(measure.NewDefaultMeasure())
	require.Error(t, err)
}

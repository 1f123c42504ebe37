package measure_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/askiada/go-flow/pkg/pipeline/measure"
)

func TestDefaultMetric(t *testing.T) {
	t.Parallel()

	mt := &measure.DefaultMetric{}
	assert.Zero(t, mt.AVGDuration())

	mt.AddDuration(time.Second)
	mt.AddDuration(3 * time.Second)
	mt.AddFailure()
	mt.SetTotalDuration(time.Minute)

	assert.Equal(t, 2*time.Second, mt.AVGDuration())
	assert.Equal(t, int64(2), mt.Count())
	assert.Equal(t, int64(1), mt.Failures())
	assert.Equal(t, time.Minute, mt.GetTotalDuration())
}

func TestDefaultMetricRoundsAverage(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		elapsed time.Duration
		want    time.Duration
	}{
		"milliseconds": {elapsed: 1234567 * time.Nanosecond, want: time.Millisecond},
		"seconds":      {elapsed: 2400 * time.Millisecond, want: 2 * time.Second},
		"hours":        {elapsed: 90*time.Minute + 10*time.Second, want: 2 * time.Hour},
		"nanoseconds":  {elapsed: 999 * time.Nanosecond, want: 999 * time.Nanosecond},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			mt := &measure.DefaultMetric{}
			mt.AddDuration(tc.elapsed)
			assert.Equal(t, tc.want, mt.AVGDuration())
		})
	}
}

func TestDefaultMeasure(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	assert.Nil(t, m.GetMetric("load"))

	mt := m.AddMetric("load")
	assert.Same(t, mt, m.AddMetric("load"))
	assert.Same(t, mt, m.GetMetric("load"))

	all := m.AllMetrics()
	delete(all, "load")
	assert.NotNil(t, m.GetMetric("load"))
}

package logger_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-flow/pkg/pipeline"
	"github.com/askiada/go-flow/pkg/pipeline/logger"
)

func messages(hook *test.Hook) []string {
	entries := hook.AllEntries()
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Message)
	}

	return out
}

func TestPipelineLogger(t *testing.T) {
	t.Parallel()

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	pipe, err := pipeline.New(logger.PipelineLogger(log))
	require.NoError(t, err)

	_, err = pipe.Execute(t.Context(), nil, pipeline.Steps{
		pipeline.Wrap(func(f *pipeline.Flow) {
			f.Next(nil)
		}, pipeline.FlowInput).Named("load"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"pipeline started", "step started", "step done", "pipeline finished"}, messages(hook))

	entries := hook.AllEntries()
	assert.Equal(t, "load", entries[1].Data["step"])
	assert.Equal(t, "start", entries[1].Data["parent"])
	assert.Equal(t, entries[0].Data["run_id"], entries[3].Data["run_id"])
}

func TestPipelineLoggerFailure(t *testing.T) {
	t.Parallel()

	log, hook := test.NewNullLogger()

	pipe, err := pipeline.New(logger.PipelineLogger(log))
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = pipe.Execute(t.Context(), nil, pipeline.Steps{
		pipeline.Func(func(f *pipeline.Flow) {
			f.Error(boom)
			f.Next(nil)
		}),
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, []string{"pipeline started", "step failed", "pipeline failed", "flow call dropped"}, messages(hook))
	entries := hook.AllEntries()
	assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	assert.Equal(t, logrus.ErrorLevel, entries[2].Level)
	assert.Equal(t, boom, entries[2].Data[logrus.ErrorKey])
	assert.Equal(t, logrus.WarnLevel, entries[3].Level)
}

package pipeline_test

import (
	"testing"

	"github.com/askiada/go-flow/pkg/pipeline"
)

func next() pipeline.Func {
	return func(f *pipeline.Flow) {
		f.Next(nil)
	}
}

func mark(called *bool) pipeline.Func {
	return func(f *pipeline.Flow) {
		*called = true
		f.Next(nil)
	}
}

func ignore() pipeline.Func {
	return func(f *pipeline.Flow) {
		f.Ignore()
	}
}

func fail(err error) pipeline.Func {
	return func(f *pipeline.Flow) {
		f.Error(err)
	}
}

func execute(t *testing.T, initial pipeline.Data, steps pipeline.Steps) (*pipeline.Context, error) {
	t.Helper()

	return pipeline.Execute(t.Context(), initial, steps)
}

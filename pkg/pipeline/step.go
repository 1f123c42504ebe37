package pipeline

import (
	"github.com/askiada/go-flow/pkg/pipeline/model"
)

// Reserved input names.
const (
	FlowInput     = "flow"
	CallbackInput = "callback"
)

// Step is a unit of work of a pipeline level: a Func, a *Descriptor or a nested Steps list.
type Step interface {
	stepKind() model.StepKind
}

// Func is a step whose only input is its flow.
type Func func(f *Flow)

func (Func) stepKind() model.StepKind { return model.FuncStepKind }

// Steps is an ordered list of steps. Used as a step, it runs as a nested level.
type Steps []Step

func (Steps) stepKind() model.StepKind { return model.NestedStepKind }

// DoneFunc receives the outcome of a run.
type DoneFunc func(err error, ctx *Context)

// Callback is the error first adapter returned by Flow.OK.
type Callback func(err error, value any)

// ForkExtra computes the values added to a fork branch context for an item.
type ForkExtra func(item any) Data

// With returns a ForkExtra adding the same data to every branch.
func With(data Data) ForkExtra {
	return func(any) Data {
		return data
	}
}

// Items converts a typed slice into fork items.
func Items[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}

	return out
}

func stepName(step Step, path string) string {
	if d, ok := step.(*Descriptor); ok && d.name != "" {
		return d.name
	}

	return path
}

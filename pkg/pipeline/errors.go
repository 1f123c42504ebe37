package pipeline

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrUnresolvedInput = errors.New("unresolved input")
	ErrInputType       = errors.New("input type mismatch")
	ErrInvalidStep     = errors.New("invalid step")
	ErrStepPanic       = errors.New("step panicked")
	ErrNilError        = errors.New("step reported a nil error")
	ErrFlowSettled     = errors.New("flow already settled")
	ErrRetry           = errors.New("retry requested")

	// ErrRecovered is passed to an interceptor's proceed function to clear the outcome error.
	ErrRecovered = errors.New("error recovered")
)

// UnresolvedInputError is returned when a step declares an input absent from the flow context.
type UnresolvedInputError struct {
	Step string
	Key  string
}

func (e *UnresolvedInputError) Error() string {
	return fmt.Sprintf("step %s: unable to find %q in flow context", e.Step, e.Key)
}

func (e *UnresolvedInputError) Unwrap() error {
	return ErrUnresolvedInput
}

// InputTypeError is returned when a context value cannot be bound to the declared parameter.
type InputTypeError struct {
	Step string
	Key  string
	Want reflect.Type
	Got  reflect.Type
}

func (e *InputTypeError) Error() string {
	got := "nil"
	if e.Got != nil {
		got = e.Got.String()
	}

	return fmt.Sprintf("step %s: input %q is %s, want %s", e.Step, e.Key, got, e.Want)
}

func (e *InputTypeError) Unwrap() error {
	return ErrInputType
}

// PanicError carries the value recovered from a panicking step or interceptor.
type PanicError struct {
	Step  string
	Value any
	Stack []byte
}

func newPanicError(step string, value any) *PanicError {
	return &PanicError{
		Step:  step,
		Value: value,
		Stack: debug.Stack(),
	}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("step %s: panic: %v", e.Step, e.Value)
}

func (e *PanicError) Unwrap() error {
	return ErrStepPanic
}

// RetryError is reported when a step asks its caller to run the pipeline again later.
type RetryError struct {
	Delay time.Duration
}

func (e *RetryError) Error() string {
	if e.Delay <= 0 {
		return ErrRetry.Error()
	}

	return fmt.Sprintf("%s in %s", ErrRetry, e.Delay)
}

func (e *RetryError) Unwrap() error {
	return ErrRetry
}

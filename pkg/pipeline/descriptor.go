package pipeline

import (
	"reflect"
	"sync"

	"github.com/pkg/errors"

	"github.com/askiada/go-flow/pkg/pipeline/model"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// signature is what the resolver needs to know about a step function type.
type signature struct {
	in           []reflect.Type
	returnsError bool
}

// signatures caches one signature per function type.
var signatures sync.Map

func signatureOf(fnType reflect.Type) (*signature, error) {
	if cached, ok := signatures.Load(fnType); ok {
		return cached.(*signature), nil //nolint:forcetypeassert
	}

	if fnType.Kind() != reflect.Func {
		return nil, errors.Wrapf(ErrInvalidStep, "%s is not a function", fnType)
	}
	if fnType.IsVariadic() {
		return nil, errors.Wrapf(ErrInvalidStep, "%s is variadic", fnType)
	}

	sig := &signature{
		in: make([]reflect.Type, fnType.NumIn()),
	}
	for i := range sig.in {
		sig.in[i] = fnType.In(i)
	}

	switch {
	case fnType.NumOut() == 0:
	case fnType.NumOut() == 1 && fnType.Out(0) == errorType:
		sig.returnsError = true
	default:
		return nil, errors.Wrapf(ErrInvalidStep, "%s must return nothing or an error", fnType)
	}

	actual, _ := signatures.LoadOrStore(fnType, sig)

	return actual.(*signature), nil //nolint:forcetypeassert
}

// Descriptor is a step whose inputs are declared once, ahead of time.
type Descriptor struct {
	fn      reflect.Value
	sig     *signature
	inputs  []string
	name    string
	augment func(f *Flow) Data
}

// NewDescriptor builds a descriptor calling fn with the context values named by inputs, in order.
// fn must take exactly len(inputs) parameters and return nothing or an error.
func NewDescriptor(fn any, inputs ...string) (*Descriptor, error) {
	if fn == nil {
		return nil, errors.Wrap(ErrInvalidStep, "nil function")
	}
	value := reflect.ValueOf(fn)
	sig, err := signatureOf(value.Type())
	if err != nil {
		return nil, err
	}
	if value.IsNil() {
		return nil, errors.Wrap(ErrInvalidStep, "nil function")
	}
	if len(sig.in) != len(inputs) {
		return nil, errors.Wrapf(ErrInvalidStep, "%s takes %d parameters, %d inputs declared", value.Type(), len(sig.in), len(inputs))
	}

	names := make([]string, len(inputs))
	copy(names, inputs)

	return &Descriptor{
		fn:     value,
		sig:    sig,
		inputs: names,
	}, nil
}

// Wrap is like NewDescriptor but panics if the descriptor is malformed.
func Wrap(fn any, inputs ...string) *Descriptor {
	d, err := NewDescriptor(fn, inputs...)
	if err != nil {
		panic(errors.Wrap(err, "unable to wrap step"))
	}

	return d
}

// Named sets the name reported to pipeline options.
func (d *Descriptor) Named(name string) *Descriptor {
	d.name = name

	return d
}

// WithAugment sets a function called once per invocation whose result is added to the values
// the inputs are resolved from.
func (d *Descriptor) WithAugment(fn func(f *Flow) Data) *Descriptor {
	d.augment = fn

	return d
}

// Inputs returns the declared input names.
func (d *Descriptor) Inputs() []string {
	inputs := make([]string, len(d.inputs))
	copy(inputs, d.inputs)

	return inputs
}

func (*Descriptor) stepKind() model.StepKind { return model.DescriptorStepKind }

// scope builds the per call context: a snapshot of the level context plus the injected values.
func (d *Descriptor) scope(f *Flow) *Context {
	scope := f.lvl.base.Clone()
	scope.Set(FlowInput, f)
	for _, name := range d.inputs {
		if name == CallbackInput {
			scope.Set(CallbackInput, f.OK(nil))

			break
		}
	}
	if d.augment != nil {
		scope.Merge(d.augment(f))
	}

	return scope
}

func (d *Descriptor) resolve(step string, scope *Context) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(d.inputs))
	for i, name := range d.inputs {
		value, ok := scope.Lookup(name)
		if !ok {
			return nil, &UnresolvedInputError{Step: step, Key: name}
		}

		want := d.sig.in[i]
		if value == nil {
			if !nilable(want) {
				return nil, &InputTypeError{Step: step, Key: name, Want: want}
			}
			args[i] = reflect.Zero(want)

			continue
		}

		arg := reflect.ValueOf(value)
		if !arg.Type().AssignableTo(want) {
			return nil, &InputTypeError{Step: step, Key: name, Want: want, Got: arg.Type()}
		}
		args[i] = arg
	}

	return args, nil
}

func (d *Descriptor) call(f *Flow) error {
	args, err := d.resolve(f.info.Path, d.scope(f))
	if err != nil {
		return err
	}

	out := d.fn.Call(args)
	if !d.sig.returnsError {
		return nil
	}
	err, _ = out[0].Interface().(error)

	return err
}

func nilable(t reflect.Type) bool {
	switch t.Kind() { //nolint:exhaustive
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return true
	default:
		return false
	}
}

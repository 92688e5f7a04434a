package willitserver

import (
	"context"
	"reflect"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"willitserver/internal/errs"
)

const (
	argumentsDiagnostic   = "arguments may not be serializable"
	returnValueDiagnostic = "return value may not be serializable"
)

var contextType = reflect.TypeOf((*context.Context)(nil)).Elem()

type FuncOption func(o *funcOptions)

type funcOptions struct {
	name          string
	namePrefix    string
	checksEnabled bool
	logger        Logger
	checker       *Checker
	observers     []Observer
}

func newFuncOptions(opts []FuncOption) *funcOptions {
	o := &funcOptions{
		checksEnabled: true,
		checker:       defaultChecker,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = defaultLogger()
	}
	return o
}

// WithChecksEnabled turns the boundary checks on or off. When off the
// wrapped function only forwards the call.
func WithChecksEnabled(enabled bool) FuncOption {
	return func(o *funcOptions) {
		o.checksEnabled = enabled
	}
}

func WithLogger(l Logger) FuncOption {
	return func(o *funcOptions) {
		o.logger = l
	}
}

func WithChecker(c *Checker) FuncOption {
	return func(o *funcOptions) {
		o.checker = c
	}
}

func WithObserver(observers ...Observer) FuncOption {
	return func(o *funcOptions) {
		o.observers = append(o.observers, observers...)
	}
}

// WithName sets the function name attached to diagnostics. It defaults to
// the name the runtime knows the function by.
func WithName(name string) FuncOption {
	return func(o *funcOptions) {
		o.name = name
	}
}

// WithNamePrefix is prepended to the function name in diagnostics.
func WithNamePrefix(prefix string) FuncOption {
	return func(o *funcOptions) {
		o.namePrefix = prefix
	}
}

// Wrap returns a function with the same signature as fn that checks the
// arguments it receives and the value fn returns. A value that may not be
// serializable is reported to the Logger, the call itself always proceeds
// and its results are returned unchanged.
//
// A leading context.Context parameter is not treated as an argument and
// a trailing error result is not treated as part of the return value.
// When that error is non-nil the return value is not checked.
func Wrap[F any](fn F, opts ...FuncOption) (F, error) {
	var zero F
	val := reflect.ValueOf(fn)
	if !val.IsValid() {
		return zero, errs.NilFuncError
	}
	if val.Kind() != reflect.Func {
		return zero, errs.NewFuncTypError(fn)
	}
	if val.IsNil() {
		return zero, errs.NilFuncError
	}
	o := newFuncOptions(opts)
	if o.name == "" {
		if f := runtime.FuncForPC(val.Pointer()); f != nil {
			o.name = f.Name()
		}
	}
	return wrapValue(val, o).Interface().(F), nil
}

// Guard replaces every settable, non-nil function field of service with
// its wrapped version. service must be a pointer to a struct.
func Guard(service any, opts ...FuncOption) error {
	val := reflect.ValueOf(service)
	if !val.IsValid() || val.Kind() != reflect.Pointer || val.IsNil() {
		return errs.ServiceTypError
	}
	valElem := val.Elem()
	typElem := valElem.Type()
	if typElem.Kind() != reflect.Struct {
		return errs.ServiceTypError
	}
	numField := typElem.NumField()
	for i := 0; i < numField; i++ {
		fieldTyp := typElem.Field(i)
		fieldVal := valElem.Field(i)
		if !fieldVal.CanSet() || fieldTyp.Type.Kind() != reflect.Func || fieldVal.IsNil() {
			continue
		}
		fieldOpts := make([]FuncOption, 0, len(opts)+1)
		fieldOpts = append(fieldOpts, WithName(typElem.Name()+"."+fieldTyp.Name))
		fieldOpts = append(fieldOpts, opts...)
		// copy the current func out of the field, Set below overwrites it
		fn := reflect.ValueOf(fieldVal.Interface())
		fieldVal.Set(wrapValue(fn, newFuncOptions(fieldOpts)))
	}
	return nil
}

func wrapValue(fn reflect.Value, o *funcOptions) reflect.Value {
	typ := fn.Type()
	sf := &serverFunction{
		fn:      fn,
		typ:     typ,
		name:    o.namePrefix + o.name,
		opts:    o,
		withCtx: typ.NumIn() > 0 && typ.In(0) == contextType,
		withErr: typ.NumOut() > 0 && typ.Out(typ.NumOut()-1) == errorType,
	}
	return reflect.MakeFunc(typ, sf.call)
}

type serverFunction struct {
	fn      reflect.Value
	typ     reflect.Type
	name    string
	opts    *funcOptions
	withCtx bool
	withErr bool
}

func (s *serverFunction) call(args []reflect.Value) []reflect.Value {
	if !s.opts.checksEnabled {
		return s.invoke(args)
	}

	ctx, params := s.split(args)
	callID := uuid.NewString()

	passed, err := s.opts.checker.CanPassFromClientToServer(ctx, params)
	if err != nil {
		return s.fail(err)
	}
	s.observe(ctx, ClientToServer, passed)
	if !passed {
		s.report(argumentsDiagnostic, ClientToServer, callID)
	}

	results := s.invoke(args)
	if s.withErr && !results[len(results)-1].IsNil() {
		return results
	}
	value, ok := s.returnValue(results)
	if !ok {
		return results
	}

	passed, err = s.opts.checker.CanPassFromServerToClient(ctx, value)
	if err != nil {
		// the returned Future hands the same failure to the caller
		return results
	}
	s.observe(ctx, ServerToClient, passed)
	if !passed {
		s.report(returnValueDiagnostic, ServerToClient, callID)
	}
	return results
}

func (s *serverFunction) invoke(args []reflect.Value) []reflect.Value {
	if s.typ.IsVariadic() {
		return s.fn.CallSlice(args)
	}
	return s.fn.Call(args)
}

// split separates the call context from the received arguments. The
// variadic tail is flattened so the arguments read as they were passed.
func (s *serverFunction) split(args []reflect.Value) (context.Context, []any) {
	ctx := context.Background()
	if s.withCtx {
		if c, ok := args[0].Interface().(context.Context); ok && c != nil {
			ctx = c
		}
		args = args[1:]
	}
	params := make([]any, 0, len(args))
	for i, arg := range args {
		if s.typ.IsVariadic() && i == len(args)-1 {
			for j := 0; j < arg.Len(); j++ {
				params = append(params, arg.Index(j).Interface())
			}
			continue
		}
		params = append(params, arg.Interface())
	}
	return ctx, params
}

// returnValue picks the value to check out of the results. Several results
// are checked together as one sequence.
func (s *serverFunction) returnValue(results []reflect.Value) (any, bool) {
	if s.withErr {
		results = results[:len(results)-1]
	}
	switch len(results) {
	case 0:
		return nil, false
	case 1:
		return results[0].Interface(), true
	}
	values := make([]any, 0, len(results))
	for _, res := range results {
		values = append(values, res.Interface())
	}
	return values, true
}

// fail hands err to the caller through the trailing error result, or by
// panicking when the signature has none.
func (s *serverFunction) fail(err error) []reflect.Value {
	if !s.withErr {
		panic(err)
	}
	results := make([]reflect.Value, s.typ.NumOut())
	for i := 0; i < len(results)-1; i++ {
		results[i] = reflect.Zero(s.typ.Out(i))
	}
	results[len(results)-1] = reflect.ValueOf(&err).Elem()
	return results
}

func (s *serverFunction) observe(ctx context.Context, dir Direction, passed bool) {
	for _, obs := range s.opts.observers {
		obs.Observe(ctx, s.name, dir, passed)
	}
}

func (s *serverFunction) report(msg string, dir Direction, callID string) {
	s.opts.logger.Error(msg,
		zap.String("function", s.name),
		zap.Stringer("direction", dir),
		zap.String("call_id", callID),
	)
}

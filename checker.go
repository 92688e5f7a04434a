package willitserver

import (
	"context"
	"mime/multipart"
	"net/url"
	"reflect"
)

// Direction is the way a value crosses the client/server boundary.
type Direction uint8

const (
	ClientToServer Direction = iota
	ServerToClient
)

func (d Direction) String() string {
	switch d {
	case ClientToServer:
		return "client-to-server"
	case ServerToClient:
		return "server-to-client"
	default:
		return "unknown"
	}
}

type CheckerOption func(c *Checker)

// Checker classifies values crossing the boundary. The zero value is not
// usable, build one with NewChecker.
type Checker struct {
	isPlain    PlainObjectFunc
	isFormData func(value any) bool
	isNode     func(value any) bool
}

func NewChecker(opts ...CheckerOption) *Checker {
	c := &Checker{
		isPlain:    IsPlainObject,
		isFormData: IsFormData,
		isNode:     IsNode,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckerWithPlainObjectTest replaces the test deciding which structs are
// plain keyed records.
func CheckerWithPlainObjectTest(fn PlainObjectFunc) CheckerOption {
	return func(c *Checker) {
		c.isPlain = fn
	}
}

// CheckerWithFormDataTest replaces the form-submission payload test used
// for ClientToServer values.
func CheckerWithFormDataTest(fn func(value any) bool) CheckerOption {
	return func(c *Checker) {
		c.isFormData = fn
	}
}

// CheckerWithNodeTest replaces the renderable node test used for
// ServerToClient values.
func CheckerWithNodeTest(fn func(value any) bool) CheckerOption {
	return func(c *Checker) {
		c.isNode = fn
	}
}

// IsFormData is the default form-submission payload test.
func IsFormData(value any) bool {
	switch value.(type) {
	case *multipart.Form, multipart.Form, url.Values:
		return true
	default:
		return false
	}
}

// IsNode is the default renderable node test.
func IsNode(value any) bool {
	_, ok := value.(Node)
	return ok
}

// CanPassInEitherDirection reports whether value is passable regardless of
// direction: a primitive, a date, or a sequence, set, map or plain record
// whose members are all passable themselves.
func (c *Checker) CanPassInEitherDirection(value any) bool {
	w := &walker{isPlain: c.isPlain, seen: make(map[visit]struct{})}
	return w.canPass(reflect.ValueOf(value))
}

// CanPassFromClientToServer reports whether value can be sent as arguments
// to the server. A Future is awaited first and its settlement error is
// returned as is.
func (c *Checker) CanPassFromClientToServer(ctx context.Context, value any) (bool, error) {
	return c.CanPass(ctx, ClientToServer, value)
}

// CanPassFromServerToClient reports whether value can be returned to the
// client. A Future is awaited first and its settlement error is returned
// as is.
func (c *Checker) CanPassFromServerToClient(ctx context.Context, value any) (bool, error) {
	return c.CanPass(ctx, ServerToClient, value)
}

func (c *Checker) CanPass(ctx context.Context, dir Direction, value any) (bool, error) {
	resolved, err := settle(ctx, value)
	if err != nil {
		return false, err
	}
	if c.CanPassInEitherDirection(resolved) {
		return true, nil
	}
	switch dir {
	case ClientToServer:
		return c.isFormData(resolved), nil
	case ServerToClient:
		return c.isNode(resolved), nil
	default:
		return false, nil
	}
}

type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

type walker struct {
	isPlain PlainObjectFunc
	// references currently being walked, used to stop on cycles
	seen map[visit]struct{}
}

func (w *walker) canPass(val reflect.Value) bool {
	val = unwrap(val)
	switch classify(val, w.isPlain) {
	case KindPrimitive, KindDate:
		return true
	case KindSequence, KindSet, KindMap, KindRecord:
	default:
		return false
	}

	if val.Kind() == reflect.Pointer {
		v, ok := w.enter(val)
		if !ok {
			return false
		}
		defer delete(w.seen, v)
		return w.canPass(val.Elem())
	}

	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		return w.canPassElems(val)
	case reflect.Map:
		return w.canPassMap(val)
	case reflect.Struct:
		return w.canPassFields(val)
	default:
		return false
	}
}

func (w *walker) canPassElems(val reflect.Value) bool {
	if val.Kind() == reflect.Slice {
		v, ok := w.enter(val)
		if !ok {
			return false
		}
		defer delete(w.seen, v)
	}
	for i := 0; i < val.Len(); i++ {
		if !w.canPass(val.Index(i)) {
			return false
		}
	}
	return true
}

// canPassMap covers both sets and maps. A set only has keys worth walking,
// its struct{} values pass as empty records.
func (w *walker) canPassMap(val reflect.Value) bool {
	v, ok := w.enter(val)
	if !ok {
		return false
	}
	defer delete(w.seen, v)
	iter := val.MapRange()
	for iter.Next() {
		if !w.canPass(iter.Key()) || !w.canPass(iter.Value()) {
			return false
		}
	}
	return true
}

func (w *walker) canPassFields(val reflect.Value) bool {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		name := typ.Field(i).Name
		if !w.canPass(reflect.ValueOf(name)) || !w.canPass(val.Field(i)) {
			return false
		}
	}
	return true
}

func (w *walker) enter(val reflect.Value) (visit, bool) {
	v := visit{ptr: val.Pointer(), typ: val.Type()}
	if val.Kind() == reflect.Slice {
		v.len = val.Len()
	}
	if _, ok := w.seen[v]; ok {
		return v, false
	}
	w.seen[v] = struct{}{}
	return v, true
}

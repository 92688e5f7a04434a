package willitserver

import (
	"math/big"
	"reflect"
)

type undefined struct{}

// Undefined is the absent sentinel. It is distinct from nil, which stands
// for null.
var Undefined = undefined{}

var (
	undefinedType = reflect.TypeOf(Undefined)
	atomType      = reflect.TypeOf((*Atom)(nil))
	bigIntType    = reflect.TypeOf(big.Int{})
	bigIntPtrType = reflect.TypeOf((*big.Int)(nil))
)

// IsSerializablePrimitive reports whether value is a string, number, big
// integer, boolean, Undefined, null or a registered Atom. It only looks at
// the runtime kind of value and never descends into it.
func IsSerializablePrimitive(value any) bool {
	return isPrimitiveValue(reflect.ValueOf(value))
}

func isPrimitiveValue(val reflect.Value) bool {
	val = unwrap(val)
	if !val.IsValid() || isNil(val) {
		return true
	}
	switch val.Type() {
	case undefinedType, bigIntType, bigIntPtrType:
		return true
	case atomType:
		if !val.CanInterface() {
			return false
		}
		_, ok := AtomKey(val.Interface().(*Atom))
		return ok
	}
	// errors never pass, whatever kind they are built on
	if val.Type().Implements(errorType) {
		return false
	}
	switch val.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// unwrap strips interface boxes, which appear when walking []any or
// map[string]any elements.
func unwrap(val reflect.Value) reflect.Value {
	for val.IsValid() && val.Kind() == reflect.Interface && !val.IsNil() {
		val = val.Elem()
	}
	return val
}

// isNil treats a nil reference of any kind as the null sentinel.
func isNil(val reflect.Value) bool {
	switch val.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func,
		reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return val.IsNil()
	default:
		return false
	}
}

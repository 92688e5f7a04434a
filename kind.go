package willitserver

import (
	"reflect"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"
)

// Kind is the shape a value takes when crossing the boundary.
type Kind uint8

const (
	KindOther Kind = iota
	KindPrimitive
	KindDate
	KindSequence
	KindSet
	KindMap
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindDate:
		return "date"
	case KindSequence:
		return "sequence"
	case KindSet:
		return "set"
	case KindMap:
		return "map"
	case KindRecord:
		return "record"
	default:
		return "other"
	}
}

var (
	timeType      = reflect.TypeOf(time.Time{})
	timePtrType   = reflect.TypeOf((*time.Time)(nil))
	timestampType = reflect.TypeOf((*timestamppb.Timestamp)(nil))
	futureType    = reflect.TypeOf((*Future)(nil)).Elem()
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
	emptyType     = reflect.TypeOf(struct{}{})
)

// PlainObjectFunc decides whether a struct value is a plain keyed record.
type PlainObjectFunc func(val reflect.Value) bool

// IsPlainObject is the default plain-object test. A plain object is a
// struct whose type declares no methods and whose fields are all exported.
// Structs with methods play the part of class instances, and structs with
// unexported fields carry state that enumeration cannot reach.
func IsPlainObject(val reflect.Value) bool {
	if val.Kind() != reflect.Struct {
		return false
	}
	typ := val.Type()
	if typ.NumMethod() > 0 || reflect.PointerTo(typ).NumMethod() > 0 {
		return false
	}
	for i := 0; i < typ.NumField(); i++ {
		if !typ.Field(i).IsExported() {
			return false
		}
	}
	return true
}

// Classify reports the Kind of value using the default plain-object test.
// Pointers are reported as the kind of their pointee.
func Classify(value any) Kind {
	return classify(reflect.ValueOf(value), IsPlainObject)
}

func classify(val reflect.Value, isPlain PlainObjectFunc) Kind {
	// pointers already followed, a pointer chain may loop through interfaces
	var followed map[visit]struct{}
	for {
		val = unwrap(val)
		if isPrimitiveValue(val) {
			return KindPrimitive
		}
		typ := val.Type()
		switch typ {
		case timeType, timePtrType, timestampType:
			return KindDate
		case atomType:
			return KindOther
		}
		if typ.Implements(futureType) || typ.Implements(errorType) {
			return KindOther
		}
		switch val.Kind() {
		case reflect.Pointer:
			if followed == nil {
				followed = make(map[visit]struct{})
			}
			v := visit{ptr: val.Pointer(), typ: typ}
			if _, ok := followed[v]; ok {
				return KindOther
			}
			followed[v] = struct{}{}
			val = val.Elem()
			continue
		case reflect.Slice, reflect.Array:
			return KindSequence
		case reflect.Map:
			if typ.Elem() == emptyType {
				return KindSet
			}
			return KindMap
		case reflect.Struct:
			if isPlain(val) {
				return KindRecord
			}
		}
		return KindOther
	}
}

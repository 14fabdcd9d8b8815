package computed

import (
	"reflect"

	"github.com/pkg/errors"
)

// Value maps a single scalar onto the Computed interface.
type Value[T Scalar] struct {
	in T
}

// NewValue wraps a copy of in.
func NewValue[T Scalar](in T) Value[T] {
	return Value[T]{in: in}
}

func (a Value[T]) Size() int { return 1 }

func (a Value[T]) AddTo(out View[T]) error {
	if err := CheckSize(1, len(out)); err != nil {
		return err
	}
	out[0] += a.in
	return nil
}

func (a Value[T]) Clone() (Computed[T], error) {
	return a, nil
}

// Slice maps a variable-length slice onto the Computed interface. It borrows
// the slice: the caller keeps it alive and unmodified while the adapter is in
// use.
type Slice[T Scalar] struct {
	in []T
}

// NewSlice borrows in.
func NewSlice[T Scalar](in []T) Slice[T] {
	return Slice[T]{in: in}
}

func (a Slice[T]) Size() int { return len(a.in) }

func (a Slice[T]) AddTo(out View[T]) error {
	if err := CheckSize(len(a.in), len(out)); err != nil {
		return err
	}
	for i := range a.in {
		out[i] += a.in[i]
	}
	return nil
}

// Clone copies the borrowed slice, so the clone outlives the source.
func (a Slice[T]) Clone() (Computed[T], error) {
	in := make([]T, len(a.in))
	copy(in, a.in)
	return Slice[T]{in: in}, nil
}

// Array maps a fixed-size Go array ([N]T or *[N]T) onto the Computed
// interface. The length N is fixed when the adapter is built.
type Array[T Scalar] struct {
	in []T
	rv reflect.Value // array held by value, read in place
}

// IsArray reports whether v is a [N]T or *[N]T with element type exactly T.
func IsArray[T Scalar](v any) bool {
	if v == nil {
		return false
	}
	rt := reflect.TypeOf(v)
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt.Kind() == reflect.Array && rt.Elem() == reflect.TypeOf((*T)(nil)).Elem()
}

// NewArray builds an Array adapter without copying or allocating. Arrays
// passed by pointer are borrowed and later writes through the pointer are
// seen. Arrays passed by value are read from the copy boxed in v; that boxing
// happens at the caller, so hot paths should pass *[N]T. A nil pointer or a
// value of any other type fails with ErrCapabilityMismatch.
func NewArray[T Scalar](v any) (Array[T], error) {
	if !IsArray[T](v) {
		return Array[T]{}, errors.Wrapf(ErrCapabilityMismatch, "%T is not an array of %s", v, TypeName[T]())
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Array[T]{}, errors.Wrapf(ErrCapabilityMismatch, "nil %T", v)
		}
		elem := rv.Elem()
		return Array[T]{in: elem.Slice(0, elem.Len()).Interface().([]T)}, nil
	}
	return Array[T]{rv: rv}, nil
}

func (a Array[T]) Size() int {
	if a.rv.IsValid() {
		return a.rv.Len()
	}
	return len(a.in)
}

func (a Array[T]) AddTo(out View[T]) error {
	if err := CheckSize(a.Size(), len(out)); err != nil {
		return err
	}
	if !a.rv.IsValid() {
		for i := range a.in {
			out[i] += a.in[i]
		}
		return nil
	}
	for i := range out {
		addElem(&out[i], a.rv.Index(i))
	}
	return nil
}

// addElem adds the float or complex value v to *dst without allocating.
func addElem[T Scalar](dst *T, v reflect.Value) {
	switch p := any(dst).(type) {
	case *float64:
		*p += v.Float()
	case *complex128:
		*p += v.Complex()
	}
}

func (a Array[T]) Clone() (Computed[T], error) {
	in := make([]T, a.Size())
	if a.rv.IsValid() {
		reflect.Copy(reflect.ValueOf(in), a.rv)
	} else {
		copy(in, a.in)
	}
	return Array[T]{in: in}, nil
}

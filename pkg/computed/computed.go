// Package computed maps the value shapes an accumulator can ingest onto a
// single contract: a value that knows its element count and how to add itself
// into a numeric buffer.
package computed

import (
	"fmt"

	"github.com/pkg/errors"
)

// Scalar is the set of element types accumulators sum over.
type Scalar interface {
	float64 | complex128
}

// View is a non-owning window onto a slot of an accumulator buffer. It is
// only valid for the duration of the call it is passed to.
type View[T Scalar] []T

// Size returns the number of elements in the view.
func (v View[T]) Size() int {
	return len(v)
}

// Computed is a value computed on the fly that can add itself to a buffer.
//
// Accumulators call AddTo zero or more times, each time with a different
// destination view (e.g. once per bin). AddTo must add, never overwrite, and
// must not mutate the source. If in(i) is the i-th component, AddTo does the
// equivalent of:
//
//	for i := 0; i != Size(); i++ {
//		out[i] += in(i)
//	}
type Computed[T Scalar] interface {
	// Size returns the number of elements the value contributes.
	Size() int

	// AddTo adds the value into out. It fails with ErrSizeMismatch, before
	// writing anything, if out.Size() != Size().
	AddTo(out View[T]) error

	// Clone returns an independent copy of the value, or
	// ErrUnsupportedOperation if the value cannot be duplicated.
	Clone() (Computed[T], error)
}

// CheckSize returns a wrapped ErrSizeMismatch when got differs from want.
func CheckSize(want, got int) error {
	if want != got {
		return errors.Wrapf(ErrSizeMismatch, "expected %d elements, got %d", want, got)
	}
	return nil
}

// TypeName returns a short name for the element type T.
func TypeName[T Scalar]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// FromFloat converts a real number to the element type T.
func FromFloat[T Scalar](f float64) T {
	var zero T
	switch any(zero).(type) {
	case complex128:
		return any(complex(f, 0)).(T)
	default:
		return any(f).(T)
	}
}

// Conj returns the complex conjugate of x; real values are returned as is.
func Conj[T Scalar](x T) T {
	if c, ok := any(x).(complex128); ok {
		return any(complex(real(c), -imag(c))).(T)
	}
	return x
}

// AbsSq returns |x|^2.
func AbsSq[T Scalar](x T) float64 {
	switch v := any(x).(type) {
	case complex128:
		return real(v)*real(v) + imag(v)*imag(v)
	default:
		f := any(x).(float64)
		return f * f
	}
}

// Zero clears every element of v.
func Zero[T Scalar](v View[T]) {
	for i := range v {
		v[i] = 0
	}
}

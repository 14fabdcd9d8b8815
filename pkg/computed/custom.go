package computed

import "github.com/pkg/errors"

// Addable is implemented by user-defined types that know how to add
// themselves, in place, into a numeric buffer.
//
// Types opt in explicitly through the CustomAddable marker method; having an
// AddInto method alone does not make a type addable. As an example, an
// estimator of size 2 that always contributes [1, -1]:
//
//	type plusMinus struct{}
//
//	func (plusMinus) CustomAddable() {}
//
//	func (plusMinus) AddInto(out computed.View[float64]) error {
//		out[0] += 1
//		out[1] -= 1
//		return nil
//	}
type Addable[T Scalar] interface {
	// CustomAddable marks the type as addable into accumulators.
	CustomAddable()

	// AddInto adds the value to out. out always has the size the adapter
	// was built with.
	AddInto(out View[T]) error
}

// Custom maps an Addable onto the Computed interface. The size is supplied by
// the caller since Addable types carry no size of their own.
type Custom[T Scalar] struct {
	op Addable[T]
	n  int
}

// NewCustom wraps op, declaring that it contributes size elements.
func NewCustom[T Scalar](op Addable[T], size int) Custom[T] {
	return Custom[T]{op: op, n: size}
}

func (a Custom[T]) Size() int { return a.n }

func (a Custom[T]) AddTo(out View[T]) error {
	if err := CheckSize(a.n, len(out)); err != nil {
		return err
	}
	return a.op.AddInto(out)
}

func (a Custom[T]) Clone() (Computed[T], error) {
	return nil, errors.Wrapf(ErrUnsupportedOperation, "clone of %T", a.op)
}

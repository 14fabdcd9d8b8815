// Package alea accumulates streams of samples into running estimators. Any
// appendable value is mapped onto a computed.Computed adapter and forwarded
// to the accumulator's single ingestion primitive, Add.
package alea

import (
	"github.com/pkg/errors"
	"github.com/timescale/tsbs-alea/pkg/computed"
	"github.com/timescale/tsbs-alea/pkg/serialize"
	"gonum.org/v1/gonum/mat"
)

// Accumulator is implemented by every estimator that ingests samples of
// element type T.
type Accumulator[T computed.Scalar] interface {
	// AleaAccumulator marks the type as an accumulator; Append refuses
	// anything else.
	AleaAccumulator()

	// Size returns the number of components of a sample.
	Size() int

	// Add adds the contribution of c, count times. A c whose size differs
	// from Size fails with computed.ErrSizeMismatch.
	Add(c computed.Computed[T], count uint64) error
}

// Result is the finalized state of an accumulator.
type Result interface {
	serialize.Serializable
	serialize.Deserializable
	Size() int
	Count() uint64
}

// Append adds v to acc once. See AppendN.
func Append[T computed.Scalar](acc Accumulator[T], v any) error {
	return AppendN(acc, v, 1)
}

// AppendN adds v to acc count times. v is mapped onto an adapter in this
// order:
//
//  1. T, as a single value
//  2. computed.Computed[T], forwarded unchanged
//  3. []T, borrowed
//  4. a gonum mat.Matrix or mat.CMatrix vector expression, borrowed
//  5. [N]T read in place, or *[N]T borrowed
//  6. computed.Addable[T], with acc.Size() elements
//
// Anything else fails with computed.ErrCapabilityMismatch without touching
// acc.
func AppendN[T computed.Scalar](acc Accumulator[T], v any, count uint64) error {
	c, err := Adapt(acc, v)
	if err != nil {
		return err
	}
	return acc.Add(c, count)
}

// Adapt returns the adapter AppendN would forward v through.
func Adapt[T computed.Scalar](acc Accumulator[T], v any) (computed.Computed[T], error) {
	switch x := v.(type) {
	case T:
		return computed.NewValue(x), nil
	case computed.Computed[T]:
		return x, nil
	case []T:
		return computed.NewSlice(x), nil
	case mat.Matrix, mat.CMatrix:
		return computed.NewDense[T](x)
	}
	if computed.IsArray[T](v) {
		return computed.NewArray[T](v)
	}
	if op, ok := v.(computed.Addable[T]); ok {
		return computed.NewCustom(op, acc.Size()), nil
	}
	return nil, errors.Wrapf(computed.ErrCapabilityMismatch,
		"cannot append %T to an accumulator of %s", v, computed.TypeName[T]())
}

// AppendValue adds a single value; the shape is checked at compile time.
func AppendValue[T computed.Scalar](acc Accumulator[T], v T) error {
	return acc.Add(computed.NewValue(v), 1)
}

// AppendSlice adds a slice; the shape is checked at compile time.
func AppendSlice[T computed.Scalar](acc Accumulator[T], v []T) error {
	return acc.Add(computed.NewSlice(v), 1)
}

// AppendCustom adds a custom-addable value; the shape is checked at compile
// time.
func AppendCustom[T computed.Scalar](acc Accumulator[T], op computed.Addable[T]) error {
	return acc.Add(computed.NewCustom(op, acc.Size()), 1)
}

// Chain permits chained appends to one accumulator. The first error sticks:
// later appends are skipped and Err reports it.
//
//	if err := alea.Into[float64](acc).Append(1.0).Append([]float64{2}).Err(); err != nil {
//		...
//	}
type Chain[T computed.Scalar] struct {
	acc Accumulator[T]
	err error
}

// Into starts a chain of appends to acc.
func Into[T computed.Scalar](acc Accumulator[T]) *Chain[T] {
	return &Chain[T]{acc: acc}
}

// Append adds v unless an earlier append failed.
func (c *Chain[T]) Append(v any) *Chain[T] {
	if c.err == nil {
		c.err = Append(c.acc, v)
	}
	return c
}

// AppendN adds v count times unless an earlier append failed.
func (c *Chain[T]) AppendN(v any, count uint64) *Chain[T] {
	if c.err == nil {
		c.err = AppendN(c.acc, v, count)
	}
	return c
}

// Err returns the first error of the chain.
func (c *Chain[T]) Err() error {
	return c.err
}

// Accumulator returns the accumulator the chain appends to.
func (c *Chain[T]) Accumulator() Accumulator[T] {
	return c.acc
}

func checkAdd[T computed.Scalar](size int, c computed.Computed[T]) error {
	if c == nil {
		return errors.Wrap(computed.ErrCapabilityMismatch, "nil computed value")
	}
	return computed.CheckSize(size, c.Size())
}

package alea

import (
	"github.com/timescale/tsbs-alea/pkg/computed"
	"github.com/timescale/tsbs-alea/pkg/serialize"
)

// MeanAcc accumulates the running mean of vector-valued samples. Samples are
// added straight into the sum buffer.
type MeanAcc[T computed.Scalar] struct {
	size  int
	count uint64
	sum   []T
}

// NewMeanAcc returns a mean accumulator for samples of size components.
func NewMeanAcc[T computed.Scalar](size int) *MeanAcc[T] {
	return &MeanAcc[T]{size: size, sum: make([]T, size)}
}

func (a *MeanAcc[T]) AleaAccumulator() {}

func (a *MeanAcc[T]) Size() int { return a.size }

// Count returns the number of samples added so far.
func (a *MeanAcc[T]) Count() uint64 { return a.count }

func (a *MeanAcc[T]) Add(c computed.Computed[T], count uint64) error {
	if err := checkAdd(a.size, c); err != nil {
		return err
	}
	for i := uint64(0); i < count; i++ {
		if err := c.AddTo(a.sum); err != nil {
			return err
		}
	}
	a.count += count
	return nil
}

// Append adds v once; see AppendN for the accepted shapes.
func (a *MeanAcc[T]) Append(v any) error {
	return Append[T](a, v)
}

// Result returns the current estimate without resetting the accumulator.
func (a *MeanAcc[T]) Result() *MeanResult[T] {
	mean := make([]T, a.size)
	if a.count > 0 {
		n := computed.FromFloat[T](float64(a.count))
		for i, s := range a.sum {
			mean[i] = s / n
		}
	}
	return &MeanResult[T]{count: a.count, mean: mean}
}

// Finalize returns the result and resets the accumulator.
func (a *MeanAcc[T]) Finalize() *MeanResult[T] {
	r := a.Result()
	a.Reset()
	return r
}

// Reset discards all samples.
func (a *MeanAcc[T]) Reset() {
	a.count = 0
	computed.Zero[T](a.sum)
}

// MeanResult is a finalized mean.
type MeanResult[T computed.Scalar] struct {
	count uint64
	mean  []T
}

func (r *MeanResult[T]) Size() int { return len(r.mean) }

func (r *MeanResult[T]) Count() uint64 { return r.count }

// Mean returns the sample mean per component.
func (r *MeanResult[T]) Mean() []T { return r.mean }

func (r *MeanResult[T]) Serialize(s serialize.Serializer, key string) error {
	return serialize.Group(s, key, func() error {
		if err := writeHeader(s, len(r.mean), r.count); err != nil {
			return err
		}
		return serialize.Group(s, "mean", func() error {
			return serialize.WriteVector(s, "value", r.mean)
		})
	})
}

func (r *MeanResult[T]) Deserialize(d serialize.Deserializer, key string) error {
	return serialize.Group(d, key, func() error {
		size, count, err := readHeader(d)
		if err != nil {
			return err
		}
		mean := make([]T, size)
		err = serialize.Group(d, "mean", func() error {
			return serialize.ReadVector(d, "value", mean)
		})
		if err != nil {
			return err
		}
		r.count, r.mean = count, mean
		return nil
	})
}

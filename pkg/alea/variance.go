package alea

import (
	"math"

	"github.com/timescale/tsbs-alea/pkg/computed"
	"github.com/timescale/tsbs-alea/pkg/serialize"
)

// VarAcc accumulates mean and variance per component using Welford's
// update. Complex samples get the circular variance E|x - mean|^2.
type VarAcc[T computed.Scalar] struct {
	size    int
	count   uint64
	mean    []T
	m2      []float64
	scratch []T
}

// NewVarAcc returns a variance accumulator for samples of size components.
func NewVarAcc[T computed.Scalar](size int) *VarAcc[T] {
	return &VarAcc[T]{
		size:    size,
		mean:    make([]T, size),
		m2:      make([]float64, size),
		scratch: make([]T, size),
	}
}

func (a *VarAcc[T]) AleaAccumulator() {}

func (a *VarAcc[T]) Size() int { return a.size }

func (a *VarAcc[T]) Count() uint64 { return a.count }

func (a *VarAcc[T]) Add(c computed.Computed[T], count uint64) error {
	if err := checkAdd(a.size, c); err != nil {
		return err
	}
	computed.Zero[T](a.scratch)
	if err := c.AddTo(a.scratch); err != nil {
		return err
	}
	for k := uint64(0); k < count; k++ {
		a.count++
		n := computed.FromFloat[T](float64(a.count))
		for i, x := range a.scratch {
			delta := x - a.mean[i]
			a.mean[i] += delta / n
			a.m2[i] += re(delta * computed.Conj(x-a.mean[i]))
		}
	}
	return nil
}

func (a *VarAcc[T]) Append(v any) error {
	return Append[T](a, v)
}

func (a *VarAcc[T]) Result() *VarResult[T] {
	r := &VarResult[T]{
		count:    a.count,
		mean:     make([]T, a.size),
		variance: make([]float64, a.size),
	}
	copy(r.mean, a.mean)
	for i, m2 := range a.m2 {
		r.variance[i] = sampleVariance(m2, a.count)
	}
	return r
}

func (a *VarAcc[T]) Finalize() *VarResult[T] {
	r := a.Result()
	a.Reset()
	return r
}

func (a *VarAcc[T]) Reset() {
	a.count = 0
	computed.Zero[T](a.mean)
	for i := range a.m2 {
		a.m2[i] = 0
	}
}

// VarResult is a finalized mean and variance.
type VarResult[T computed.Scalar] struct {
	count    uint64
	mean     []T
	variance []float64
}

func (r *VarResult[T]) Size() int { return len(r.mean) }

func (r *VarResult[T]) Count() uint64 { return r.count }

func (r *VarResult[T]) Mean() []T { return r.mean }

// Var returns the unbiased sample variance per component; NaN with fewer
// than two samples.
func (r *VarResult[T]) Var() []float64 { return r.variance }

// StdErr returns the standard error of the mean per component, assuming
// uncorrelated samples.
func (r *VarResult[T]) StdErr() []float64 {
	out := make([]float64, len(r.variance))
	for i, v := range r.variance {
		out[i] = math.Sqrt(v / float64(r.count))
	}
	return out
}

func (r *VarResult[T]) Serialize(s serialize.Serializer, key string) error {
	return serialize.Group(s, key, func() error {
		if err := writeHeader(s, len(r.mean), r.count); err != nil {
			return err
		}
		err := serialize.Group(s, "mean", func() error {
			return serialize.WriteVector(s, "value", r.mean)
		})
		if err != nil {
			return err
		}
		return serialize.Group(s, "var", func() error {
			return serialize.WriteVector(s, "value", r.variance)
		})
	})
}

func (r *VarResult[T]) Deserialize(d serialize.Deserializer, key string) error {
	return serialize.Group(d, key, func() error {
		size, count, err := readHeader(d)
		if err != nil {
			return err
		}
		mean, variance := make([]T, size), make([]float64, size)
		err = serialize.Group(d, "mean", func() error {
			return serialize.ReadVector(d, "value", mean)
		})
		if err != nil {
			return err
		}
		err = serialize.Group(d, "var", func() error {
			return serialize.ReadVector(d, "value", variance)
		})
		if err != nil {
			return err
		}
		r.count, r.mean, r.variance = count, mean, variance
		return nil
	})
}

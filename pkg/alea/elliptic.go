package alea

import (
	"github.com/timescale/tsbs-alea/pkg/computed"
	"github.com/timescale/tsbs-alea/pkg/serialize"
)

// EllipticVarAcc accumulates the variance of complex samples as the full
// 2x2 covariance of real and imaginary parts, per component.
type EllipticVarAcc struct {
	size    int
	count   uint64
	mean    []complex128
	m2      []computed.ComplexOp
	scratch []complex128
}

func NewEllipticVarAcc(size int) *EllipticVarAcc {
	return &EllipticVarAcc{
		size:    size,
		mean:    make([]complex128, size),
		m2:      make([]computed.ComplexOp, size),
		scratch: make([]complex128, size),
	}
}

func (a *EllipticVarAcc) AleaAccumulator() {}

func (a *EllipticVarAcc) Size() int { return a.size }

func (a *EllipticVarAcc) Count() uint64 { return a.count }

func (a *EllipticVarAcc) Add(c computed.Computed[complex128], count uint64) error {
	if err := checkAdd(a.size, c); err != nil {
		return err
	}
	computed.Zero[complex128](a.scratch)
	if err := c.AddTo(a.scratch); err != nil {
		return err
	}
	for k := uint64(0); k < count; k++ {
		a.count++
		n := complex(float64(a.count), 0)
		for i, x := range a.scratch {
			delta := x - a.mean[i]
			a.mean[i] += delta / n
			a.m2[i] = a.m2[i].Add(computed.OuterProduct(delta, x-a.mean[i]))
		}
	}
	return nil
}

func (a *EllipticVarAcc) Append(v any) error {
	return Append[complex128](a, v)
}

func (a *EllipticVarAcc) Result() *EllipticVarResult {
	r := &EllipticVarResult{
		count:    a.count,
		mean:     make([]complex128, a.size),
		variance: make([]computed.ComplexOp, a.size),
	}
	copy(r.mean, a.mean)
	for i, m2 := range a.m2 {
		r.variance[i] = computed.ComplexOp{
			ReRe: sampleVariance(m2.ReRe, a.count),
			ReIm: sampleVariance(m2.ReIm, a.count),
			ImRe: sampleVariance(m2.ImRe, a.count),
			ImIm: sampleVariance(m2.ImIm, a.count),
		}
	}
	return r
}

func (a *EllipticVarAcc) Finalize() *EllipticVarResult {
	r := a.Result()
	a.Reset()
	return r
}

func (a *EllipticVarAcc) Reset() {
	a.count = 0
	computed.Zero[complex128](a.mean)
	for i := range a.m2 {
		a.m2[i] = computed.ComplexOp{}
	}
}

// EllipticVarResult is a finalized complex mean with elliptic variance.
type EllipticVarResult struct {
	count    uint64
	mean     []complex128
	variance []computed.ComplexOp
}

func (r *EllipticVarResult) Size() int { return len(r.mean) }

func (r *EllipticVarResult) Count() uint64 { return r.count }

func (r *EllipticVarResult) Mean() []complex128 { return r.mean }

// Var returns the covariance of (re, im) per component.
func (r *EllipticVarResult) Var() []computed.ComplexOp { return r.variance }

func (r *EllipticVarResult) Serialize(s serialize.Serializer, key string) error {
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

func (r *EllipticVarResult) Deserialize(d serialize.Deserializer, key string) error {
	return serialize.Group(d, key, func() error {
		size, count, err := readHeader(d)
		if err != nil {
			return err
		}
		mean, variance := make([]complex128, size), make([]computed.ComplexOp, size)
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

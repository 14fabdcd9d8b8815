package alea

import (
	"math"

	"github.com/timescale/tsbs-alea/pkg/computed"
	"github.com/timescale/tsbs-alea/pkg/serialize"
	"gonum.org/v1/gonum/mat"
)

// CovAcc accumulates the mean and the full covariance matrix of the
// components. For complex samples the matrix is Hermitian,
// cov[i,j] = E[(x_i - mean_i) conj(x_j - mean_j)].
type CovAcc[T computed.Scalar] struct {
	size    int
	count   uint64
	mean    []T
	m2      []T // row-major size x size
	delta   []T
	scratch []T
}

func NewCovAcc[T computed.Scalar](size int) *CovAcc[T] {
	return &CovAcc[T]{
		size:    size,
		mean:    make([]T, size),
		m2:      make([]T, size*size),
		delta:   make([]T, size),
		scratch: make([]T, size),
	}
}

func (a *CovAcc[T]) AleaAccumulator() {}

func (a *CovAcc[T]) Size() int { return a.size }

func (a *CovAcc[T]) Count() uint64 { return a.count }

func (a *CovAcc[T]) Add(c computed.Computed[T], count uint64) error {
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
			a.delta[i] = x - a.mean[i]
			a.mean[i] += a.delta[i] / n
		}
		for i := 0; i < a.size; i++ {
			row := a.m2[i*a.size : (i+1)*a.size]
			for j, x := range a.scratch {
				row[j] += a.delta[i] * computed.Conj(x-a.mean[j])
			}
		}
	}
	return nil
}

func (a *CovAcc[T]) Append(v any) error {
	return Append[T](a, v)
}

func (a *CovAcc[T]) Result() *CovResult[T] {
	r := &CovResult[T]{
		count: a.count,
		mean:  make([]T, a.size),
		cov:   make([]T, len(a.m2)),
	}
	copy(r.mean, a.mean)
	if a.count < 2 {
		nan := computed.FromFloat[T](math.NaN())
		for i := range r.cov {
			r.cov[i] = nan
		}
		return r
	}
	n := computed.FromFloat[T](float64(a.count - 1))
	for i, m := range a.m2 {
		r.cov[i] = m / n
	}
	return r
}

func (a *CovAcc[T]) Finalize() *CovResult[T] {
	r := a.Result()
	a.Reset()
	return r
}

func (a *CovAcc[T]) Reset() {
	a.count = 0
	computed.Zero[T](a.mean)
	computed.Zero[T](a.m2)
}

// CovResult is a finalized mean and covariance matrix.
type CovResult[T computed.Scalar] struct {
	count uint64
	mean  []T
	cov   []T
}

func (r *CovResult[T]) Size() int { return len(r.mean) }

func (r *CovResult[T]) Count() uint64 { return r.count }

func (r *CovResult[T]) Mean() []T { return r.mean }

// Cov returns the covariance matrix flattened row-major.
func (r *CovResult[T]) Cov() []T { return r.cov }

// At returns cov[i,j].
func (r *CovResult[T]) At(i, j int) T { return r.cov[i*len(r.mean)+j] }

// Var returns the diagonal of the covariance matrix.
func (r *CovResult[T]) Var() []float64 {
	n := len(r.mean)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = re(r.cov[i*n+i])
	}
	return out
}

// Dense returns the covariance as a gonum matrix. It is nil for complex
// results; use CDense.
func (r *CovResult[T]) Dense() *mat.Dense {
	data, ok := any(r.cov).([]float64)
	if !ok {
		return nil
	}
	n := len(r.mean)
	return mat.NewDense(n, n, append([]float64(nil), data...))
}

// CDense returns the covariance as a gonum complex matrix.
func (r *CovResult[T]) CDense() *mat.CDense {
	n := len(r.mean)
	data := make([]complex128, len(r.cov))
	for i, v := range r.cov {
		switch x := any(v).(type) {
		case float64:
			data[i] = complex(x, 0)
		case complex128:
			data[i] = x
		}
	}
	return mat.NewCDense(n, n, data)
}

func (r *CovResult[T]) Serialize(s serialize.Serializer, key string) error {
	return serialize.Group(s, key, func() error {
		n := len(r.mean)
		if err := writeHeader(s, n, r.count); err != nil {
			return err
		}
		err := serialize.Group(s, "mean", func() error {
			return serialize.WriteVector(s, "value", r.mean)
		})
		if err != nil {
			return err
		}
		return serialize.Group(s, "cov", func() error {
			return serialize.Write(s, "value", serialize.NewNDView(r.cov, n, n))
		})
	})
}

func (r *CovResult[T]) Deserialize(d serialize.Deserializer, key string) error {
	return serialize.Group(d, key, func() error {
		n, count, err := readHeader(d)
		if err != nil {
			return err
		}
		mean, cov := make([]T, n), make([]T, n*n)
		err = serialize.Group(d, "mean", func() error {
			return serialize.ReadVector(d, "value", mean)
		})
		if err != nil {
			return err
		}
		err = serialize.Group(d, "cov", func() error {
			return serialize.Read(d, "value", serialize.NewNDView(cov, n, n))
		})
		if err != nil {
			return err
		}
		r.count, r.mean, r.cov = count, mean, cov
		return nil
	})
}

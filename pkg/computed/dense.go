package computed

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Dense maps a vector-shaped gonum expression onto the Computed interface.
// Real accumulators take a mat.Matrix, complex accumulators a mat.CMatrix.
// The expression is borrowed, not copied.
type Dense[T Scalar] struct {
	n  int
	re mat.Vector
	cx mat.CMatrix
	// row is set when cx is a 1xN row vector
	row bool
}

// NewDense builds a Dense adapter over expr. It fails with ErrTypeMismatch if
// the expression's element type is not T, and with ErrNotVector if it has
// more than one row and more than one column. No element is read.
func NewDense[T Scalar](expr any) (*Dense[T], error) {
	var zero T
	switch any(zero).(type) {
	case float64:
		m, ok := expr.(mat.Matrix)
		if !ok {
			return nil, errors.Wrapf(ErrTypeMismatch, "%T is not a real dense expression", expr)
		}
		if v, ok := m.(mat.Vector); ok {
			return &Dense[T]{n: v.Len(), re: v}, nil
		}
		r, c := m.Dims()
		if r != 1 && c != 1 {
			return nil, errors.Wrapf(ErrNotVector, "dimensions %dx%d", r, c)
		}
		v := matVector{m: m, row: r == 1 && c != 1}
		return &Dense[T]{n: v.Len(), re: v}, nil
	case complex128:
		m, ok := expr.(mat.CMatrix)
		if !ok {
			return nil, errors.Wrapf(ErrTypeMismatch, "%T is not a complex dense expression", expr)
		}
		r, c := m.Dims()
		if r != 1 && c != 1 {
			return nil, errors.Wrapf(ErrNotVector, "dimensions %dx%d", r, c)
		}
		if r == 1 {
			return &Dense[T]{n: c, cx: m, row: c != 1}, nil
		}
		return &Dense[T]{n: r, cx: m}, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "no dense expressions over %s", TypeName[T]())
}

func (a *Dense[T]) Size() int { return a.n }

// AddTo maps out onto a column vector and adds the expression in one step.
func (a *Dense[T]) AddTo(out View[T]) error {
	if err := CheckSize(a.n, len(out)); err != nil {
		return err
	}
	if a.n == 0 {
		return nil
	}
	if a.re != nil {
		dst := mat.NewVecDense(len(out), any([]T(out)).([]float64))
		dst.AddVec(dst, a.re)
		return nil
	}
	buf := any([]T(out)).([]complex128)
	for i := range buf {
		if a.row {
			buf[i] += a.cx.At(0, i)
		} else {
			buf[i] += a.cx.At(i, 0)
		}
	}
	return nil
}

// Clone is not supported: the expression is borrowed and may be lazy.
func (a *Dense[T]) Clone() (Computed[T], error) {
	return nil, errors.Wrap(ErrUnsupportedOperation, "clone of dense expression")
}

// matVector presents a single-row or single-column mat.Matrix as a
// column mat.Vector.
type matVector struct {
	m   mat.Matrix
	row bool
}

func (v matVector) Len() int {
	r, c := v.m.Dims()
	if v.row {
		return c
	}
	return r
}

func (v matVector) Dims() (r, c int) { return v.Len(), 1 }

func (v matVector) At(i, j int) float64 {
	if j != 0 {
		panic(mat.ErrColAccess)
	}
	return v.AtVec(i)
}

func (v matVector) AtVec(i int) float64 {
	if v.row {
		return v.m.At(0, i)
	}
	return v.m.At(i, 0)
}

func (v matVector) T() mat.Matrix { return mat.Transpose{Matrix: v} }

package serialize

import "github.com/timescale/tsbs-alea/pkg/computed"

// Element is the set of element types a serializer can persist.
type Element interface {
	float64 | complex128 | computed.ComplexOp | int64 | uint64
}

// NDView is a non-owning view of a multi-dimensional array stored flat in
// row-major order (first dimension outermost). An empty shape denotes a
// scalar. A nil Data is only valid as a read target, where it means the
// field is to be skipped.
type NDView[T Element] struct {
	Shape []int
	Data  []T
}

// NewNDView returns a view of data with the given shape.
func NewNDView[T Element](data []T, shape ...int) NDView[T] {
	return NDView[T]{Shape: shape, Data: data}
}

// Discard returns a view of the given shape with no backing buffer. Reading
// into it consumes the field without storing it.
func Discard[T Element](shape ...int) NDView[T] {
	return NDView[T]{Shape: shape}
}

// NDim returns the number of dimensions.
func (v NDView[T]) NDim() int {
	return len(v.Shape)
}

// Size returns the number of elements: the product of the shape, which is 1
// for an empty shape.
func (v NDView[T]) Size() int {
	return ComputeSize(v.Shape)
}

// IsDiscard reports whether the view has no backing buffer.
func (v NDView[T]) IsDiscard() bool {
	return v.Data == nil
}

// ComputeSize folds shape into its element count; an empty shape yields 1.
func ComputeSize(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

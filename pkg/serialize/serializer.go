// Package serialize defines an archive-agnostic, key and group oriented
// interface for persisting accumulator results, together with a stream
// adapter for token archives that know nothing about keys or shapes.
package serialize

import (
	"github.com/pkg/errors"
	"github.com/timescale/tsbs-alea/pkg/computed"
)

var (
	// ErrKeyNotFound signals a read of a key that was never written.
	ErrKeyNotFound = errors.New("serialize: key not found")
	// ErrUnbalancedGroup signals an Exit without a matching Enter.
	ErrUnbalancedGroup = errors.New("serialize: exit without matching enter")
	// ErrElementType signals a read whose element type differs from the
	// type the key was written with.
	ErrElementType = errors.New("serialize: element type differs from stored type")
	// ErrDuplicateKey signals a key written twice in the same group.
	ErrDuplicateKey = errors.New("serialize: key already written")
)

// Scoper opens and closes named groups. Formats without native grouping
// implement both as no-ops.
type Scoper interface {
	Enter(group string) error
	Exit() error
}

// Serializer writes keyed N-dimensional views. Writes advance the underlying
// archive and must be issued in the order the matching Deserializer calls
// will read them back.
type Serializer interface {
	Scoper
	WriteFloat64(key string, v NDView[float64]) error
	WriteComplex128(key string, v NDView[complex128]) error
	WriteComplexOp(key string, v NDView[computed.ComplexOp]) error
	WriteInt64(key string, v NDView[int64]) error
	WriteUint64(key string, v NDView[uint64]) error
}

// Deserializer mirrors Serializer. A read into a view with nil Data consumes
// the field without storing it.
type Deserializer interface {
	Scoper
	// Shape returns the persisted shape of key, or an empty shape when the
	// format does not record shapes. In the latter case callers must know the
	// expected size beforehand.
	Shape(key string) ([]int, error)
	ReadFloat64(key string, v NDView[float64]) error
	ReadComplex128(key string, v NDView[complex128]) error
	ReadComplexOp(key string, v NDView[computed.ComplexOp]) error
	ReadInt64(key string, v NDView[int64]) error
	ReadUint64(key string, v NDView[uint64]) error
}

// Serializable is implemented by result types that can write themselves,
// in a fixed field order, under key.
type Serializable interface {
	Serialize(s Serializer, key string) error
}

// Deserializable is implemented by result types that can restore themselves
// from the field sequence their Serialize writes.
type Deserializable interface {
	Deserialize(d Deserializer, key string) error
}

// Write dispatches v to the Serializer method for its element type.
func Write[T Element](s Serializer, key string, v NDView[T]) error {
	switch x := any(v).(type) {
	case NDView[float64]:
		return s.WriteFloat64(key, x)
	case NDView[complex128]:
		return s.WriteComplex128(key, x)
	case NDView[computed.ComplexOp]:
		return s.WriteComplexOp(key, x)
	case NDView[int64]:
		return s.WriteInt64(key, x)
	case NDView[uint64]:
		return s.WriteUint64(key, x)
	}
	panic("unreachable")
}

// Read dispatches v to the Deserializer method for its element type.
func Read[T Element](d Deserializer, key string, v NDView[T]) error {
	switch x := any(v).(type) {
	case NDView[float64]:
		return d.ReadFloat64(key, x)
	case NDView[complex128]:
		return d.ReadComplex128(key, x)
	case NDView[computed.ComplexOp]:
		return d.ReadComplexOp(key, x)
	case NDView[int64]:
		return d.ReadInt64(key, x)
	case NDView[uint64]:
		return d.ReadUint64(key, x)
	}
	panic("unreachable")
}

// WriteScalar writes x as a zero-dimensional view.
func WriteScalar[T Element](s Serializer, key string, x T) error {
	return Write(s, key, NDView[T]{Data: []T{x}})
}

// ReadScalar reads a zero-dimensional view.
func ReadScalar[T Element](d Deserializer, key string) (T, error) {
	buf := make([]T, 1)
	err := Read(d, key, NDView[T]{Data: buf})
	return buf[0], err
}

// WriteVector writes data as a one-dimensional view.
func WriteVector[T Element](s Serializer, key string, data []T) error {
	return Write(s, key, NDView[T]{Shape: []int{len(data)}, Data: data})
}

// ReadVector reads a one-dimensional view into data, which must already
// have the persisted length.
func ReadVector[T Element](d Deserializer, key string, data []T) error {
	return Read(d, key, NDView[T]{Shape: []int{len(data)}, Data: data})
}

// Group runs fn inside the group name and always closes the group.
func Group(s Scoper, name string, fn func() error) error {
	if err := s.Enter(name); err != nil {
		return err
	}
	err := fn()
	if exitErr := s.Exit(); err == nil {
		err = exitErr
	}
	return err
}

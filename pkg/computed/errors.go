package computed

import "github.com/pkg/errors"

var (
	// ErrSizeMismatch signals that a destination does not have the number
	// of elements the source contributes.
	ErrSizeMismatch = errors.New("computed: size mismatch")
	// ErrTypeMismatch signals a dense expression whose element type differs
	// from the accumulator's.
	ErrTypeMismatch = errors.New("computed: element type mismatch")
	// ErrNotVector signals a dense expression that is not vector-shaped.
	ErrNotVector = errors.New("computed: expression is not a vector")
	// ErrUnsupportedOperation signals an optional operation the value does
	// not implement.
	ErrUnsupportedOperation = errors.New("computed: unsupported operation")
	// ErrCapabilityMismatch signals a value that has none of the recognized
	// shapes and is not custom-addable.
	ErrCapabilityMismatch = errors.New("computed: value cannot be added to an accumulator")
)

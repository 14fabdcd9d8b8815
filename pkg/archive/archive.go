// Package archive provides sequential token-stream archives. A token stream
// carries no shape, key or group metadata: values are read back in exactly
// the order they were written.
package archive

import (
	"github.com/pkg/errors"
)

// Encoder writes primitive tokens to an underlying stream.
type Encoder interface {
	EncodeFloat64(float64) error
	EncodeInt64(int64) error
	EncodeUint64(uint64) error
	// Flush writes any buffered tokens to the underlying writer.
	Flush() error
}

// Decoder reads primitive tokens in the order they were encoded.
type Decoder interface {
	DecodeFloat64() (float64, error)
	DecodeInt64() (int64, error)
	DecodeUint64() (uint64, error)
}

// ErrUnknownFormat signals an archive format name that is not registered.
var ErrUnknownFormat = errors.New("archive: unknown format")

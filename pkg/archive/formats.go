package archive

import (
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// Formats supported for persisting results
const (
	FormatBinary    = "binary"
	FormatText      = "text"
	FormatGob       = "gob"
	FormatProtowire = "protowire"
)

func SupportedFormats() []string {
	return []string{
		FormatBinary,
		FormatText,
		FormatGob,
		FormatProtowire,
	}
}

// NewEncoder returns an Encoder for the named format writing to w.
func NewEncoder(format string, w io.Writer) (Encoder, error) {
	switch format {
	case FormatBinary:
		return NewBinaryEncoder(w), nil
	case FormatText:
		return NewTextEncoder(w), nil
	case FormatGob:
		return NewGobEncoder(w), nil
	case FormatProtowire:
		return NewProtowireEncoder(w), nil
	}
	return nil, unknownFormat(format)
}

// NewDecoder returns a Decoder for the named format reading from r.
func NewDecoder(format string, r io.Reader) (Decoder, error) {
	switch format {
	case FormatBinary:
		return NewBinaryDecoder(r), nil
	case FormatText:
		return NewTextDecoder(r), nil
	case FormatGob:
		return NewGobDecoder(r), nil
	case FormatProtowire:
		return NewProtowireDecoder(r), nil
	}
	return nil, unknownFormat(format)
}

func unknownFormat(format string) error {
	return errors.Wrapf(ErrUnknownFormat, "%q, supported: %s", format, strings.Join(SupportedFormats(), ","))
}

// SnappyWriter wraps w in a framed snappy stream. The returned writer must be
// closed after the encoder on top of it has been flushed.
func SnappyWriter(w io.Writer) io.WriteCloser {
	return snappy.NewBufferedWriter(w)
}

// SnappyReader reads a framed snappy stream written by SnappyWriter.
func SnappyReader(r io.Reader) io.Reader {
	return snappy.NewReader(r)
}

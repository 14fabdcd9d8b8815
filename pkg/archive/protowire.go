package archive

import (
	"bufio"
	"io"
	"math"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

const protowireFlushSize = 4096

// ProtowireEncoder writes tokens using protobuf wire primitives without
// field tags: floats as fixed64, signed integers as zigzag varints and
// unsigned integers as varints.
type ProtowireEncoder struct {
	w   io.Writer
	buf []byte
}

func NewProtowireEncoder(w io.Writer) *ProtowireEncoder {
	return &ProtowireEncoder{w: w, buf: make([]byte, 0, protowireFlushSize)}
}

func (e *ProtowireEncoder) EncodeFloat64(f float64) error {
	e.buf = protowire.AppendFixed64(e.buf, math.Float64bits(f))
	return e.maybeFlush()
}

func (e *ProtowireEncoder) EncodeInt64(i int64) error {
	e.buf = protowire.AppendVarint(e.buf, protowire.EncodeZigZag(i))
	return e.maybeFlush()
}

func (e *ProtowireEncoder) EncodeUint64(u uint64) error {
	e.buf = protowire.AppendVarint(e.buf, u)
	return e.maybeFlush()
}

func (e *ProtowireEncoder) Flush() error {
	if len(e.buf) == 0 {
		return nil
	}
	_, err := e.w.Write(e.buf)
	e.buf = e.buf[:0]
	return err
}

func (e *ProtowireEncoder) maybeFlush() error {
	if len(e.buf) < protowireFlushSize {
		return nil
	}
	return e.Flush()
}

// ProtowireDecoder reads tokens written by a ProtowireEncoder.
type ProtowireDecoder struct {
	r   *bufio.Reader
	buf [binaryVarintLen]byte
}

const binaryVarintLen = 10

func NewProtowireDecoder(r io.Reader) *ProtowireDecoder {
	return &ProtowireDecoder{r: bufio.NewReader(r)}
}

func (d *ProtowireDecoder) DecodeFloat64() (float64, error) {
	if _, err := io.ReadFull(d.r, d.buf[:8]); err != nil {
		return 0, err
	}
	v, n := protowire.ConsumeFixed64(d.buf[:8])
	if n < 0 {
		return 0, errors.Wrap(protowire.ParseError(n), "archive: bad fixed64 token")
	}
	return math.Float64frombits(v), nil
}

func (d *ProtowireDecoder) DecodeInt64() (int64, error) {
	u, err := d.DecodeUint64()
	return protowire.DecodeZigZag(u), err
}

func (d *ProtowireDecoder) DecodeUint64() (uint64, error) {
	i := 0
	for {
		c, err := d.r.ReadByte()
		if err != nil {
			if err == io.EOF && i > 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		if i == len(d.buf) {
			return 0, errors.New("archive: varint token too long")
		}
		d.buf[i] = c
		i++
		if c < 0x80 {
			break
		}
	}
	v, n := protowire.ConsumeVarint(d.buf[:i])
	if n < 0 {
		return 0, errors.Wrap(protowire.ParseError(n), "archive: bad varint token")
	}
	return v, nil
}

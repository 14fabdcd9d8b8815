package archive

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
)

// BinaryEncoder writes every token as 8 little-endian bytes.
type BinaryEncoder struct {
	w   *bufio.Writer
	buf [8]byte
}

func NewBinaryEncoder(w io.Writer) *BinaryEncoder {
	return &BinaryEncoder{w: bufio.NewWriter(w)}
}

func (e *BinaryEncoder) EncodeFloat64(f float64) error {
	return e.EncodeUint64(math.Float64bits(f))
}

func (e *BinaryEncoder) EncodeInt64(i int64) error {
	return e.EncodeUint64(uint64(i))
}

func (e *BinaryEncoder) EncodeUint64(u uint64) error {
	binary.LittleEndian.PutUint64(e.buf[:], u)
	_, err := e.w.Write(e.buf[:])
	return err
}

func (e *BinaryEncoder) Flush() error {
	return e.w.Flush()
}

// BinaryDecoder reads tokens written by a BinaryEncoder.
type BinaryDecoder struct {
	r   *bufio.Reader
	buf [8]byte
}

func NewBinaryDecoder(r io.Reader) *BinaryDecoder {
	return &BinaryDecoder{r: bufio.NewReader(r)}
}

func (d *BinaryDecoder) DecodeFloat64() (float64, error) {
	u, err := d.DecodeUint64()
	return math.Float64frombits(u), err
}

func (d *BinaryDecoder) DecodeInt64() (int64, error) {
	u, err := d.DecodeUint64()
	return int64(u), err
}

func (d *BinaryDecoder) DecodeUint64() (uint64, error) {
	if _, err := io.ReadFull(d.r, d.buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(d.buf[:]), nil
}

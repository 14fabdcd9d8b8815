package archive

import (
	"bufio"
	"encoding/gob"
	"io"
)

// GobEncoder writes each token as a separate gob value.
type GobEncoder struct {
	w   *bufio.Writer
	enc *gob.Encoder
}

func NewGobEncoder(w io.Writer) *GobEncoder {
	bw := bufio.NewWriter(w)
	return &GobEncoder{w: bw, enc: gob.NewEncoder(bw)}
}

func (e *GobEncoder) EncodeFloat64(f float64) error { return e.enc.Encode(f) }

func (e *GobEncoder) EncodeInt64(i int64) error { return e.enc.Encode(i) }

func (e *GobEncoder) EncodeUint64(u uint64) error { return e.enc.Encode(u) }

func (e *GobEncoder) Flush() error { return e.w.Flush() }

// GobDecoder reads tokens written by a GobEncoder.
type GobDecoder struct {
	dec *gob.Decoder
}

func NewGobDecoder(r io.Reader) *GobDecoder {
	return &GobDecoder{dec: gob.NewDecoder(r)}
}

func (d *GobDecoder) DecodeFloat64() (f float64, err error) {
	err = d.dec.Decode(&f)
	return f, err
}

func (d *GobDecoder) DecodeInt64() (i int64, err error) {
	err = d.dec.Decode(&i)
	return i, err
}

func (d *GobDecoder) DecodeUint64() (u uint64, err error) {
	err = d.dec.Decode(&u)
	return u, err
}

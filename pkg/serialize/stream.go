package serialize

import (
	"github.com/pkg/errors"
	"github.com/timescale/tsbs-alea/pkg/archive"
	"github.com/timescale/tsbs-alea/pkg/computed"
)

// Stream connects the Serializer/Deserializer interface to a sequential
// token archive. Streams have no notion of groups, keys or shapes: Enter and
// Exit do nothing, keys are only used in error messages, and every view is
// flattened to its elements in row-major order.
type Stream struct {
	enc archive.Encoder
	dec archive.Decoder
}

var (
	_ Serializer   = (*Stream)(nil)
	_ Deserializer = (*Stream)(nil)
)

// NewStream returns a Stream writing to enc and reading from dec; either may
// be nil if the stream is used in one direction only.
func NewStream(enc archive.Encoder, dec archive.Decoder) *Stream {
	return &Stream{enc: enc, dec: dec}
}

func (s *Stream) Enter(string) error { return nil }

func (s *Stream) Exit() error { return nil }

// Shape always returns an empty shape: a token stream cannot recover it.
func (s *Stream) Shape(string) ([]int, error) {
	return []int{}, nil
}

func (s *Stream) WriteFloat64(key string, v NDView[float64]) error {
	return streamWrite(s, key, v, s.putFloat64)
}

func (s *Stream) WriteComplex128(key string, v NDView[complex128]) error {
	return streamWrite(s, key, v, s.putComplex128)
}

func (s *Stream) WriteComplexOp(key string, v NDView[computed.ComplexOp]) error {
	return streamWrite(s, key, v, s.putComplexOp)
}

func (s *Stream) WriteInt64(key string, v NDView[int64]) error {
	return streamWrite(s, key, v, func(i int64) error { return s.enc.EncodeInt64(i) })
}

func (s *Stream) WriteUint64(key string, v NDView[uint64]) error {
	return streamWrite(s, key, v, func(u uint64) error { return s.enc.EncodeUint64(u) })
}

func (s *Stream) ReadFloat64(key string, v NDView[float64]) error {
	return streamRead(s, key, v, func() (float64, error) { return s.dec.DecodeFloat64() })
}

func (s *Stream) ReadComplex128(key string, v NDView[complex128]) error {
	return streamRead(s, key, v, s.getComplex128)
}

func (s *Stream) ReadComplexOp(key string, v NDView[computed.ComplexOp]) error {
	return streamRead(s, key, v, s.getComplexOp)
}

func (s *Stream) ReadInt64(key string, v NDView[int64]) error {
	return streamRead(s, key, v, func() (int64, error) { return s.dec.DecodeInt64() })
}

func (s *Stream) ReadUint64(key string, v NDView[uint64]) error {
	return streamRead(s, key, v, func() (uint64, error) { return s.dec.DecodeUint64() })
}

func (s *Stream) putFloat64(f float64) error {
	return s.enc.EncodeFloat64(f)
}

// complex numbers are two tokens: real, imaginary
func (s *Stream) putComplex128(c complex128) error {
	if err := s.enc.EncodeFloat64(real(c)); err != nil {
		return err
	}
	return s.enc.EncodeFloat64(imag(c))
}

func (s *Stream) getComplex128() (complex128, error) {
	re, err := s.dec.DecodeFloat64()
	if err != nil {
		return 0, err
	}
	im, err := s.dec.DecodeFloat64()
	return complex(re, im), err
}

// operators are four tokens: rere, reim, imre, imim
func (s *Stream) putComplexOp(o computed.ComplexOp) error {
	for _, x := range o.Components() {
		if err := s.enc.EncodeFloat64(x); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stream) getComplexOp() (computed.ComplexOp, error) {
	var c [4]float64
	for i := range c {
		x, err := s.dec.DecodeFloat64()
		if err != nil {
			return computed.ComplexOp{}, err
		}
		c[i] = x
	}
	return computed.ComplexOpFromComponents(c), nil
}

func streamWrite[T Element](s *Stream, key string, v NDView[T], put func(T) error) error {
	if s.enc == nil {
		return errors.Errorf("serialize: stream opened for reading, cannot write %q", key)
	}
	n := v.Size()
	if err := computed.CheckSize(n, len(v.Data)); err != nil {
		return errors.Wrapf(err, "write %q", key)
	}
	for i := 0; i < n; i++ {
		if err := put(v.Data[i]); err != nil {
			return errors.Wrapf(err, "write %q element %d", key, i)
		}
	}
	return nil
}

// streamRead consumes v.Size() elements. With a nil destination they are
// decoded into a scratch value so the archive stays in sync; streams cannot
// seek.
func streamRead[T Element](s *Stream, key string, v NDView[T], get func() (T, error)) error {
	if s.dec == nil {
		return errors.Errorf("serialize: stream opened for writing, cannot read %q", key)
	}
	n := v.Size()
	if v.Data == nil {
		for i := 0; i < n; i++ {
			if _, err := get(); err != nil {
				return errors.Wrapf(err, "skip %q element %d", key, i)
			}
		}
		return nil
	}
	if err := computed.CheckSize(n, len(v.Data)); err != nil {
		return errors.Wrapf(err, "read %q", key)
	}
	for i := 0; i < n; i++ {
		x, err := get()
		if err != nil {
			return errors.Wrapf(err, "read %q element %d", key, i)
		}
		v.Data[i] = x
	}
	return nil
}

// Save writes r to enc through a Stream and flushes the encoder.
func Save(enc archive.Encoder, r Serializable) error {
	if err := r.Serialize(NewStream(enc, nil), ""); err != nil {
		return err
	}
	return enc.Flush()
}

// Load restores r from dec through a Stream.
func Load(dec archive.Decoder, r Deserializable) error {
	return r.Deserialize(NewStream(nil, dec), "")
}

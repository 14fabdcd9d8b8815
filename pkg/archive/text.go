package archive

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// TextEncoder writes tokens as space separated decimal text. Floats use the
// shortest representation that parses back to the same value.
type TextEncoder struct {
	w   *bufio.Writer
	buf []byte
	n   int
}

func NewTextEncoder(w io.Writer) *TextEncoder {
	return &TextEncoder{w: bufio.NewWriter(w), buf: make([]byte, 0, 32)}
}

func (e *TextEncoder) EncodeFloat64(f float64) error {
	return e.write(strconv.AppendFloat(e.sep(), f, 'g', -1, 64))
}

func (e *TextEncoder) EncodeInt64(i int64) error {
	return e.write(strconv.AppendInt(e.sep(), i, 10))
}

func (e *TextEncoder) EncodeUint64(u uint64) error {
	return e.write(strconv.AppendUint(e.sep(), u, 10))
}

// Flush terminates the token line and flushes the buffer.
func (e *TextEncoder) Flush() error {
	if e.n > 0 {
		if err := e.w.WriteByte('\n'); err != nil {
			return err
		}
		e.n = 0
	}
	return e.w.Flush()
}

func (e *TextEncoder) sep() []byte {
	e.buf = e.buf[:0]
	if e.n > 0 {
		e.buf = append(e.buf, ' ')
	}
	return e.buf
}

func (e *TextEncoder) write(b []byte) error {
	e.buf = b
	e.n++
	_, err := e.w.Write(b)
	return err
}

// TextDecoder reads whitespace separated tokens written by a TextEncoder.
type TextDecoder struct {
	s *bufio.Scanner
}

func NewTextDecoder(r io.Reader) *TextDecoder {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	return &TextDecoder{s: s}
}

func (d *TextDecoder) DecodeFloat64() (float64, error) {
	tok, err := d.next()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(tok, 64)
	return f, errors.Wrap(err, "archive: bad float token")
}

func (d *TextDecoder) DecodeInt64() (int64, error) {
	tok, err := d.next()
	if err != nil {
		return 0, err
	}
	i, err := strconv.ParseInt(tok, 10, 64)
	return i, errors.Wrap(err, "archive: bad integer token")
}

func (d *TextDecoder) DecodeUint64() (uint64, error) {
	tok, err := d.next()
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(tok, 10, 64)
	return u, errors.Wrap(err, "archive: bad unsigned token")
}

func (d *TextDecoder) next() (string, error) {
	if d.s.Scan() {
		return d.s.Text(), nil
	}
	if err := d.s.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

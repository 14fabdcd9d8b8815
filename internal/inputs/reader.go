package inputs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/timescale/tsbs-alea/pkg/computed"
)

const (
	errRowWidthFmt  = "line %d: expected %d values, got %d"
	errParseFmt     = "line %d, column %d: cannot parse %q as %s"
	errEmptyRowFmt  = "line %d: no values"
	maxLineCapacity = 16 << 20
)

// SampleReader reads one sample per line. Values are separated by
// whitespace or commas; blank lines and lines starting with '#' are skipped.
// The first sample fixes the width every later line must have.
type SampleReader[T computed.Scalar] struct {
	scanner *bufio.Scanner
	line    int
	width   int
	parse   func(string) (T, error)
}

// NewSampleReader reads samples of element type T from r. Complex values use
// Go syntax, e.g. 1+2i.
func NewSampleReader[T computed.Scalar](r io.Reader) *SampleReader[T] {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineCapacity)
	return &SampleReader[T]{scanner: scanner, parse: parser[T]()}
}

func parser[T computed.Scalar]() func(string) (T, error) {
	var zero T
	switch any(zero).(type) {
	case complex128:
		return func(s string) (T, error) {
			c, err := strconv.ParseComplex(s, 128)
			return any(c).(T), err
		}
	default:
		return func(s string) (T, error) {
			f, err := strconv.ParseFloat(s, 64)
			return any(f).(T), err
		}
	}
}

// Width returns the sample width, or 0 before the first sample was read.
func (r *SampleReader[T]) Width() int { return r.width }

// Line returns the number of lines consumed so far.
func (r *SampleReader[T]) Line() int { return r.line }

// Next returns the next sample in a newly allocated slice, or io.EOF after
// the last one.
func (r *SampleReader[T]) Next() ([]T, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, isSeparator)
		if len(fields) == 0 {
			return nil, fmt.Errorf(errEmptyRowFmt, r.line)
		}
		if r.width == 0 {
			r.width = len(fields)
		} else if len(fields) != r.width {
			return nil, fmt.Errorf(errRowWidthFmt, r.line, r.width, len(fields))
		}
		sample := make([]T, len(fields))
		for i, f := range fields {
			v, err := r.parse(f)
			if err != nil {
				return nil, fmt.Errorf(errParseFmt, r.line, i+1, f, computed.TypeName[T]())
			}
			sample[i] = v
		}
		return sample, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func isSeparator(c rune) bool {
	return c == ',' || c == ' ' || c == '\t'
}

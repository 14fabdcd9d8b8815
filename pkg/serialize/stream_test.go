package serialize

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/timescale/tsbs-alea/pkg/archive"
	"github.com/timescale/tsbs-alea/pkg/computed"
)

func newStreamPair(t *testing.T, format string) (*Stream, func() *Stream) {
	var b bytes.Buffer
	enc, err := archive.NewEncoder(format, &b)
	require.NoError(t, err)
	reopen := func() *Stream {
		require.NoError(t, enc.Flush())
		dec, err := archive.NewDecoder(format, &b)
		require.NoError(t, err)
		return NewStream(nil, dec)
	}
	return NewStream(enc, nil), reopen
}

func TestComputeSize(t *testing.T) {
	cases := []struct {
		shape []int
		want  int
	}{
		{shape: nil, want: 1},
		{shape: []int{}, want: 1},
		{shape: []int{4}, want: 4},
		{shape: []int{2, 3}, want: 6},
		{shape: []int{2, 0, 3}, want: 0},
	}
	for _, c := range cases {
		if got := ComputeSize(c.shape); got != c.want {
			t.Errorf("ComputeSize(%v) = %d, want %d", c.shape, got, c.want)
		}
		v := NDView[float64]{Shape: c.shape}
		require.Equal(t, len(c.shape), v.NDim())
		require.True(t, v.IsDiscard())
	}
}

func TestStreamRoundTripMatrix(t *testing.T) {
	for _, format := range archive.SupportedFormats() {
		t.Run(format, func(t *testing.T) {
			w, reopen := newStreamPair(t, format)
			in := []float64{0, 1, 2, 3, 4, 5}
			require.NoError(t, w.WriteFloat64("m", NewNDView(in, 2, 3)))

			r := reopen()
			out := make([]float64, 6)
			require.NoError(t, r.ReadFloat64("m", NewNDView(out, 2, 3)))
			if diff := cmp.Diff(in, out); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStreamSkipKeepsCursor(t *testing.T) {
	for _, format := range archive.SupportedFormats() {
		t.Run(format, func(t *testing.T) {
			w, reopen := newStreamPair(t, format)
			require.NoError(t, w.WriteFloat64("m", NewNDView([]float64{0, 1, 2, 3, 4, 5}, 2, 3)))
			require.NoError(t, w.WriteComplex128("c", NewNDView([]complex128{1 + 1i, 2 - 2i}, 2)))
			require.NoError(t, WriteScalar(w, "marker", int64(-77)))

			r := reopen()
			require.NoError(t, r.ReadFloat64("m", Discard[float64](2, 3)))
			require.NoError(t, r.ReadComplex128("c", Discard[complex128](2)))
			marker, err := ReadScalar[int64](r, "marker")
			require.NoError(t, err)
			require.Equal(t, int64(-77), marker)
		})
	}
}

func TestStreamComplexOpOrder(t *testing.T) {
	op := computed.ComplexOp{ReRe: 1.25, ReIm: -2.5, ImRe: 3.75, ImIm: -5}
	for _, format := range archive.SupportedFormats() {
		t.Run(format, func(t *testing.T) {
			var b bytes.Buffer
			enc, err := archive.NewEncoder(format, &b)
			require.NoError(t, err)
			require.NoError(t, NewStream(enc, nil).WriteComplexOp("op", NDView[computed.ComplexOp]{Data: []computed.ComplexOp{op}}))
			require.NoError(t, enc.Flush())

			// the raw token order is part of the format
			dec, err := archive.NewDecoder(format, bytes.NewReader(b.Bytes()))
			require.NoError(t, err)
			for _, want := range []float64{1.25, -2.5, 3.75, -5} {
				got, err := dec.DecodeFloat64()
				require.NoError(t, err)
				require.Equal(t, want, got)
			}

			dec, err = archive.NewDecoder(format, bytes.NewReader(b.Bytes()))
			require.NoError(t, err)
			got, err := ReadScalar[computed.ComplexOp](NewStream(nil, dec), "op")
			require.NoError(t, err)
			require.Equal(t, op, got)
		})
	}
}

func TestStreamAllElementTypes(t *testing.T) {
	w, reopen := newStreamPair(t, archive.FormatBinary)
	require.NoError(t, WriteVector(w, "f", []float64{1.5, -2}))
	require.NoError(t, WriteVector(w, "c", []complex128{1i}))
	require.NoError(t, WriteVector(w, "i", []int64{-1, 2, -3}))
	require.NoError(t, WriteVector(w, "u", []uint64{7}))
	require.NoError(t, WriteVector(w, "o", []computed.ComplexOp{{ReRe: 1, ReIm: 2, ImRe: 3, ImIm: 4}}))

	r := reopen()
	f := make([]float64, 2)
	require.NoError(t, ReadVector(r, "f", f))
	require.Equal(t, []float64{1.5, -2}, f)
	c := make([]complex128, 1)
	require.NoError(t, ReadVector(r, "c", c))
	require.Equal(t, []complex128{1i}, c)
	i := make([]int64, 3)
	require.NoError(t, ReadVector(r, "i", i))
	require.Equal(t, []int64{-1, 2, -3}, i)
	u := make([]uint64, 1)
	require.NoError(t, ReadVector(r, "u", u))
	require.Equal(t, []uint64{7}, u)
	o := make([]computed.ComplexOp, 1)
	require.NoError(t, ReadVector(r, "o", o))
	require.Equal(t, computed.ComplexOp{ReRe: 1, ReIm: 2, ImRe: 3, ImIm: 4}, o[0])
}

func TestStreamShapeUnknown(t *testing.T) {
	s := NewStream(nil, nil)
	shape, err := s.Shape("anything")
	require.NoError(t, err)
	require.Empty(t, shape)
	require.NoError(t, s.Enter("group"))
	require.NoError(t, s.Exit())
	require.NoError(t, s.Exit())
}

func TestStreamSizeMismatch(t *testing.T) {
	w, reopen := newStreamPair(t, archive.FormatBinary)
	err := w.WriteFloat64("m", NewNDView([]float64{1, 2, 3}, 2, 2))
	require.True(t, errors.Is(err, computed.ErrSizeMismatch), "got %v", err)
	require.NoError(t, w.WriteFloat64("m", NewNDView([]float64{1, 2, 3, 4}, 2, 2)))

	r := reopen()
	err = r.ReadFloat64("m", NewNDView(make([]float64, 3), 2, 2))
	require.True(t, errors.Is(err, computed.ErrSizeMismatch), "got %v", err)
}

func TestStreamDirection(t *testing.T) {
	r := NewStream(nil, archive.NewBinaryDecoder(bytes.NewReader(nil)))
	require.Error(t, r.WriteFloat64("x", NewNDView([]float64{1})))
	w := NewStream(archive.NewBinaryEncoder(&bytes.Buffer{}), nil)
	require.Error(t, w.ReadFloat64("x", NewNDView([]float64{1})))
}

func TestStreamTruncated(t *testing.T) {
	w, reopen := newStreamPair(t, archive.FormatText)
	require.NoError(t, WriteVector(w, "f", []float64{1, 2}))
	r := reopen()
	err := ReadVector(r, "f", make([]float64, 3))
	require.Error(t, err)
	require.Contains(t, err.Error(), `read "f" element 2`)
}

func TestGroupClosesOnError(t *testing.T) {
	tr := NewTree()
	boom := errors.New("boom")
	err := Group(tr, "g", func() error { return boom })
	require.Equal(t, boom, err)
	require.Equal(t, ErrUnbalancedGroup, tr.Exit())
}

package alea

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/timescale/tsbs-alea/pkg/computed"
)

func TestVarAcc(t *testing.T) {
	acc := NewVarAcc[float64](2)
	for _, x := range []float64{1, 2, 3, 4} {
		require.NoError(t, acc.Append([]float64{x, 10 * x}))
	}
	r := acc.Result()
	require.Equal(t, uint64(4), r.Count())
	if diff := cmp.Diff([]float64{2.5, 25}, r.Mean(), approx); diff != "" {
		t.Errorf("Mean() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{5.0 / 3, 500.0 / 3}, r.Var(), approx); diff != "" {
		t.Errorf("Var() mismatch (-want +got):\n%s", diff)
	}
	require.InDelta(t, math.Sqrt(5.0/3/4), r.StdErr()[0], tol)
}

func TestVarAccCount(t *testing.T) {
	a, b := NewVarAcc[float64](1), NewVarAcc[float64](1)
	require.NoError(t, AppendN[float64](a, 2.0, 3))
	require.NoError(t, AppendN[float64](a, 5.0, 2))
	for _, x := range []float64{2, 2, 2, 5, 5} {
		require.NoError(t, b.Append(x))
	}
	ra, rb := a.Result(), b.Result()
	require.Equal(t, rb.Count(), ra.Count())
	require.InDelta(t, rb.Mean()[0], ra.Mean()[0], tol)
	require.InDelta(t, rb.Var()[0], ra.Var()[0], tol)
}

func TestVarAccSingleSample(t *testing.T) {
	acc := NewVarAcc[float64](1)
	require.NoError(t, acc.Append(3.0))
	require.True(t, math.IsNaN(acc.Result().Var()[0]))
}

func TestVarAccComplex(t *testing.T) {
	acc := NewVarAcc[complex128](1)
	require.NoError(t, acc.Append(1+1i))
	require.NoError(t, acc.Append(-1-1i))
	r := acc.Result()
	require.Equal(t, []complex128{0}, r.Mean())
	require.InDelta(t, 4, r.Var()[0], tol)
}

func TestEllipticVarAcc(t *testing.T) {
	acc := NewEllipticVarAcc(1)
	require.NoError(t, acc.Append(1+1i))
	require.NoError(t, acc.Append(-1-1i))
	r := acc.Finalize()
	require.Equal(t, []complex128{0}, r.Mean())
	want := computed.ComplexOp{ReRe: 2, ReIm: 2, ImRe: 2, ImIm: 2}
	if diff := cmp.Diff(want, r.Var()[0], approx); diff != "" {
		t.Errorf("Var() mismatch (-want +got):\n%s", diff)
	}
	require.Zero(t, acc.Count())

	// the trace matches the circular variance
	circ := NewVarAcc[complex128](1)
	for _, x := range []complex128{1 + 2i, -3 + 1i, 0.5 - 1i} {
		require.NoError(t, acc.Append(x))
		require.NoError(t, circ.Append(x))
	}
	require.InDelta(t, circ.Result().Var()[0], acc.Result().Var()[0].Trace(), tol)
}

func TestCovAcc(t *testing.T) {
	acc := NewCovAcc[float64](2)
	for _, x := range []float64{1, 2, 3, 4} {
		require.NoError(t, acc.Append([2]float64{x, -2 * x}))
	}
	r := acc.Result()
	v := 5.0 / 3
	want := []float64{v, -2 * v, -2 * v, 4 * v}
	if diff := cmp.Diff(want, r.Cov(), approx); diff != "" {
		t.Errorf("Cov() mismatch (-want +got):\n%s", diff)
	}
	require.InDelta(t, -2*v, r.At(0, 1), tol)
	if diff := cmp.Diff([]float64{v, 4 * v}, r.Var(), approx); diff != "" {
		t.Errorf("Var() mismatch (-want +got):\n%s", diff)
	}

	d := r.Dense()
	require.NotNil(t, d)
	rows, cols := d.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 2, cols)
	require.InDelta(t, 4*v, d.At(1, 1), tol)
	require.InDelta(t, -2*v, real(r.CDense().At(1, 0)), tol)
}

func TestCovAccComplexHermitian(t *testing.T) {
	acc := NewCovAcc[complex128](2)
	for _, x := range [][]complex128{{1 + 1i, 2}, {-1, 1i}, {2 - 1i, -1 - 1i}} {
		require.NoError(t, acc.Append(x))
	}
	r := acc.Result()
	require.Nil(t, r.Dense())
	for i := 0; i < 2; i++ {
		require.InDelta(t, 0, imag(r.At(i, i)), tol)
		for j := 0; j < 2; j++ {
			a, b := r.At(i, j), r.At(j, i)
			require.InDelta(t, real(a), real(b), tol)
			require.InDelta(t, imag(a), -imag(b), tol)
		}
	}
}

func TestNewBatchAccRejects(t *testing.T) {
	for _, n := range []int{-2, 0, 1, 3} {
		_, err := NewBatchAcc[float64](1, n)
		require.True(t, errors.Is(err, ErrBatchCount), "%d batches", n)
	}
}

func TestBatchAccMerges(t *testing.T) {
	acc, err := NewBatchAcc[float64](1, 4)
	require.NoError(t, err)
	for x := 1; x <= 10; x++ {
		require.NoError(t, acc.Append(float64(x)))
	}
	require.Equal(t, uint64(4), acc.BatchSize())
	require.Equal(t, 4, acc.NumBatches())

	r := acc.Result()
	require.Equal(t, []uint64{4, 4, 2, 0}, r.Counts())
	require.Equal(t, uint64(10), r.Count())
	require.InDelta(t, 5.5, r.Mean()[0], tol)
	want := [][]float64{{2.5}, {6.5}, {9.5}}
	if diff := cmp.Diff(want, r.BatchMeans(), approx); diff != "" {
		t.Errorf("BatchMeans() mismatch (-want +got):\n%s", diff)
	}
	require.InDelta(t, 1.8986674989594514, r.StdErr()[0], 1e-9)
}

func TestBatchAccMatchesMean(t *testing.T) {
	batch, err := NewBatchAcc[complex128](3, 16)
	require.NoError(t, err)
	mean := NewMeanAcc[complex128](3)
	for i := 0; i < 777; i++ {
		x := []complex128{complex(float64(i), 1), complex(math.Sin(float64(i)), float64(i%7)), -1}
		require.NoError(t, batch.Append(x))
		require.NoError(t, mean.Append(x))
	}
	got, want := batch.Result().Mean(), mean.Result().Mean()
	for i := range want {
		require.InDelta(t, real(want[i]), real(got[i]), 1e-9)
		require.InDelta(t, imag(want[i]), imag(got[i]), 1e-9)
	}
	var n uint64
	for _, c := range batch.Result().Counts() {
		n += c
	}
	require.Equal(t, uint64(777), n)
}

func TestBatchStdErrTooFewBatches(t *testing.T) {
	acc, err := NewBatchAcc[float64](1, 2)
	require.NoError(t, err)
	require.NoError(t, acc.Append(1.0))
	require.True(t, math.IsNaN(acc.Result().StdErr()[0]))
}

func testQuantileConfig() QuantileConfig {
	return QuantileConfig{Min: -10, Max: 110, Scale: 100, SigFigs: 3}
}

func TestQuantileAcc(t *testing.T) {
	acc, err := NewQuantileAcc(2, testQuantileConfig())
	require.NoError(t, err)
	for x := 1; x <= 100; x++ {
		require.NoError(t, acc.Append([]float64{float64(x), -float64(x) / 20}))
	}
	r := acc.Result()
	require.Equal(t, uint64(100), r.Count())
	require.InDelta(t, 50, r.Quantile(0, 0.5), 0.1)
	require.InDelta(t, 1, r.Quantile(0, 0), 0.1)
	require.InDelta(t, 100, r.Quantile(0, 1), 0.1)
	require.InDelta(t, -2.5, r.Median()[1], 0.1)
	require.InDelta(t, -5, r.Quantile(1, 0), 0.1)

	var b bytes.Buffer
	require.NoError(t, r.WritePercentiles(&b, 0))
	require.True(t, strings.Contains(b.String(), "Percentile"), b.String())
}

func TestQuantileAccDefaultResolution(t *testing.T) {
	acc, err := NewQuantileAcc(1, DefaultQuantileConfig)
	require.NoError(t, err)
	for i := 0; i <= 1000; i++ {
		require.NoError(t, acc.Append(float64(i-500)/1000))
	}
	r := acc.Result()
	res := 1 / DefaultQuantileConfig.Scale
	require.InDelta(t, 0, r.Quantile(0, 0.5), 2*res)
	require.InDelta(t, -0.25, r.Quantile(0, 0.25), 2*res)
	require.InDelta(t, 0.25, r.Quantile(0, 0.75), 2*res)
	require.InDelta(t, -0.5, r.Quantile(0, 0), 2*res)
	require.InDelta(t, 0.5, r.Quantile(0, 1), 2*res)

	// far from zero three significant digits are kept
	require.NoError(t, acc.Append(1000.0))
	require.NoError(t, acc.Append(-1000.0))
	r = acc.Result()
	require.InDelta(t, 1000, r.Quantile(0, 1), 1)
	require.InDelta(t, -1000, r.Quantile(0, 0), 1)
	require.InDelta(t, 0, r.Median()[0], 2*res)
}

func TestQuantileAccRejectsOutOfRange(t *testing.T) {
	acc, err := NewQuantileAcc(2, testQuantileConfig())
	require.NoError(t, err)
	for _, x := range [][]float64{{1, 200}, {-11, 1}, {math.NaN(), 1}} {
		err := acc.Append(x)
		require.True(t, errors.Is(err, ErrOutOfRange), "%v: %v", x, err)
	}
	require.Zero(t, acc.Count())
	require.True(t, math.IsNaN(acc.Result().Quantile(0, 0.5)))
}

func TestQuantileConfigValidation(t *testing.T) {
	cases := []struct {
		desc string
		cfg  QuantileConfig
	}{
		{desc: "empty range", cfg: QuantileConfig{Min: 1, Max: 1, Scale: 1, SigFigs: 3}},
		{desc: "zero scale", cfg: QuantileConfig{Min: 0, Max: 1, Scale: 0, SigFigs: 3}},
		{desc: "sigfigs", cfg: QuantileConfig{Min: 0, Max: 1, Scale: 100, SigFigs: 6}},
		{desc: "too narrow", cfg: QuantileConfig{Min: 0, Max: 1, Scale: 1, SigFigs: 3}},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			_, err := NewQuantileAcc(1, c.cfg)
			require.True(t, errors.Is(err, ErrQuantileConfig), err)
		})
	}
	_, err := NewQuantileAcc(1, DefaultQuantileConfig)
	require.NoError(t, err)
}

func TestQuantileFinalizeResets(t *testing.T) {
	acc, err := NewQuantileAcc(1, testQuantileConfig())
	require.NoError(t, err)
	require.NoError(t, AppendN[float64](acc, 3.0, 5))
	r := acc.Finalize()
	require.InDelta(t, 3, r.Median()[0], 0.01)
	require.Zero(t, acc.Count())
	require.True(t, math.IsNaN(acc.Result().Median()[0]))
	// the finalized result does not share buckets with the accumulator
	require.InDelta(t, 3, r.Median()[0], 0.01)
}

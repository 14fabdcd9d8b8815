package alea

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/timescale/tsbs-alea/pkg/archive"
	"github.com/timescale/tsbs-alea/pkg/serialize"
)

// roundTrips persists in through every archive format and through a YAML
// tree, restoring each time into a fresh value from mk.
func roundTrips(t *testing.T, in Result, mk func() Result, check func(t *testing.T, got Result)) {
	for _, format := range archive.SupportedFormats() {
		t.Run(format, func(t *testing.T) {
			var b bytes.Buffer
			enc, err := archive.NewEncoder(format, &b)
			require.NoError(t, err)
			require.NoError(t, serialize.Save(enc, in))

			dec, err := archive.NewDecoder(format, &b)
			require.NoError(t, err)
			got := mk()
			require.NoError(t, serialize.Load(dec, got))
			require.Equal(t, in.Size(), got.Size())
			require.Equal(t, in.Count(), got.Count())
			check(t, got)
		})
	}
	t.Run("yaml", func(t *testing.T) {
		tree := serialize.NewTree()
		require.NoError(t, in.Serialize(tree, "result"))
		var b bytes.Buffer
		_, err := tree.WriteTo(&b)
		require.NoError(t, err)

		back, err := serialize.ReadTree(&b)
		require.NoError(t, err)
		got := mk()
		require.NoError(t, got.Deserialize(back, "result"))
		require.Equal(t, in.Count(), got.Count())
		check(t, got)
	})
}

func TestMeanResultRoundTrip(t *testing.T) {
	acc := NewMeanAcc[complex128](3)
	require.NoError(t, acc.Append([]complex128{1 + 2i, -3, 0.25i}))
	require.NoError(t, acc.Append([]complex128{1, 1, 1}))
	in := acc.Result()
	roundTrips(t, in, func() Result { return &MeanResult[complex128]{} }, func(t *testing.T, got Result) {
		if diff := cmp.Diff(in.Mean(), got.(*MeanResult[complex128]).Mean()); diff != "" {
			t.Errorf("Mean() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestVarResultRoundTrip(t *testing.T) {
	acc := NewVarAcc[float64](2)
	for _, x := range []float64{0.1, 0.7, -2.3, 11} {
		require.NoError(t, acc.Append([]float64{x, x * x}))
	}
	in := acc.Result()
	roundTrips(t, in, func() Result { return &VarResult[float64]{} }, func(t *testing.T, got Result) {
		r := got.(*VarResult[float64])
		require.Equal(t, in.Mean(), r.Mean())
		require.Equal(t, in.Var(), r.Var())
	})
}

func TestEllipticVarResultRoundTrip(t *testing.T) {
	acc := NewEllipticVarAcc(2)
	for _, x := range []complex128{1 + 1i, 2 - 3i, -0.5 + 0.25i} {
		require.NoError(t, acc.Append([]complex128{x, x * x}))
	}
	in := acc.Result()
	roundTrips(t, in, func() Result { return &EllipticVarResult{} }, func(t *testing.T, got Result) {
		r := got.(*EllipticVarResult)
		require.Equal(t, in.Mean(), r.Mean())
		require.Equal(t, in.Var(), r.Var())
	})
}

func TestCovResultRoundTrip(t *testing.T) {
	acc := NewCovAcc[float64](3)
	for _, x := range []float64{1, 4, 9, 16} {
		require.NoError(t, acc.Append([]float64{x, -x, x / 3}))
	}
	in := acc.Result()
	roundTrips(t, in, func() Result { return &CovResult[float64]{} }, func(t *testing.T, got Result) {
		r := got.(*CovResult[float64])
		require.Equal(t, in.Mean(), r.Mean())
		require.Equal(t, in.Cov(), r.Cov())
	})
}

func TestBatchResultRoundTrip(t *testing.T) {
	acc, err := NewBatchAcc[float64](2, 4)
	require.NoError(t, err)
	for x := 0; x < 13; x++ {
		require.NoError(t, acc.Append([]float64{float64(x), 1}))
	}
	in := acc.Result()
	roundTrips(t, in, func() Result { return &BatchResult[float64]{} }, func(t *testing.T, got Result) {
		r := got.(*BatchResult[float64])
		require.Equal(t, in.Counts(), r.Counts())
		require.Equal(t, in.BatchMeans(), r.BatchMeans())
		require.Equal(t, in.Mean(), r.Mean())
	})
}

func TestQuantileResultRoundTrip(t *testing.T) {
	acc, err := NewQuantileAcc(2, testQuantileConfig())
	require.NoError(t, err)
	for x := 0; x < 50; x++ {
		require.NoError(t, acc.Append([]float64{float64(x), float64(x%5) - 3}))
	}
	in := acc.Result()
	roundTrips(t, in, func() Result { return &QuantileResult{} }, func(t *testing.T, got Result) {
		r := got.(*QuantileResult)
		require.Equal(t, in.Config(), r.Config())
		for _, q := range []float64{0, 0.1, 0.5, 0.9, 1} {
			require.Equal(t, in.Quantiles(q), r.Quantiles(q))
		}
	})
}

func TestLoadRejectsHugeSize(t *testing.T) {
	var b bytes.Buffer
	enc, err := archive.NewEncoder(archive.FormatBinary, &b)
	require.NoError(t, err)
	require.NoError(t, enc.EncodeUint64(1<<40))
	require.NoError(t, enc.Flush())

	dec, err := archive.NewDecoder(archive.FormatBinary, &b)
	require.NoError(t, err)
	err = serialize.Load(dec, &MeanResult[float64]{})
	require.True(t, errors.Is(err, ErrCorruptResult), err)
}

func TestLoadTruncated(t *testing.T) {
	acc := NewVarAcc[float64](4)
	require.NoError(t, acc.Append([]float64{1, 2, 3, 4}))
	var b bytes.Buffer
	enc, err := archive.NewEncoder(archive.FormatBinary, &b)
	require.NoError(t, err)
	require.NoError(t, serialize.Save(enc, acc.Result()))

	b.Truncate(b.Len() - 8)
	dec, err := archive.NewDecoder(archive.FormatBinary, &b)
	require.NoError(t, err)
	require.Error(t, serialize.Load(dec, &VarResult[float64]{}))
}

func TestTreeRejectsWrongElementType(t *testing.T) {
	acc := NewMeanAcc[float64](2)
	require.NoError(t, acc.Append([]float64{1, 2}))
	tree := serialize.NewTree()
	require.NoError(t, acc.Result().Serialize(tree, "m"))

	err := (&MeanResult[complex128]{}).Deserialize(tree, "m")
	require.True(t, errors.Is(err, serialize.ErrElementType), err)
}

func TestSeveralResultsOneArchive(t *testing.T) {
	mean := NewMeanAcc[float64](1)
	cov := NewCovAcc[complex128](2)
	for i := 0; i < 5; i++ {
		require.NoError(t, mean.Append(float64(i)))
		require.NoError(t, cov.Append([]complex128{complex(float64(i), 1), 2}))
	}

	var b bytes.Buffer
	enc, err := archive.NewEncoder(archive.FormatProtowire, &b)
	require.NoError(t, err)
	s := serialize.NewStream(enc, nil)
	require.NoError(t, mean.Result().Serialize(s, "mean"))
	require.NoError(t, cov.Result().Serialize(s, "cov"))
	require.NoError(t, enc.Flush())

	dec, err := archive.NewDecoder(archive.FormatProtowire, &b)
	require.NoError(t, err)
	d := serialize.NewStream(nil, dec)
	var m MeanResult[float64]
	var c CovResult[complex128]
	require.NoError(t, m.Deserialize(d, "mean"))
	require.NoError(t, c.Deserialize(d, "cov"))
	require.Equal(t, []float64{2}, m.Mean())
	require.Equal(t, cov.Result().Cov(), c.Cov())
}

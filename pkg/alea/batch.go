package alea

import (
	"math"

	"github.com/pkg/errors"
	"github.com/timescale/tsbs-alea/pkg/computed"
	"github.com/timescale/tsbs-alea/pkg/serialize"
)

// ErrBatchCount signals an invalid number of batches.
var ErrBatchCount = errors.New("alea: number of batches must be even and at least 2")

// BatchAcc bins consecutive samples into a fixed number of batches. Once
// every batch holds batchSize samples, neighbouring batches are merged
// pairwise and the batch size doubles, so memory stays constant while the
// batches keep covering the whole stream. Batch means give error estimates
// for autocorrelated series.
type BatchAcc[T computed.Scalar] struct {
	size      int
	count     uint64
	batchSize uint64
	cursor    int
	counts    []uint64
	sums      []T // numBatches x size
}

// NewBatchAcc returns a batching accumulator with numBatches batches.
func NewBatchAcc[T computed.Scalar](size, numBatches int) (*BatchAcc[T], error) {
	if numBatches < 2 || numBatches%2 != 0 {
		return nil, errors.Wrapf(ErrBatchCount, "got %d", numBatches)
	}
	return &BatchAcc[T]{
		size:      size,
		batchSize: 1,
		counts:    make([]uint64, numBatches),
		sums:      make([]T, numBatches*size),
	}, nil
}

func (a *BatchAcc[T]) AleaAccumulator() {}

func (a *BatchAcc[T]) Size() int { return a.size }

func (a *BatchAcc[T]) Count() uint64 { return a.count }

// NumBatches returns the fixed number of batches.
func (a *BatchAcc[T]) NumBatches() int { return len(a.counts) }

// BatchSize returns the number of samples a full batch currently holds.
func (a *BatchAcc[T]) BatchSize() uint64 { return a.batchSize }

func (a *BatchAcc[T]) Add(c computed.Computed[T], count uint64) error {
	if err := checkAdd(a.size, c); err != nil {
		return err
	}
	for k := uint64(0); k < count; k++ {
		if err := c.AddTo(a.slot(a.cursor)); err != nil {
			return err
		}
		a.count++
		a.counts[a.cursor]++
		if a.counts[a.cursor] == a.batchSize {
			a.next()
		}
	}
	return nil
}

func (a *BatchAcc[T]) slot(i int) []T {
	return a.sums[i*a.size : (i+1)*a.size]
}

func (a *BatchAcc[T]) next() {
	a.cursor++
	if a.cursor < len(a.counts) {
		return
	}
	half := len(a.counts) / 2
	for i := 0; i < half; i++ {
		dst, lo, hi := a.slot(i), a.slot(2*i), a.slot(2*i+1)
		for j := range dst {
			dst[j] = lo[j] + hi[j]
		}
		a.counts[i] = a.counts[2*i] + a.counts[2*i+1]
	}
	for i := half; i < len(a.counts); i++ {
		computed.Zero[T](a.slot(i))
		a.counts[i] = 0
	}
	a.batchSize *= 2
	a.cursor = half
}

func (a *BatchAcc[T]) Append(v any) error {
	return Append[T](a, v)
}

func (a *BatchAcc[T]) Result() *BatchResult[T] {
	r := &BatchResult[T]{
		size:   a.size,
		count:  a.count,
		counts: make([]uint64, len(a.counts)),
		sums:   make([]T, len(a.sums)),
	}
	copy(r.counts, a.counts)
	copy(r.sums, a.sums)
	return r
}

func (a *BatchAcc[T]) Finalize() *BatchResult[T] {
	r := a.Result()
	a.Reset()
	return r
}

func (a *BatchAcc[T]) Reset() {
	a.count = 0
	a.batchSize = 1
	a.cursor = 0
	for i := range a.counts {
		a.counts[i] = 0
	}
	computed.Zero[T](a.sums)
}

// BatchResult holds the finalized per-batch sums and counts.
type BatchResult[T computed.Scalar] struct {
	size   int
	count  uint64
	counts []uint64
	sums   []T
}

func (r *BatchResult[T]) Size() int { return r.size }

func (r *BatchResult[T]) Count() uint64 { return r.count }

func (r *BatchResult[T]) NumBatches() int { return len(r.counts) }

// Counts returns the number of samples in every batch.
func (r *BatchResult[T]) Counts() []uint64 { return r.counts }

// Mean returns the overall mean per component.
func (r *BatchResult[T]) Mean() []T {
	total := make([]T, r.size)
	for b := range r.counts {
		for i, s := range r.batch(b) {
			total[i] += s
		}
	}
	if r.count > 0 {
		n := computed.FromFloat[T](float64(r.count))
		for i := range total {
			total[i] /= n
		}
	}
	return total
}

// BatchMeans returns the mean of each non-empty batch, in stream order.
func (r *BatchResult[T]) BatchMeans() [][]T {
	var out [][]T
	for b, c := range r.counts {
		if c == 0 {
			continue
		}
		n := computed.FromFloat[T](float64(c))
		m := make([]T, r.size)
		for i, s := range r.batch(b) {
			m[i] = s / n
		}
		out = append(out, m)
	}
	return out
}

// StdErr returns the jackknife standard error of the mean per component,
// estimated by leaving out one batch at a time. It is NaN with fewer than
// two non-empty batches.
func (r *BatchResult[T]) StdErr() []float64 {
	out := make([]float64, r.size)
	var used []int
	for b, c := range r.counts {
		if c > 0 && c < r.count {
			used = append(used, b)
		}
	}
	m := len(used)
	if m < 2 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	total := make([]T, r.size)
	for b := range r.counts {
		for i, s := range r.batch(b) {
			total[i] += s
		}
	}
	loo := make([][]T, m)
	avg := make([]T, r.size)
	for k, b := range used {
		n := computed.FromFloat[T](float64(r.count - r.counts[b]))
		loo[k] = make([]T, r.size)
		for i, s := range r.batch(b) {
			loo[k][i] = (total[i] - s) / n
			avg[i] += loo[k][i]
		}
	}
	fm := computed.FromFloat[T](float64(m))
	for i := range avg {
		avg[i] /= fm
	}
	for i := range out {
		var ss float64
		for k := range loo {
			ss += computed.AbsSq(loo[k][i] - avg[i])
		}
		out[i] = math.Sqrt(float64(m-1) / float64(m) * ss)
	}
	return out
}

func (r *BatchResult[T]) batch(b int) []T {
	return r.sums[b*r.size : (b+1)*r.size]
}

func (r *BatchResult[T]) Serialize(s serialize.Serializer, key string) error {
	return serialize.Group(s, key, func() error {
		if err := writeHeader(s, r.size, r.count); err != nil {
			return err
		}
		if err := serialize.WriteScalar(s, "@num_batches", uint64(len(r.counts))); err != nil {
			return err
		}
		return serialize.Group(s, "batch", func() error {
			if err := serialize.WriteVector(s, "count", r.counts); err != nil {
				return err
			}
			return serialize.Write(s, "sum", serialize.NewNDView(r.sums, len(r.counts), r.size))
		})
	})
}

func (r *BatchResult[T]) Deserialize(d serialize.Deserializer, key string) error {
	return serialize.Group(d, key, func() error {
		size, count, err := readHeader(d)
		if err != nil {
			return err
		}
		nb, err := readSize(d, "@num_batches")
		if err != nil {
			return err
		}
		if uint64(nb)*uint64(size) > maxSerializedSize {
			return errors.Wrapf(ErrCorruptResult, "%d batches of %d elements", nb, size)
		}
		counts, sums := make([]uint64, nb), make([]T, nb*size)
		err = serialize.Group(d, "batch", func() error {
			if err := serialize.ReadVector(d, "count", counts); err != nil {
				return err
			}
			return serialize.Read(d, "sum", serialize.NewNDView(sums, nb, size))
		})
		if err != nil {
			return err
		}
		r.size, r.count, r.counts, r.sums = size, count, counts, sums
		return nil
	})
}

package alea

import (
	"fmt"
	"io"
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/pkg/errors"
	"github.com/timescale/tsbs-alea/pkg/computed"
	"github.com/timescale/tsbs-alea/pkg/serialize"
)

var (
	// ErrOutOfRange signals a sample outside the configured quantile range.
	ErrOutOfRange = errors.New("alea: sample outside histogram range")
	// ErrQuantileConfig signals an unusable quantile configuration.
	ErrQuantileConfig = errors.New("alea: invalid quantile configuration")
)

// QuantileConfig fixes the range and resolution of a QuantileAcc. Samples
// are mapped to round(x * Scale) and recorded by magnitude, negative and
// non-negative values in separate histograms. Values within 2*10^SigFigs
// units of zero are kept exactly, so the absolute resolution there is
// 1/Scale; further out SigFigs significant digits are kept.
type QuantileConfig struct {
	Min     float64
	Max     float64
	Scale   float64
	SigFigs int
}

// DefaultQuantileConfig accepts [-1e3, 1e3]. It resolves 1e-3 for |x| up
// to about 2 and three significant digits beyond.
var DefaultQuantileConfig = QuantileConfig{Min: -1e3, Max: 1e3, Scale: 1e3, SigFigs: 3}

func (c QuantileConfig) highest() int64 {
	return int64(math.Ceil(math.Max(math.Abs(c.Min), math.Abs(c.Max)) * c.Scale))
}

func (c QuantileConfig) validate() error {
	switch {
	case !(c.Max > c.Min):
		return errors.Wrapf(ErrQuantileConfig, "max %g not above min %g", c.Max, c.Min)
	case !(c.Scale > 0):
		return errors.Wrapf(ErrQuantileConfig, "scale %g", c.Scale)
	case c.SigFigs < 1 || c.SigFigs > 5:
		return errors.Wrapf(ErrQuantileConfig, "significant figures %d not in [1, 5]", c.SigFigs)
	case c.highest() < 2:
		return errors.Wrapf(ErrQuantileConfig, "range [%g, %g] too narrow for scale %g", c.Min, c.Max, c.Scale)
	}
	return nil
}

func (c QuantileConfig) newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(1, c.highest(), c.SigFigs)
}

// signedHist records scaled values by magnitude: neg holds -v for v < 0,
// pos holds v for v >= 0.
type signedHist struct {
	neg, pos *hdrhistogram.Histogram
}

func newSignedHist(c QuantileConfig) signedHist {
	return signedHist{neg: c.newHistogram(), pos: c.newHistogram()}
}

func (h signedHist) record(v, n int64) error {
	if v < 0 {
		return h.neg.RecordValues(-v, n)
	}
	return h.pos.RecordValues(v, n)
}

func (h signedHist) total() int64 {
	return h.neg.TotalCount() + h.pos.TotalCount()
}

func (h signedHist) reset() {
	h.neg.Reset()
	h.pos.Reset()
}

func (h signedHist) clone() signedHist {
	return signedHist{neg: hdrhistogram.Import(h.neg.Export()), pos: hdrhistogram.Import(h.pos.Export())}
}

func (h signedHist) min() int64 {
	if h.neg.TotalCount() > 0 {
		return -h.neg.Max()
	}
	return h.pos.Min()
}

func (h signedHist) max() int64 {
	if h.pos.TotalCount() > 0 {
		return h.pos.Max()
	}
	return -h.neg.Min()
}

// atRank returns the k-th smallest recorded value, 1 <= k <= total().
func (h signedHist) atRank(k int64) int64 {
	negTotal := h.neg.TotalCount()
	if k <= negTotal {
		// the k-th smallest value has the (negTotal-k+1)-th smallest magnitude
		r := negTotal - k + 1
		return -h.neg.ValueAtQuantile(100 * float64(r) / float64(negTotal))
	}
	k -= negTotal
	return h.pos.ValueAtQuantile(100 * float64(k) / float64(h.pos.TotalCount()))
}

// QuantileAcc estimates the distribution of each real component with HDR
// histograms.
type QuantileAcc struct {
	cfg     QuantileConfig
	count   uint64
	hists   []signedHist
	scratch []float64
	scaled  []int64
}

// NewQuantileAcc returns a quantile accumulator for samples of size
// components.
func NewQuantileAcc(size int, cfg QuantileConfig) (*QuantileAcc, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	a := &QuantileAcc{
		cfg:     cfg,
		hists:   make([]signedHist, size),
		scratch: make([]float64, size),
		scaled:  make([]int64, size),
	}
	for i := range a.hists {
		a.hists[i] = newSignedHist(cfg)
	}
	return a, nil
}

func (a *QuantileAcc) AleaAccumulator() {}

func (a *QuantileAcc) Size() int { return len(a.hists) }

func (a *QuantileAcc) Count() uint64 { return a.count }

// Add records the contribution count times. A sample with any component
// outside [Min, Max] is rejected as a whole.
func (a *QuantileAcc) Add(c computed.Computed[float64], count uint64) error {
	if err := checkAdd(len(a.hists), c); err != nil {
		return err
	}
	computed.Zero[float64](a.scratch)
	if err := c.AddTo(a.scratch); err != nil {
		return err
	}
	if count > math.MaxInt64 {
		return errors.Wrapf(ErrOutOfRange, "count %d", count)
	}
	for i, x := range a.scratch {
		if !(x >= a.cfg.Min && x <= a.cfg.Max) {
			return errors.Wrapf(ErrOutOfRange, "component %d = %g not in [%g, %g]", i, x, a.cfg.Min, a.cfg.Max)
		}
		a.scaled[i] = int64(math.Round(x * a.cfg.Scale))
	}
	for i, h := range a.hists {
		if err := h.record(a.scaled[i], int64(count)); err != nil {
			return errors.Wrapf(ErrOutOfRange, "component %d: %v", i, err)
		}
	}
	a.count += count
	return nil
}

func (a *QuantileAcc) Append(v any) error {
	return Append[float64](a, v)
}

func (a *QuantileAcc) Result() *QuantileResult {
	r := &QuantileResult{cfg: a.cfg, count: a.count, hists: make([]signedHist, len(a.hists))}
	for i, h := range a.hists {
		r.hists[i] = h.clone()
	}
	return r
}

func (a *QuantileAcc) Finalize() *QuantileResult {
	r := a.Result()
	a.Reset()
	return r
}

func (a *QuantileAcc) Reset() {
	a.count = 0
	for _, h := range a.hists {
		h.reset()
	}
}

// QuantileResult holds the finalized per-component histograms.
type QuantileResult struct {
	cfg   QuantileConfig
	count uint64
	hists []signedHist
}

func (r *QuantileResult) Size() int { return len(r.hists) }

func (r *QuantileResult) Count() uint64 { return r.count }

func (r *QuantileResult) Config() QuantileConfig { return r.cfg }

func (r *QuantileResult) unscale(v int64) float64 {
	return float64(v) / r.cfg.Scale
}

// Quantile returns the q-quantile, q in [0, 1], of component i. It is NaN
// when nothing was recorded.
func (r *QuantileResult) Quantile(i int, q float64) float64 {
	h := r.hists[i]
	total := h.total()
	switch {
	case total == 0:
		return math.NaN()
	case q <= 0:
		return r.unscale(h.min())
	case q >= 1:
		return r.unscale(h.max())
	}
	k := int64(q*float64(total) + 0.5)
	if k < 1 {
		k = 1
	} else if k > total {
		k = total
	}
	return r.unscale(h.atRank(k))
}

// Quantiles returns the q-quantile of every component.
func (r *QuantileResult) Quantiles(q float64) []float64 {
	out := make([]float64, len(r.hists))
	for i := range r.hists {
		out[i] = r.Quantile(i, q)
	}
	return out
}

// Median returns the median of every component.
func (r *QuantileResult) Median() []float64 {
	return r.Quantiles(0.5)
}

// WritePercentiles writes the percentile distributions of component i in the
// HdrHistogram text format, the magnitudes of negative values first.
func (r *QuantileResult) WritePercentiles(w io.Writer, i int) error {
	h := r.hists[i]
	parts := []struct {
		title string
		hist  *hdrhistogram.Histogram
	}{
		{"negative values (magnitude)", h.neg},
		{"non-negative values", h.pos},
	}
	for _, p := range parts {
		if p.hist.TotalCount() == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "# %s\n", p.title); err != nil {
			return err
		}
		if _, err := p.hist.PercentilesPrint(w, 5, r.cfg.Scale); err != nil {
			return err
		}
	}
	return nil
}

func (r *QuantileResult) Serialize(s serialize.Serializer, key string) error {
	return serialize.Group(s, key, func() error {
		if err := writeHeader(s, len(r.hists), r.count); err != nil {
			return err
		}
		cfg := []float64{r.cfg.Min, r.cfg.Max, r.cfg.Scale}
		if err := serialize.WriteVector(s, "config", cfg); err != nil {
			return err
		}
		if err := serialize.WriteScalar(s, "sigfigs", int64(r.cfg.SigFigs)); err != nil {
			return err
		}
		var counts []int64
		width := len(r.cfg.newHistogram().Export().Counts)
		for _, h := range r.hists {
			counts = append(counts, h.neg.Export().Counts...)
			counts = append(counts, h.pos.Export().Counts...)
		}
		if err := serialize.WriteScalar(s, "@counts_len", uint64(width)); err != nil {
			return err
		}
		return serialize.Group(s, "hist", func() error {
			return serialize.Write(s, "counts", serialize.NewNDView(counts, len(r.hists), 2, width))
		})
	})
}

func (r *QuantileResult) Deserialize(d serialize.Deserializer, key string) error {
	return serialize.Group(d, key, func() error {
		size, count, err := readHeader(d)
		if err != nil {
			return err
		}
		cfgv := make([]float64, 3)
		if err := serialize.ReadVector(d, "config", cfgv); err != nil {
			return err
		}
		sigfigs, err := serialize.ReadScalar[int64](d, "sigfigs")
		if err != nil {
			return err
		}
		cfg := QuantileConfig{Min: cfgv[0], Max: cfgv[1], Scale: cfgv[2], SigFigs: int(sigfigs)}
		if err := cfg.validate(); err != nil {
			return errors.Wrap(ErrCorruptResult, err.Error())
		}
		width, err := readSize(d, "@counts_len")
		if err != nil {
			return err
		}
		if want := len(cfg.newHistogram().Export().Counts); width != want {
			return errors.Wrapf(ErrCorruptResult, "%d buckets, expected %d", width, want)
		}
		if 2*uint64(width)*uint64(size) > maxSerializedSize {
			return errors.Wrapf(ErrCorruptResult, "%d histogram pairs of %d buckets", size, width)
		}
		counts := make([]int64, size*2*width)
		err = serialize.Group(d, "hist", func() error {
			return serialize.Read(d, "counts", serialize.NewNDView(counts, size, 2, width))
		})
		if err != nil {
			return err
		}
		load := func(j int) *hdrhistogram.Histogram {
			return hdrhistogram.Import(&hdrhistogram.Snapshot{
				LowestTrackableValue:  1,
				HighestTrackableValue: cfg.highest(),
				SignificantFigures:    int64(cfg.SigFigs),
				Counts:                counts[j*width : (j+1)*width],
			})
		}
		hists := make([]signedHist, size)
		for i := range hists {
			hists[i] = signedHist{neg: load(2 * i), pos: load(2*i + 1)}
		}
		r.cfg, r.count, r.hists = cfg, count, hists
		return nil
	})
}

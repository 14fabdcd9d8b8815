// Package processor feeds samples from a channel into an accumulator,
// printing progress at regular intervals.
package processor

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/timescale/tsbs-alea/pkg/alea"
	"github.com/timescale/tsbs-alea/pkg/computed"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Args configures a Processor.
type Args struct {
	Limit         uint64 // Limit is the number of samples to accumulate before ignoring the rest; 0 means no limit
	BurnIn        uint64 // BurnIn is the number of leading samples to discard
	PrintInterval uint64 // PrintInterval is how often, in accumulated samples, progress is printed; 0 disables it

	// Out receives progress reports; defaults to os.Stderr.
	Out io.Writer
	// Report, when set, is called after every progress line to print the
	// current estimate.
	Report func(w io.Writer) error
	// Logger defaults to a no-op logger.
	Logger *zap.SugaredLogger
}

// Processor owns an accumulator and appends every sample sent to it from a
// single goroutine.
type Processor[T computed.Scalar] struct {
	args Args
	acc  alea.Accumulator[T]
	c    chan []T
	wg   sync.WaitGroup
	err  error

	opsCount  atomic.Uint64 // samples received
	usedCount atomic.Uint64 // samples accumulated
	startTime time.Time
}

// New returns a processor appending to acc. Call Start before Send.
func New[T computed.Scalar](acc alea.Accumulator[T], args Args) *Processor[T] {
	if args.Out == nil {
		args.Out = os.Stderr
	}
	if args.Logger == nil {
		args.Logger = zap.NewNop().Sugar()
	}
	return &Processor[T]{args: args, acc: acc}
}

// Start launches the processing goroutine with a channel of the given
// buffer size.
func (p *Processor[T]) Start(buffer int) {
	p.c = make(chan []T, buffer)
	p.startTime = time.Now()
	p.wg.Add(1)
	go p.process()
}

// Send queues samples. The processor keeps ownership of each slice until it
// is appended.
func (p *Processor[T]) Send(samples ...[]T) {
	for _, s := range samples {
		p.c <- s
	}
}

// Full reports whether the limit has been reached. Senders may stop early;
// further samples are drained and ignored.
func (p *Processor[T]) Full() bool {
	return p.args.Limit > 0 && p.usedCount.Load() >= p.args.Limit
}

// Ops returns the number of samples received so far, burn-in included.
func (p *Processor[T]) Ops() uint64 { return p.opsCount.Load() }

// Used returns the number of samples accumulated so far.
func (p *Processor[T]) Used() uint64 { return p.usedCount.Load() }

// CloseAndWait stops accepting samples, waits for the queue to drain and
// returns the first append error.
func (p *Processor[T]) CloseAndWait() error {
	close(p.c)
	p.wg.Wait()
	return p.err
}

func (p *Processor[T]) process() {
	defer p.wg.Done()
	log := p.args.Logger
	prevTime := p.startTime
	prevCount := uint64(0)

	for sample := range p.c {
		i := p.opsCount.Inc()
		if i <= p.args.BurnIn {
			if i == p.args.BurnIn {
				log.Infow("burn-in complete", "samples", p.args.BurnIn)
			}
			continue
		}
		if p.err != nil || p.Full() {
			continue
		}
		if err := alea.AppendSlice(p.acc, sample); err != nil {
			p.err = errors.Wrapf(err, "sample %d", i)
			log.Errorw("cannot accumulate sample", "sample", i, "error", err)
			continue
		}
		used := p.usedCount.Inc()

		if p.args.PrintInterval > 0 && used%p.args.PrintInterval == 0 {
			now := time.Now()
			intervalRate := float64(used-prevCount) / now.Sub(prevTime).Seconds()
			overallRate := float64(used) / now.Sub(p.startTime).Seconds()
			if err := p.progress(used, intervalRate, overallRate); err != nil {
				log.Warnw("cannot print progress", "error", err)
			}
			prevCount, prevTime = used, now
		}
	}

	took := time.Since(p.startTime)
	log.Infow("run complete",
		"received", p.opsCount.Load(),
		"accumulated", p.usedCount.Load(),
		"took", took,
		"rate", float64(p.usedCount.Load())/took.Seconds(),
	)
}

func (p *Processor[T]) progress(used uint64, intervalRate, overallRate float64) error {
	_, err := fmt.Fprintf(p.args.Out, "After %d samples:\nInterval rate: %0.2f samples/sec\tOverall rate: %0.2f samples/sec\n",
		used, intervalRate, overallRate)
	if err != nil {
		return err
	}
	if p.args.Report != nil {
		if err := p.args.Report(p.args.Out); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(p.args.Out, "\n")
	return err
}

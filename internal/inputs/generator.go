package inputs

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Error messages when using a SampleGenerator
const (
	ErrNoConfig = "no GeneratorConfig provided"

	errSizeZero  = "sample size has to be greater than 0"
	errSigmaFmt  = "sigma has to be positive, got %g"
	errRhoFmt    = "rho has to be in (-1, 1), got %g"
	errCountZero = "count has to be greater than 0"
	defaultSigma = 1.0
	defaultCount = 1000
	defaultSize  = 1
)

// GeneratorConfig describes a synthetic stream of samples. Each component
// follows an AR(1) process around Mean with stationary deviation Sigma and
// lag-one correlation Rho; complex samples draw the real and imaginary parts
// independently.
type GeneratorConfig struct {
	Size    int     `mapstructure:"size"`
	Count   uint64  `mapstructure:"count"`
	Seed    int64   `mapstructure:"seed"`
	Mean    float64 `mapstructure:"mean"`
	Sigma   float64 `mapstructure:"sigma"`
	Rho     float64 `mapstructure:"rho"`
	Complex bool    `mapstructure:"complex"`
	File    string  `mapstructure:"file"`
}

// Validate checks that the values of the GeneratorConfig are reasonable.
func (c *GeneratorConfig) Validate() error {
	if c.Size < 1 {
		return fmt.Errorf(errSizeZero)
	}
	if c.Count == 0 {
		return fmt.Errorf(errCountZero)
	}
	if !(c.Sigma > 0) {
		return fmt.Errorf(errSigmaFmt, c.Sigma)
	}
	if !(c.Rho > -1 && c.Rho < 1) {
		return fmt.Errorf(errRhoFmt, c.Rho)
	}
	return nil
}

func (c *GeneratorConfig) AddToFlagSet(fs *pflag.FlagSet) {
	fs.Int("size", defaultSize, "Number of components per sample")
	fs.Uint64("count", defaultCount, "Number of samples to generate")
	fs.Int64("seed", 0, "PRNG seed (default: 0, which uses the current timestamp)")
	fs.Float64("mean", 0, "Mean of every component")
	fs.Float64("sigma", defaultSigma, "Standard deviation of every component")
	fs.Float64("rho", 0, "Lag-one autocorrelation of every component")
	fs.Bool("complex", false, "Generate complex samples")
	fs.String("file", "", "Write the output to this path; a .sz suffix compresses it. Default is STDOUT")
}

// SampleGenerator writes synthetic samples in the text layout SampleReader
// reads.
type SampleGenerator struct {
	// Out is the writer where samples should be written. If nil, it will be
	// os.Stdout unless File is specified in the GeneratorConfig passed to
	// Generate.
	Out io.Writer

	config *GeneratorConfig
	bufOut *bufio.Writer
	closer io.Closer
}

func (g *SampleGenerator) init(config *GeneratorConfig) error {
	if config == nil {
		return fmt.Errorf(ErrNoConfig)
	}
	if err := config.Validate(); err != nil {
		return err
	}
	g.config = config
	if g.Out == nil {
		g.Out = os.Stdout
	}
	var err error
	g.bufOut, g.closer, err = getBufferedWriter(g.config.File, g.Out)
	return err
}

// Generate writes config.Count samples.
func (g *SampleGenerator) Generate(config *GeneratorConfig) error {
	if err := g.init(config); err != nil {
		return err
	}
	err := g.run()
	if flushErr := g.bufOut.Flush(); err == nil {
		err = flushErr
	}
	if closeErr := g.closer.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (g *SampleGenerator) run() error {
	c := g.config
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	noise := distuv.Normal{
		Mu:    0,
		Sigma: c.Sigma * math.Sqrt(1-c.Rho*c.Rho),
		Src:   rand.NewSource(uint64(seed)),
	}
	parts := 1
	if c.Complex {
		parts = 2
	}
	state := make([]float64, c.Size*parts)
	start := distuv.Normal{Mu: 0, Sigma: c.Sigma, Src: noise.Src}
	for i := range state {
		state[i] = start.Rand()
	}

	buf := make([]byte, 0, 64)
	for n := uint64(0); n < c.Count; n++ {
		buf = buf[:0]
		for i := 0; i < c.Size; i++ {
			if i > 0 {
				buf = append(buf, ' ')
			}
			if c.Complex {
				re, im := c.Mean+state[2*i], state[2*i+1]
				buf = append(buf, strconv.FormatComplex(complex(re, im), 'g', -1, 128)...)
			} else {
				buf = strconv.AppendFloat(buf, c.Mean+state[i], 'g', -1, 64)
			}
		}
		buf = append(buf, '\n')
		if _, err := g.bufOut.Write(buf); err != nil {
			return err
		}
		for i := range state {
			state[i] = c.Rho*state[i] + noise.Rand()
		}
	}
	return nil
}

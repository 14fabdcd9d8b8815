package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/timescale/tsbs-alea/internal/utils"
	"github.com/timescale/tsbs-alea/pkg/alea"
	"github.com/timescale/tsbs-alea/pkg/archive"
)

// Estimators that can be selected with --estimator
const (
	EstimatorMean     = "mean"
	EstimatorVar      = "var"
	EstimatorElliptic = "elliptic"
	EstimatorCov      = "cov"
	EstimatorBatch    = "batch"
	EstimatorQuantile = "quantile"

	// FormatYAML persists results as a grouped, shape-aware YAML tree instead
	// of a token archive.
	FormatYAML = "yaml"
)

const (
	errEllipticRealFmt  = "estimator %s needs --complex"
	errQuantileComplex  = "estimator quantile only supports real samples"
	errBatchesFmt       = "--batches has to be even and at least 2, got %d"
	errCompressYAML     = "--compress cannot be combined with the yaml format"
	errChannelCapacity0 = "--channel-capacity has to be greater than 0"
)

func estimators() []string {
	return []string{
		EstimatorMean,
		EstimatorVar,
		EstimatorElliptic,
		EstimatorCov,
		EstimatorBatch,
		EstimatorQuantile,
	}
}

func resultFormats() []string {
	return append(archive.SupportedFormats(), FormatYAML)
}

// ResultConfig names how a result is stored. It is shared by accumulate,
// which writes results, and show, which reads them back.
type ResultConfig struct {
	Estimator string `mapstructure:"estimator"`
	Complex   bool   `mapstructure:"complex"`
	Format    string `mapstructure:"format"`
	Compress  bool   `mapstructure:"compress"`
}

func (c *ResultConfig) Validate() error {
	if err := utils.ValidateChoice("estimator", c.Estimator, estimators()); err != nil {
		return err
	}
	if err := utils.ValidateChoice("format", c.Format, resultFormats()); err != nil {
		return err
	}
	if c.Estimator == EstimatorElliptic && !c.Complex {
		return fmt.Errorf(errEllipticRealFmt, c.Estimator)
	}
	if c.Estimator == EstimatorQuantile && c.Complex {
		return fmt.Errorf(errQuantileComplex)
	}
	if c.Compress && c.Format == FormatYAML {
		return fmt.Errorf(errCompressYAML)
	}
	return nil
}

func addResultFlags(fs *pflag.FlagSet) {
	fs.String("estimator", EstimatorVar, "estimator to use, valid: "+strings.Join(estimators(), ", "))
	fs.Bool("complex", false, "samples are complex numbers such as 1+2i")
	fs.String("format", archive.FormatBinary, "result format, valid: "+strings.Join(resultFormats(), ", "))
	fs.Bool("compress", false, "wrap the result archive in a snappy stream")
}

// QuantileConfig mirrors alea.QuantileConfig for configuration files.
type QuantileConfig struct {
	Min     float64 `mapstructure:"min"`
	Max     float64 `mapstructure:"max"`
	Scale   float64 `mapstructure:"scale"`
	SigFigs int     `mapstructure:"sigfigs"`
}

func (c QuantileConfig) internal() alea.QuantileConfig {
	return alea.QuantileConfig{Min: c.Min, Max: c.Max, Scale: c.Scale, SigFigs: c.SigFigs}
}

// AccumulateConfig is the configuration of the accumulate command.
type AccumulateConfig struct {
	ResultConfig    `mapstructure:",squash"`
	Input           string         `mapstructure:"input"`
	Save            string         `mapstructure:"save"`
	Batches         int            `mapstructure:"batches"`
	BurnIn          uint64         `mapstructure:"burn-in"`
	Limit           uint64         `mapstructure:"limit"`
	PrintInterval   uint64         `mapstructure:"print-interval"`
	ChannelCapacity int            `mapstructure:"channel-capacity"`
	ProfileFile     string         `mapstructure:"profile-file"`
	Quantile        QuantileConfig `mapstructure:"quantile"`
}

// Validate checks that the values of the AccumulateConfig are reasonable.
func (c *AccumulateConfig) Validate() error {
	if err := c.ResultConfig.Validate(); err != nil {
		return err
	}
	if c.Estimator == EstimatorBatch && (c.Batches < 2 || c.Batches%2 != 0) {
		return fmt.Errorf(errBatchesFmt, c.Batches)
	}
	if c.ChannelCapacity < 1 {
		return fmt.Errorf(errChannelCapacity0)
	}
	return nil
}

func addAccumulateFlags(fs *pflag.FlagSet) {
	addResultFlags(fs)
	fs.String("input", "", "file to read samples from, one per line; '-' or empty reads STDIN, a .sz suffix is decompressed")
	fs.String("save", "", "file to persist the final result to")
	fs.Int("batches", 16, "number of batches of the batch estimator")
	fs.Uint64("burn-in", 0, "number of leading samples to discard")
	fs.Uint64("limit", 0, "number of samples to accumulate (0 = all of them)")
	fs.Uint64("print-interval", 0, "print the current estimate every N samples (0 = never)")
	fs.Int("channel-capacity", 1024, "number of parsed samples buffered ahead of the accumulator")
	fs.String("profile-file", "", "file to write CPU and memory usage of this process to, once per second")

	d := alea.DefaultQuantileConfig
	fs.Float64("quantile.min", d.Min, "smallest value the quantile estimator accepts")
	fs.Float64("quantile.max", d.Max, "largest value the quantile estimator accepts")
	fs.Float64("quantile.scale", d.Scale, "values are multiplied by this factor and rounded before being recorded")
	fs.Int("quantile.sigfigs", d.SigFigs, "significant decimal digits kept by the quantile histograms")
}

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/blagojts/viper"
	"github.com/spf13/cobra"
	"github.com/timescale/tsbs-alea/internal/inputs"
	"github.com/timescale/tsbs-alea/internal/utils"
	"github.com/timescale/tsbs-alea/pkg/alea"
	"github.com/timescale/tsbs-alea/pkg/computed"
	"github.com/timescale/tsbs-alea/pkg/processor"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const errNoSamples = "input contains no samples"

func initAccumulateCMD() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accumulate",
		Short: "Read samples line by line and accumulate them into an estimator",
		RunE:  accumulate,
	}
	addAccumulateFlags(cmd.Flags())
	return cmd
}

func accumulate(cmd *cobra.Command, _ []string) (err error) {
	v := viper.New()
	used, err := utils.SetupConfigFile(v, cmd.Flags(), cfgFile)
	if err != nil {
		return err
	}
	var conf AccumulateConfig
	if err := v.Unmarshal(&conf); err != nil {
		return fmt.Errorf("unable to decode config: %s", err)
	}
	if err := conf.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if used != "" {
		logger.Debugw("using config file", "file", used)
	}

	if conf.ProfileFile != "" {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go profileCPUAndMem(ctx, conf.ProfileFile, logger)
	}

	in, err := inputs.OpenInput(conf.Input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, in.Close()) }()

	res, err := runAccumulate(&conf, in, cmd.ErrOrStderr(), logger)
	if err != nil {
		return err
	}
	if conf.Save != "" {
		if err := saveResult(conf.Save, &conf.ResultConfig, res); err != nil {
			return err
		}
		logger.Infow("result saved", "file", conf.Save, "format", conf.Format)
	}
	return writeSummary(cmd.OutOrStdout(), res)
}

// runAccumulate feeds every sample read from in to the configured estimator
// and returns its final result. Progress goes to progress.
func runAccumulate(conf *AccumulateConfig, in io.Reader, progress io.Writer, logger *zap.SugaredLogger) (alea.Result, error) {
	if conf.Complex {
		return accumulateSamples[complex128](conf, in, progress, logger)
	}
	return accumulateSamples[float64](conf, in, progress, logger)
}

func accumulateSamples[T computed.Scalar](conf *AccumulateConfig, in io.Reader, progress io.Writer, logger *zap.SugaredLogger) (alea.Result, error) {
	rd := inputs.NewSampleReader[T](in)
	first, err := rd.Next()
	if err == io.EOF {
		return nil, fmt.Errorf(errNoSamples)
	} else if err != nil {
		return nil, err
	}

	est, err := newEstimator[T](conf, len(first))
	if err != nil {
		return nil, err
	}
	logger.Infow("accumulating",
		"estimator", conf.Estimator,
		"element", computed.TypeName[T](),
		"size", len(first),
	)

	p := processor.New[T](est.acc, processor.Args{
		Limit:         conf.Limit,
		BurnIn:        conf.BurnIn,
		PrintInterval: conf.PrintInterval,
		Out:           progress,
		Report:        func(w io.Writer) error { return writeSummary(w, est.result()) },
		Logger:        logger,
	})
	p.Start(conf.ChannelCapacity)
	p.Send(first)

	var readErr error
	for !p.Full() {
		sample, err := rd.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			readErr = err
			break
		}
		p.Send(sample)
	}
	if err := multierr.Append(readErr, p.CloseAndWait()); err != nil {
		return nil, err
	}
	return est.result(), nil
}

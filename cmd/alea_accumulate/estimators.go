package main

import (
	"fmt"

	"github.com/timescale/tsbs-alea/pkg/alea"
	"github.com/timescale/tsbs-alea/pkg/computed"
)

// estimator couples an accumulator with a way to read its current result.
type estimator[T computed.Scalar] struct {
	acc    alea.Accumulator[T]
	result func() alea.Result
}

func newEstimator[T computed.Scalar](conf *AccumulateConfig, size int) (*estimator[T], error) {
	switch conf.Estimator {
	case EstimatorMean:
		a := alea.NewMeanAcc[T](size)
		return &estimator[T]{acc: a, result: func() alea.Result { return a.Result() }}, nil
	case EstimatorVar:
		a := alea.NewVarAcc[T](size)
		return &estimator[T]{acc: a, result: func() alea.Result { return a.Result() }}, nil
	case EstimatorCov:
		a := alea.NewCovAcc[T](size)
		return &estimator[T]{acc: a, result: func() alea.Result { return a.Result() }}, nil
	case EstimatorBatch:
		a, err := alea.NewBatchAcc[T](size, conf.Batches)
		if err != nil {
			return nil, err
		}
		return &estimator[T]{acc: a, result: func() alea.Result { return a.Result() }}, nil
	case EstimatorElliptic:
		a := alea.NewEllipticVarAcc(size)
		acc, ok := any(a).(alea.Accumulator[T])
		if !ok {
			return nil, fmt.Errorf(errEllipticRealFmt, conf.Estimator)
		}
		return &estimator[T]{acc: acc, result: func() alea.Result { return a.Result() }}, nil
	case EstimatorQuantile:
		a, err := alea.NewQuantileAcc(size, conf.Quantile.internal())
		if err != nil {
			return nil, err
		}
		acc, ok := any(a).(alea.Accumulator[T])
		if !ok {
			return nil, fmt.Errorf(errQuantileComplex)
		}
		return &estimator[T]{acc: acc, result: func() alea.Result { return a.Result() }}, nil
	}
	return nil, fmt.Errorf("unknown estimator %q", conf.Estimator)
}

// newResult returns an empty result of the kind conf describes, ready to be
// restored from an archive.
func newResult(conf *ResultConfig) (alea.Result, error) {
	if conf.Complex {
		return emptyResult[complex128](conf.Estimator)
	}
	return emptyResult[float64](conf.Estimator)
}

func emptyResult[T computed.Scalar](name string) (alea.Result, error) {
	switch name {
	case EstimatorMean:
		return &alea.MeanResult[T]{}, nil
	case EstimatorVar:
		return &alea.VarResult[T]{}, nil
	case EstimatorCov:
		return &alea.CovResult[T]{}, nil
	case EstimatorBatch:
		return &alea.BatchResult[T]{}, nil
	case EstimatorElliptic:
		return &alea.EllipticVarResult{}, nil
	case EstimatorQuantile:
		return &alea.QuantileResult{}, nil
	}
	return nil, fmt.Errorf("unknown estimator %q", name)
}

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/timescale/tsbs-alea/pkg/archive"
)

func validConfig() AccumulateConfig {
	return AccumulateConfig{
		ResultConfig:    ResultConfig{Estimator: EstimatorVar, Format: archive.FormatBinary},
		Batches:         16,
		ChannelCapacity: 1,
	}
}

func TestAccumulateConfigValidate(t *testing.T) {
	cases := []struct {
		desc    string
		change  func(c *AccumulateConfig)
		wantErr string
	}{
		{desc: "defaults", change: func(c *AccumulateConfig) {}},
		{
			desc:    "unknown estimator",
			change:  func(c *AccumulateConfig) { c.Estimator = "median" },
			wantErr: `unknown estimator "median"`,
		},
		{
			desc:    "unknown format",
			change:  func(c *AccumulateConfig) { c.Format = "json" },
			wantErr: `unknown format "json"`,
		},
		{
			desc:    "elliptic on real samples",
			change:  func(c *AccumulateConfig) { c.Estimator = EstimatorElliptic },
			wantErr: "estimator elliptic needs --complex",
		},
		{
			desc: "elliptic on complex samples",
			change: func(c *AccumulateConfig) {
				c.Estimator = EstimatorElliptic
				c.Complex = true
			},
		},
		{
			desc: "quantile on complex samples",
			change: func(c *AccumulateConfig) {
				c.Estimator = EstimatorQuantile
				c.Complex = true
			},
			wantErr: errQuantileComplex,
		},
		{
			desc: "compressed yaml",
			change: func(c *AccumulateConfig) {
				c.Format = FormatYAML
				c.Compress = true
			},
			wantErr: errCompressYAML,
		},
		{
			desc: "odd batches",
			change: func(c *AccumulateConfig) {
				c.Estimator = EstimatorBatch
				c.Batches = 3
			},
			wantErr: "--batches has to be even and at least 2, got 3",
		},
		{
			desc:   "batches ignored by other estimators",
			change: func(c *AccumulateConfig) { c.Batches = 3 },
		},
		{
			desc:    "no channel capacity",
			change:  func(c *AccumulateConfig) { c.ChannelCapacity = 0 },
			wantErr: errChannelCapacity0,
		},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			conf := validConfig()
			c.change(&conf)
			err := conf.Validate()
			if c.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), c.wantErr)
		})
	}
}

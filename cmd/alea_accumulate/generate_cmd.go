package main

import (
	"fmt"

	"github.com/blagojts/viper"
	"github.com/spf13/cobra"
	"github.com/timescale/tsbs-alea/internal/inputs"
	"github.com/timescale/tsbs-alea/internal/utils"
)

func initGenerateCMD() *cobra.Command {
	var config inputs.GeneratorConfig
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic AR(1) samples in the format accumulate reads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.New()
			if _, err := utils.SetupConfigFile(v, cmd.Flags(), cfgFile); err != nil {
				return err
			}
			if err := v.Unmarshal(&config); err != nil {
				return fmt.Errorf("unable to decode config: %s", err)
			}
			gen := &inputs.SampleGenerator{Out: cmd.OutOrStdout()}
			return gen.Generate(&config)
		},
	}
	config.AddToFlagSet(cmd.Flags())
	return cmd
}

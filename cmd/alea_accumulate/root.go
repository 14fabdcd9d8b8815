package main

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	rootCmd = &cobra.Command{
		Use:          "alea_accumulate",
		Short:        "Accumulate sample streams into statistical estimators",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log at debug level in a human readable format")
	rootCmd.AddCommand(initAccumulateCMD())
	rootCmd.AddCommand(initShowCMD())
	rootCmd.AddCommand(initGenerateCMD())
}

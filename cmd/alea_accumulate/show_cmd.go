package main

import (
	"fmt"
	"io"

	"github.com/blagojts/viper"
	"github.com/spf13/cobra"
	"github.com/timescale/tsbs-alea/internal/utils"
	"github.com/timescale/tsbs-alea/pkg/alea"
)

func initShowCMD() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [result file]",
		Short: "Print a result saved by accumulate",
		Args:  cobra.ExactArgs(1),
		RunE:  show,
	}
	addResultFlags(cmd.Flags())
	cmd.Flags().Bool("percentiles", false, "print the full percentile distribution of quantile results")
	return cmd
}

func show(cmd *cobra.Command, args []string) error {
	v := viper.New()
	if _, err := utils.SetupConfigFile(v, cmd.Flags(), cfgFile); err != nil {
		return err
	}
	var conf ResultConfig
	if err := v.Unmarshal(&conf); err != nil {
		return fmt.Errorf("unable to decode config: %s", err)
	}
	if err := conf.Validate(); err != nil {
		return err
	}

	res, err := loadResult(args[0], &conf)
	if err != nil {
		return fmt.Errorf("cannot load %s: %w", args[0], err)
	}
	out := cmd.OutOrStdout()
	if err := writeSummary(out, res); err != nil {
		return err
	}
	if v.GetBool("percentiles") {
		return writePercentiles(out, res)
	}
	return nil
}

func writePercentiles(w io.Writer, r alea.Result) error {
	q, ok := r.(*alea.QuantileResult)
	if !ok {
		return fmt.Errorf("--percentiles needs a quantile result, got %T", r)
	}
	for i := 0; i < q.Size(); i++ {
		if _, err := fmt.Fprintf(w, "\nComponent %d:\n", i); err != nil {
			return err
		}
		if err := q.WritePercentiles(w, i); err != nil {
			return err
		}
	}
	return nil
}

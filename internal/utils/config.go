package utils

import (
	"github.com/blagojts/viper"
	"github.com/spf13/pflag"
)

// SetupConfigFile binds fs to v and reads the configuration file: file when
// set, ./config.yaml otherwise. A missing ./config.yaml is not an error. It
// returns the file actually used, if any.
func SetupConfigFile(v *viper.Viper, fs *pflag.FlagSet, file string) (string, error) {
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return "", err
		}
	}
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// Ignore error if config file not found.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return "", err
		}
		return "", nil
	}
	return v.ConfigFileUsed(), nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the reader's Viper-backed configuration: the sibling
// output directory default and the log verbosity default, both
// overridable via CHAINBREAKER_* environment variables or a
// chainbreaker-config.yaml file.
type Config struct {
	OutputDir string `mapstructure:"output_dir"`
	LogLevel  string `mapstructure:"log_level"`
}

// LoadConfig loads the reader's configuration using Viper, mirroring the
// teacher's LoadDMGConfig: config file search paths, hard-coded defaults,
// then environment-variable overrides.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("chainbreaker-config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("$HOME/.chainbreaker")
	viper.AddConfigPath("/etc/chainbreaker")

	viper.SetDefault("output_dir", "")
	viper.SetDefault("log_level", "warn")

	viper.SetEnvPrefix("CHAINBREAKER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

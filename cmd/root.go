package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "crisp"
)

type Config struct {
	StateFile string        `mapstructure:"state-file"`
	Oracle    *OracleConfig `mapstructure:"oracle"`
}

type OracleConfig struct {
	Provider          string        `mapstructure:"provider"`
	GenerationTimeout string        `mapstructure:"generation-timeout"`
	GenerationRetries int           `mapstructure:"generation-retries"`
	JudgeTimeout      string        `mapstructure:"judge-timeout"`
	JudgeRetries      int           `mapstructure:"judge-retries"`
	Gemini            *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "crisp is a resume-based mock interview cli with AI question generation and scoring",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is crisp.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	viper.SetDefault("state-file", "crisp-state.json")
	viper.SetDefault("oracle.provider", "gemini")
	viper.SetDefault("oracle.generation-timeout", "12s")
	viper.SetDefault("oracle.generation-retries", 2)
	viper.SetDefault("oracle.judge-timeout", "10s")
	viper.SetDefault("oracle.judge-retries", 1)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// The config file is optional: defaults and flags are enough to run.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

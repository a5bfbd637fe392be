package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/cv-matcher/internal/ai/gemini"
	"github.com/spigell/cv-matcher/internal/filtering"
)

const (
	app = "cv-matcher"
)

type Config struct {
	Candidates   string          `mapstructure:"candidates"`
	Requirements string          `mapstructure:"requirements"`
	Text         string          `mapstructure:"text"`
	ExcludeFile  string          `mapstructure:"exclude-file"`
	Matching     *MatchingConfig `mapstructure:"matching"`
	AI           *AIConfig       `mapstructure:"ai"`
	Export       *ExportConfig   `mapstructure:"export"`
}

type MatchingConfig struct {
	MinScore     int      `mapstructure:"min-score"`
	Workers      int      `mapstructure:"workers"`
	Vocabulary   []string `mapstructure:"vocabulary"`
	RoleKeywords []string `mapstructure:"role-keywords"`
}

type AIConfig struct {
	Enabled  bool                    `mapstructure:"enabled"`
	Provider string                  `mapstructure:"provider"`
	Timeout  time.Duration           `mapstructure:"timeout"`
	Delay    time.Duration           `mapstructure:"delay"`
	Gemini   *GeminiConfig           `mapstructure:"gemini"`
	Prompt   *gemini.PromptOverrides `mapstructure:"prompt"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key" json:"-"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type ExportConfig struct {
	Path string `mapstructure:"path"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "cv-matcher ranks candidates against job requirements with an explainable skill score",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", gemini.DefaultModel)
	viper.SetDefault("ai.timeout", filtering.DefaultAITimeout)
	viper.SetDefault("ai.delay", filtering.DefaultAIDelay)
	viper.SetDefault("matching.min-score", filtering.DefaultMinScore)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is cv-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Without an explicit --config every setting can come from flags.
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

	if config == nil {
		config = &Config{}
	}
	if config.Matching == nil {
		config.Matching = &MatchingConfig{}
	}
	if config.Export == nil {
		config.Export = &ExportConfig{}
	}

	return config, nil
}

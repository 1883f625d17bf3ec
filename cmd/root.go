package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/cv-ranker/internal/resilience"
	"github.com/spigell/cv-ranker/internal/store"
	"github.com/spigell/cv-ranker/internal/tiebreak"
)

const (
	app = "cv-ranker"
)

type Config struct {
	Workers            int            `mapstructure:"workers" validate:"gte=0"`
	JobDescriptionFile string         `mapstructure:"job-description-file"`
	Oracle             OracleConfig   `mapstructure:"oracle"`
	TieBreak           TieBreakConfig `mapstructure:"tie-break"`
	Store              store.Config   `mapstructure:"store"`
	Metrics            MetricsConfig  `mapstructure:"metrics"`
}

type OracleConfig struct {
	Provider          string            `mapstructure:"provider" validate:"omitempty,oneof=gemini openai"`
	Timeout           time.Duration     `mapstructure:"timeout" validate:"gte=0"`
	RequestsPerMinute float64           `mapstructure:"requests-per-minute" validate:"gte=0"`
	MaxLogLength      int               `mapstructure:"max-log-length" validate:"gte=0"`
	Retry             resilience.Config `mapstructure:"retry"`
	// Options are provider specific, see ProviderOptions.
	Options map[string]any `mapstructure:"options"`
}

type TieBreakConfig struct {
	Spread float64 `mapstructure:"spread" validate:"gte=0"`
	Seed   uint64  `mapstructure:"seed"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

var (
	// Used for flags.
	cfgFile string
	envFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "cv-ranker scores résumés against a job description with an LLM and ranks the candidates",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	bindEnv(viper.GetViper())
	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is cv-ranker.yaml in current directory)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "a dotenv file with secrets, ignored when missing")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func bindEnv(v *viper.Viper) {
	bindings := map[string][]string{
		"oracle.provider": {"CV_RANKER_PROVIDER"},
		"store.driver":    {"CV_RANKER_STORE_DRIVER"},
		"store.dsn":       {"CV_RANKER_STORE_DSN", "DATABASE_URL"},
		"workers":         {"CV_RANKER_WORKERS"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			log.Fatalf("binding %v environment variables: %v", envs, err)
		}
	}
}

func setDefaults(v *viper.Viper) {
	retry := resilience.DefaultConfig()

	v.SetDefault("oracle.provider", "gemini")
	v.SetDefault("oracle.timeout", 60*time.Second)
	v.SetDefault("oracle.max-log-length", 200)
	v.SetDefault("oracle.retry.max-attempts", retry.RetryMaxAttempts)
	v.SetDefault("oracle.retry.initial-backoff", retry.RetryInitialBackoff)
	v.SetDefault("oracle.retry.max-backoff", retry.RetryMaxBackoff)
	v.SetDefault("oracle.retry.multiplier", retry.RetryMultiplier)
	v.SetDefault("oracle.retry.breaker-enabled", retry.BreakerEnabled)
	v.SetDefault("oracle.retry.breaker-min-requests", retry.BreakerMinRequests)
	v.SetDefault("oracle.retry.breaker-failure-ratio", retry.BreakerFailureRatio)
	v.SetDefault("oracle.retry.breaker-open-timeout", retry.BreakerOpenTimeout)
	v.SetDefault("oracle.retry.breaker-half-open-max-calls", retry.BreakerHalfOpenMaxCalls)
	v.SetDefault("tie-break.spread", tiebreak.DefaultSpread)
	v.SetDefault("store.driver", store.DriverFile)
	v.SetDefault("store.path", store.DefaultPath)
}

func initConfig() {
	// Config is needed only for the rank command.
	if rankCmd.CalledAs() == "" {
		return
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading %s: %v", envFile, err)
	}

	if err := readConfig(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// readConfig reads path, or cv-ranker.yaml from the current directory when
// path is empty. Only an explicitly requested file is mandatory.
func readConfig(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func getConfig() (*Config, error) {
	return loadConfig(viper.GetViper())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if config == nil {
		config = &Config{}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

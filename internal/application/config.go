package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/one-acre-fund/application-score-card/infrastructure/scoring"
	"github.com/one-acre-fund/application-score-card/internal/domain"
	"github.com/one-acre-fund/application-score-card/internal/ports"
)

// Environment variables that override values from the configuration file.
const (
	EnvInputDir   = "SCORECARD_INPUT_DIR"
	EnvOutputPath = "SCORECARD_OUTPUT_PATH"
	EnvWorkers    = "SCORECARD_WORKERS"
	EnvLocale     = "SCORECARD_LOCALE"
	EnvHTTPAddr   = "SCORECARD_HTTP_ADDR"
)

// Config is the complete configuration of a batch run. It is passed to
// NewRunner by value; nothing in the module reads configuration from
// package-level state, so independent batches can run side by side.
type Config struct {
	// InputDir is the directory holding one JSON assessment per file.
	InputDir string `yaml:"input_dir" validate:"required"`
	// OutputPath is the file that receives the sorted aggregated output.
	OutputPath string `yaml:"output_path" validate:"required"`
	// Workers bounds how many records are processed in parallel.
	Workers int `yaml:"workers" validate:"min=1,max=256"`
	// Locale selects the collation used to sort output by entity name.
	Locale string `yaml:"locale" validate:"required,bcp47_language_tag"`
	// Aggregator holds optional aggregation output settings.
	Aggregator scoring.AggregatorConfig `yaml:"aggregator"`
	// Validator tunes the advisory validation checks.
	Validator scoring.ValidatorConfig `yaml:"validator"`
	// Metrics configures how batch metrics are exported.
	Metrics MetricsConfig `yaml:"metrics"`
	// HTTP configures the validation service started by "scorecard serve".
	HTTP HTTPConfig `yaml:"http"`
}

// HTTPConfig controls the validation service.
type HTTPConfig struct {
	// Addr is the listen address, for example ":8080".
	Addr string `yaml:"addr" validate:"required,hostname_port"`
	// AllowOrigins is a comma-separated CORS origin list.
	AllowOrigins string `yaml:"allow_origins"`
	// BodyLimit caps request bodies in bytes.
	BodyLimit int `yaml:"body_limit" validate:"min=1024"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"min=0"`
}

// MetricsConfig controls metric export for one-shot batch runs.
type MetricsConfig struct {
	// TextfilePath, when set, receives the collected metrics in the
	// Prometheus text format after each run.
	TextfilePath string `yaml:"textfile_path"`
}

// DefaultConfig returns a configuration that reads ./scorecards and writes
// ./output/scorecards.json using one worker per CPU.
func DefaultConfig() Config {
	return Config{
		InputDir:   "scorecards",
		OutputPath: filepath.Join("output", "scorecards.json"),
		Workers:    runtime.NumCPU(),
		Locale:     "en",
		Validator:  scoring.DefaultValidatorConfig(),
		HTTP: HTTPConfig{
			Addr:            ":8080",
			AllowOrigins:    "*",
			BodyLimit:       1 << 20,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Validate checks the configuration against its struct tags.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	return nil
}

// LoadConfig builds a Config from defaults, an optional YAML file, and
// environment overrides, in that order. A .env file in the working
// directory is loaded first if present. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return cfg, ports.NewConfigError(path, ports.ErrConfigNotFound)
			}
			return cfg, ports.NewConfigError(path, err)
		}
		if err := decodeConfig(data, &cfg); err != nil {
			return cfg, ports.NewConfigError(path, err)
		}
	}

	// A missing .env file is the common case and not an error.
	_ = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// decodeConfig overlays YAML onto cfg using strict decoding so that
// misspelled keys are reported instead of silently ignored.
func decodeConfig(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("YAML decode failed: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvInputDir); v != "" {
		cfg.InputDir = v
	}
	if v := os.Getenv(EnvOutputPath); v != "" {
		cfg.OutputPath = v
	}
	if v := os.Getenv(EnvLocale); v != "" {
		cfg.Locale = v
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return ports.NewConfigError(EnvWorkers, err)
		}
		cfg.Workers = workers
	}
	return nil
}

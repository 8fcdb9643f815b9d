package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text console"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"both" validate:"oneof=stdout file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/reconciler.log" validate:"required"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PipelineConfig contains trip reconciliation pipeline configuration
type PipelineConfig struct {
	LegacyFile   string        `yaml:"legacy_file" envconfig:"LEGACY_FILE"`
	CurrentFile  string        `yaml:"current_file" envconfig:"CURRENT_FILE"`
	TopStations  int           `yaml:"top_stations" envconfig:"TOP_STATIONS" default:"10" validate:"min=1"`
	ParallelLoad bool          `yaml:"parallel_load" envconfig:"PARALLEL_LOAD" default:"true"`
	StageTimeout time.Duration `yaml:"stage_timeout" envconfig:"STAGE_TIMEOUT" default:"30m" validate:"min=1s"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	Enabled        bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" default:"cyclistic-reconciler" validate:"required"`
	TraceSampling  float64 `yaml:"trace_sampling" envconfig:"TRACE_SAMPLING" default:"1.0" validate:"min=0,max=1"`
	PushgatewayURL string  `yaml:"pushgateway_url" envconfig:"PUSHGATEWAY_URL" validate:"omitempty,url"`
	PushJobName    string  `yaml:"push_job_name" envconfig:"PUSH_JOB_NAME" default:"cyclistic_reconciler"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" envconfig:"EXECUTABLE_DIR"`
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// Load loads configuration from environment variables and config file.
// Environment variables win over file values. Fields with an envconfig
// default (such as logging.level) already carry that default before the
// file merge, so the file can only fill fields that have no default.
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process("CYCLISTIC", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	// Resolve relative paths
	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Validate paths
	if err := cfg.ValidatePaths(); err != nil {
		return nil, fmt.Errorf("path validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence).
// Only fields the environment left at their zero value take the file value;
// booleans always keep the env/default value.
func mergeConfigs(fileConfig, envConfig Config) Config {
	// Logging config
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Format == "" {
		envConfig.Logging.Format = fileConfig.Logging.Format
	}
	if envConfig.Logging.Output == "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}

	// Pipeline config
	if envConfig.Pipeline.LegacyFile == "" {
		envConfig.Pipeline.LegacyFile = fileConfig.Pipeline.LegacyFile
	}
	if envConfig.Pipeline.CurrentFile == "" {
		envConfig.Pipeline.CurrentFile = fileConfig.Pipeline.CurrentFile
	}
	if envConfig.Pipeline.TopStations == 0 {
		envConfig.Pipeline.TopStations = fileConfig.Pipeline.TopStations
	}
	if envConfig.Pipeline.StageTimeout == 0 {
		envConfig.Pipeline.StageTimeout = fileConfig.Pipeline.StageTimeout
	}

	// Telemetry config
	if envConfig.Telemetry.ServiceName == "" {
		envConfig.Telemetry.ServiceName = fileConfig.Telemetry.ServiceName
	}
	if envConfig.Telemetry.TraceSampling == 0 {
		envConfig.Telemetry.TraceSampling = fileConfig.Telemetry.TraceSampling
	}
	if envConfig.Telemetry.PushgatewayURL == "" {
		envConfig.Telemetry.PushgatewayURL = fileConfig.Telemetry.PushgatewayURL
	}
	if envConfig.Telemetry.PushJobName == "" {
		envConfig.Telemetry.PushJobName = fileConfig.Telemetry.PushJobName
	}

	// Paths config
	if envConfig.Paths.DataDir == "" {
		envConfig.Paths.DataDir = fileConfig.Paths.DataDir
	}
	if envConfig.Paths.LogsDir == "" {
		envConfig.Paths.LogsDir = fileConfig.Paths.LogsDir
	}

	return envConfig
}

// resolvePaths sets up the executable directory and validates paths
func (c *Config) resolvePaths() error {
	// Use centralized paths system to get all paths
	paths, err := GetPaths()
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}

	// Update config with resolved paths from centralized system
	c.Paths.ExecutableDir = paths.ExecutableDir

	// Default source files to the well-known trip exports when unset
	if c.Pipeline.LegacyFile == "" {
		c.Pipeline.LegacyFile = paths.LegacyTripsCSV
	}
	if c.Pipeline.CurrentFile == "" {
		c.Pipeline.CurrentFile = paths.CurrentTripsCSV
	}

	return nil
}

// ValidatePaths validates that critical paths exist or can be created
func (c *Config) ValidatePaths() error {
	paths, err := GetPaths()
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}

	// Ensure all required directories exist
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	// Log path resolution for debugging
	paths.LogPathResolution()

	return nil
}

// validate normalizes and validates the configuration using struct tags
func (c *Config) validate() error {
	// Normalize logging settings before structural validation
	if c.Logging.Output == "" {
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFilePath
	}

	v := newConfigValidator()
	if err := v.Struct(c); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		messages := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			messages = append(messages, formatValidationError(fieldErr))
		}
		return fmt.Errorf("%s", strings.Join(messages, "; "))
	}

	return nil
}

// newConfigValidator creates a validator that reports fields by their YAML names
func newConfigValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	tag := err.Tag()
	param := err.Param()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Replace(param, " ", ", ", -1))
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
		"../../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:       DefaultLogLevel,
			Format:      DefaultLogFormat,
			Output:      "both",
			FilePath:    DefaultLogFilePath,
			Development: false,
		},
		Pipeline: PipelineConfig{
			TopStations:  DefaultTopStations,
			ParallelLoad: true,
			StageTimeout: DefaultStageTimeout,
		},
		Telemetry: TelemetryConfig{
			Enabled:       true,
			ServiceName:   AppServiceName,
			TraceSampling: 1.0,
			PushJobName:   DefaultPushJobName,
		},
		Paths: PathsConfig{
			DataDir: DefaultDataDir,
			LogsDir: DefaultLogsDir,
		},
	}
}

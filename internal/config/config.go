package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"tgcompile/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Keywords  KeywordsConfig  `yaml:"keywords" envconfig:"KEYWORDS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig locates the scraped export files
type InputConfig struct {
	Dir    string `yaml:"dir" envconfig:"DIR" validate:"required"`
	Suffix string `yaml:"suffix" envconfig:"SUFFIX" validate:"required"`
}

// OutputConfig controls the compiled file and the console report
type OutputConfig struct {
	FileName       string `yaml:"file_name" envconfig:"FILE_NAME" validate:"required"`
	XLSX           bool   `yaml:"xlsx" envconfig:"XLSX"`
	FileViewsLimit int    `yaml:"file_views_limit" envconfig:"FILE_VIEWS_LIMIT" validate:"gte=0"`
	SkippedLimit   int    `yaml:"skipped_limit" envconfig:"SKIPPED_LIMIT" validate:"gte=0"`
}

// KeywordsConfig holds the monitored keyword categories.
// Categories are read from File when set, otherwise the built-in set is used.
type KeywordsConfig struct {
	File       string                   `yaml:"file" envconfig:"FILE"`
	Categories []domain.KeywordCategory `yaml:"categories" ignored:"true" validate:"required,min=1,dive"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig enables span and metric dumps for a run.
// Empty file paths disable the corresponding signal.
type TelemetryConfig struct {
	ServiceName string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceFile   string  `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string  `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	SampleRatio float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Load builds the configuration from defaults, an optional YAML file and
// TGCOMPILE_* environment variables, in increasing order of precedence.
// An explicit configFile must exist; with an empty configFile the common
// locations are searched.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	} else if _, err := os.Stat(configFile); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configFile, err)
	}

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if cfg.Keywords.File != "" {
		categories, err := LoadKeywordFile(cfg.Keywords.File)
		if err != nil {
			return nil, err
		}
		cfg.Keywords.Categories = categories
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and keyword category rules
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging.file_path is required for output %q", c.Logging.Output)
	}
	return ValidateCategories(c.Keywords.Categories)
}

// OutputPath returns the compiled CSV location inside the input directory
func (c *Config) OutputPath() string {
	return filepath.Join(c.Input.Dir, c.Output.FileName)
}

// XLSXPath returns the workbook location written next to the CSV
func (c *Config) XLSXPath() string {
	ext := filepath.Ext(c.Output.FileName)
	return filepath.Join(c.Input.Dir, c.Output.FileName[:len(c.Output.FileName)-len(ext)]+".xlsx")
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"tgcompile.yaml",
		"configs/tgcompile.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Dir:    DefaultInputDir,
			Suffix: DefaultInputSuffix,
		},
		Output: OutputConfig{
			FileName:       DefaultOutputFileName,
			FileViewsLimit: DefaultFileViewsLimit,
			SkippedLimit:   DefaultSkippedLimit,
		},
		Keywords: KeywordsConfig{
			Categories: DefaultCategories(),
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
			SampleRatio: 1.0,
		},
	}
}

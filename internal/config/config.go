package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apierrors "fundrecon/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Upload    UploadConfig    `yaml:"upload" envconfig:"UPLOAD"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gte=0"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
}

// Address returns the listen address for the HTTP server
func (s ServerConfig) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// ReportConfig controls which records take part in the reconciliation and
// how the outstanding-units sheet is sized.
type ReportConfig struct {
	Variant        string   `yaml:"variant" envconfig:"VARIANT" validate:"oneof=minimal extended"`
	UnitTypes      []string `yaml:"allowed_unit_types" envconfig:"ALLOWED_UNIT_TYPES" validate:"dive,required"`
	InputSheet     string   `yaml:"input_sheet" envconfig:"INPUT_SHEET" validate:"required"`
	ColumnPadding  float64  `yaml:"column_padding" envconfig:"COLUMN_PADDING" validate:"gte=0"`
	MinColumnWidth float64  `yaml:"min_column_width" envconfig:"MIN_COLUMN_WIDTH" validate:"gt=0"`
	MaxColumnWidth float64  `yaml:"max_column_width" envconfig:"MAX_COLUMN_WIDTH" validate:"gtefield=MinColumnWidth,lte=255"`
}

// AllowedUnitTypes resolves the eligibility allow-set. An explicit list wins
// over the variant.
func (r ReportConfig) AllowedUnitTypes() []string {
	if len(r.UnitTypes) > 0 {
		out := make([]string, len(r.UnitTypes))
		copy(out, r.UnitTypes)
		return out
	}
	if r.Variant == VariantExtended {
		return []string{UnitTypeCommercial, UnitTypeOffice, UnitTypeRetail}
	}
	return []string{UnitTypeCommercial}
}

// UploadConfig limits accepted uploads
type UploadConfig struct {
	MaxBytes  int64  `yaml:"max_bytes" envconfig:"MAX_BYTES" validate:"gt=0"`
	FormField string `yaml:"form_field" envconfig:"FORM_FIELD" validate:"required"`
}

// Load loads configuration from defaults, the config file and environment
// variables, in increasing order of precedence.
func Load() (*Config, error) {
	path, explicit := getConfigFilePath()
	return LoadFile(path, explicit)
}

// LoadFile is Load with an explicit config file path. A missing file is an
// error only when required is set.
func LoadFile(path string, required bool) (*Config, error) {
	cfg := Default()

	if path != "" {
		err := loadFromFile(path, cfg)
		if err != nil && (required || !errors.Is(err, fs.ErrNotExist)) {
			return nil, apierrors.NewConfigError("failed to load config from file "+path, err)
		}
	}

	// Env vars without defaults leave file values untouched
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apierrors.NewConfigError("failed to load config from env", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, apierrors.NewConfigError("config validation failed", err)
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

// normalize applies the fixed logging policy and tidies list values
func (c *Config) normalize() {
	// Logs are always JSON
	c.Logging.Format = "json"
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Report.Variant = strings.ToLower(c.Report.Variant)

	types := c.Report.UnitTypes[:0:0]
	for _, t := range c.Report.UnitTypes {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	c.Report.UnitTypes = types
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified when CORS is enabled")
	}

	return nil
}

// getConfigFilePath returns the config file path and whether it was set explicitly
func getConfigFilePath() (string, bool) {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p, true
	}
	return DefaultConfigFile, false
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     false,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:       DefaultLogLevel,
			Format:      DefaultLogFormat,
			Output:      "console",
			FilePath:    "logs/app.log",
			Development: false,
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
		Report: ReportConfig{
			Variant:        VariantMinimal,
			InputSheet:     DefaultInputSheet,
			ColumnPadding:  2,
			MinColumnWidth: 10,
			MaxColumnWidth: 60,
		},
		Upload: UploadConfig{
			MaxBytes:  DefaultMaxUploadBytes,
			FormField: DefaultUploadField,
		},
	}
}
